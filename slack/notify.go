package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cookassistant"
	"cookassistant/workflow"
)

// maxReplyRunes bounds how much of a reply is copied into a notification.
const maxReplyRunes = 3000

// Notifier posts pipeline results to one channel.
type Notifier struct {
	client  cookassistant.SlackClient
	channel string
}

func NewNotifier(client cookassistant.SlackClient, channel string) *Notifier {
	return &Notifier{client: client, channel: channel}
}

// Notify posts the query and its result.
func (n *Notifier) Notify(ctx context.Context, query string, res workflow.Result) error {
	if err := n.client.PostMessage(ctx, n.channel, FormatResult(query, res)); err != nil {
		return fmt.Errorf("notify %s: %w", n.channel, err)
	}
	slog.Info("RESULT: posted to slack", "channel", n.channel, "architecture", res.Metadata.Architecture)
	return nil
}

// FormatResult renders a result as Slack mrkdwn.
func FormatResult(query string, res workflow.Result) string {
	md := res.Metadata

	dishes := "无"
	if len(md.Dishes) > 0 {
		dishes = strings.Join(md.Dishes, "、")
	}
	if md.DetailedDish != "" {
		dishes += fmt.Sprintf("（详细: %s）", md.DetailedDish)
	}

	nutrition := "未获取"
	if md.HasNutritionInfo {
		nutrition = "已获取"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*问题*: %s\n", query)
	fmt.Fprintf(&b, "*菜品*: %s\n", dishes)
	fmt.Fprintf(&b, "*营养信息*: %s  `%s`\n\n", nutrition, md.Architecture)
	b.WriteString(truncate(res.Response, maxReplyRunes))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
