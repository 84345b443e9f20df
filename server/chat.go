package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cookassistant"
	"cookassistant/workflow"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// chatRequest carries either a bare query or a chat transcript whose last user message is the query.
type chatRequest struct {
	Query    string                  `json:"query"`
	Messages []cookassistant.Message `json:"messages"`
}

func (r chatRequest) query() string {
	if q := strings.TrimSpace(r.Query); q != "" {
		return q
	}
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == cookassistant.RoleUser {
			return strings.TrimSpace(r.Messages[i].Content)
		}
	}
	return ""
}

func bindQuery(c *gin.Context) (string, bool) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return "", false
	}
	q := req.query()
	if q == "" {
		abortWithError(c, http.StatusBadRequest, "query is required")
		return "", false
	}
	return q, true
}

func (s *Server) handleChat(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}

	res := s.runner.Run(c.Request.Context(), query)
	s.finish(c.Request.Context(), query, res)

	c.JSON(http.StatusOK, res)
}

func (s *Server) handleStream(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	res := s.runner.RunStream(c.Request.Context(), query, func(e workflow.Event) {
		c.SSEvent(string(e.Type), e)
		c.Writer.Flush()
	})
	s.finish(c.Request.Context(), query, res)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		abortWithError(c, http.StatusBadRequest, "query is required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("SERVER: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	writeFailed := false
	res := s.runner.RunStream(ctx, query, func(e workflow.Event) {
		if writeFailed {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(e); err != nil {
			slog.Warn("SERVER: websocket write failed", "error", err)
			writeFailed = true
		}
	})
	s.finish(ctx, query, res)

	if !writeFailed {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	}
}

// finish records the result and hands it to the notifier without holding up the response.
func (s *Server) finish(ctx context.Context, query string, res workflow.Result) {
	s.metrics.countResult(res.Metadata.Architecture)
	slog.Info("RESULT: pipeline finished", "architecture", res.Metadata.Architecture, "dishes", res.Metadata.Dishes)

	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, query, res); err != nil {
			slog.Warn("RESULT: notification failed", "error", err)
		}
	}()
}
