package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookassistant"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	response *bedrockruntime.ConverseOutput
	err      error
	input    *bedrockruntime.ConverseInput
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = input
	return m.response, m.err
}

func textOutput(stop types.StopReason, texts ...string) *bedrockruntime.ConverseOutput {
	blocks := make([]types.ContentBlock, 0, len(texts))
	for _, t := range texts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: t})
	}
	return &bedrockruntime.ConverseOutput{
		StopReason: stop,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks},
		},
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(10),
			OutputTokens: aws.Int32(20),
		},
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		input    Options
		expected Options
	}{
		{
			name:  "empty options uses defaults",
			input: Options{},
			expected: Options{
				ModelID:     defaultModelID,
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
		{
			name:  "partial options with defaults",
			input: Options{ModelID: "custom-model", MaxTokens: 2048},
			expected: Options{
				ModelID:     "custom-model",
				MaxTokens:   2048,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{}
			client := NewClient(mockClient, tt.input)

			assert.Equal(t, tt.expected, client.opts)
			assert.Equal(t, mockClient, client.brc)
		})
	}
}

func TestClient_Generate(t *testing.T) {
	messages := []cookassistant.Message{
		{Role: cookassistant.RoleSystem, Content: "你是厨师"},
		{Role: cookassistant.RoleUser, Content: "红烧肉怎么做"},
	}

	tests := []struct {
		name          string
		response      *bedrockruntime.ConverseOutput
		err           error
		want          string
		expectedError error
	}{
		{
			name:     "end turn joins text blocks",
			response: textOutput(types.StopReasonEndTurn, `{"type":"single","dishes":["红烧肉"]}`, "## 做法"),
			want:     "{\"type\":\"single\",\"dishes\":[\"红烧肉\"]}\n## 做法",
		},
		{
			name:     "missing stop reason still returns text",
			response: textOutput("", "好的"),
			want:     "好的",
		},
		{
			name:          "max tokens",
			response:      textOutput(types.StopReasonMaxTokens, "partial"),
			expectedError: ErrMaxTokens,
		},
		{
			name:          "guardrail",
			response:      textOutput(types.StopReasonGuardrailIntervened),
			expectedError: ErrBlocked,
		},
		{
			name:          "api error",
			err:           errors.New("throttled"),
			expectedError: errors.New("throttled"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{response: tt.response, err: tt.err}
			client := NewClient(mockClient, Options{})

			got, err := client.Generate(context.Background(), messages)
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.NotNil(t, mockClient.input)
			assert.Equal(t, defaultModelID, aws.ToString(mockClient.input.ModelId))
			require.Len(t, mockClient.input.System, 1)
			assert.Equal(t, "你是厨师", mockClient.input.System[0].(*types.SystemContentBlockMemberText).Value)
			require.Len(t, mockClient.input.Messages, 1)
			assert.Equal(t, types.ConversationRoleUser, mockClient.input.Messages[0].Role)
		})
	}

	t.Run("only system messages", func(t *testing.T) {
		client := NewClient(&mockBedrockClient{}, Options{})
		_, err := client.Generate(context.Background(), messages[:1])
		assert.Error(t, err)
	})
}

func TestBuildConversation(t *testing.T) {
	sys, msgs := buildConversation([]cookassistant.Message{
		{Role: cookassistant.RoleSystem, Content: "a"},
		{Role: cookassistant.RoleUser, Content: "q1"},
		{Role: cookassistant.RoleUser, Content: "q2"},
		{Role: cookassistant.RoleAssistant, Content: "r1"},
		{Role: cookassistant.RoleUser, Content: "   "},
		{Role: "tool", Content: "t1"},
	})

	assert.Len(t, sys, 1)
	require.Len(t, msgs, 3)
	assert.Equal(t, types.ConversationRoleUser, msgs[0].Role)
	assert.Len(t, msgs[0].Content, 2)
	assert.Equal(t, types.ConversationRoleAssistant, msgs[1].Role)
	assert.Equal(t, types.ConversationRoleUser, msgs[2].Role)
	assert.Equal(t, "t1", msgs[2].Content[0].(*types.ContentBlockMemberText).Value)
}
