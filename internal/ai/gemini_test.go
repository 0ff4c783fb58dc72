package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiRequestMapsRoles(t *testing.T) {
	contents, cfg := geminiRequest(CompletionRequest{
		Model:     "gemini-2.0-flash",
		System:    "be brief",
		MaxTokens: 1000,
		Messages: []ChatMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "again"},
		},
	})

	require.Len(t, contents, 3)
	wantRoles := []string{"user", "model", "user"}
	wantText := []string{"hi", "hello", "again"}
	for i, c := range contents {
		assert.Equal(t, wantRoles[i], c.Role)
		require.Len(t, c.Parts, 1)
		assert.Equal(t, wantText[i], c.Parts[0].Text)
	}

	assert.Equal(t, int32(1000), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)
}

func TestGeminiRequestWithoutSystemPrompt(t *testing.T) {
	contents, cfg := geminiRequest(CompletionRequest{MaxTokens: 10})

	assert.Empty(t, contents)
	assert.Nil(t, cfg.SystemInstruction)
}
