package prompt

import (
	"strings"
	"testing"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
	"github.com/stretchr/testify/assert"
)

func msg(role agenttypes.Role, content string) models.ChatMessage {
	return models.ChatMessage{Role: role, Content: content}
}

func TestBuildWithMemoryLayout(t *testing.T) {
	history := []models.ChatMessage{
		msg(agenttypes.RoleUser, "what is the plan"),
		msg(agenttypes.RoleAssistant, "the plan has three phases"),
	}
	docs := []models.Note{
		{Label: "doc:roadmap.md", Content: "Phase one covers discovery."},
	}

	out := BuildWithMemory("summarize the roadmap", history, docs, TotalPromptLimit)

	assert.Contains(t, out, chatContextHeader)
	assert.Contains(t, out, docContextHeader)
	assert.Contains(t, out, promptHeader+"\nsummarize the roadmap")
	assert.Contains(t, out, "doc:roadmap.md: Phase one covers discovery.")

	// Chat block lists the latest message first.
	latest := strings.Index(out, "- role: assistant -> the plan has three phases")
	earlier := strings.Index(out, "- role: user -> what is the plan")
	assert.True(t, latest >= 0 && earlier >= 0 && latest < earlier)

	// Context comes before the divider, the prompt after it.
	divider := strings.Index(out, "\n"+sectionDivider+"\n")
	promptAt := strings.Index(out, promptHeader)
	assert.True(t, divider >= 0 && promptAt > divider)
}

func TestBuildWithMemoryPromptOnlyFallback(t *testing.T) {
	longPrompt := strings.Repeat("p", TotalPromptLimit)
	out := BuildWithMemory(longPrompt, []models.ChatMessage{msg(agenttypes.RoleUser, "hi")}, nil, TotalPromptLimit)

	assert.Equal(t, promptHeader+"\n"+longPrompt, out)
}

func TestBuildWithMemoryNoContext(t *testing.T) {
	out := BuildWithMemory("just the prompt", nil, nil, TotalPromptLimit)
	assert.Equal(t, promptHeader+"\njust the prompt", out)
}

func TestBuildWithMemoryStaysUnderLimit(t *testing.T) {
	history := make([]models.ChatMessage, 0, 60)
	for i := 0; i < 60; i++ {
		history = append(history, msg(agenttypes.RoleUser, strings.Repeat("h", 500)))
	}
	docs := []models.Note{
		{Label: "doc:a", Content: strings.Repeat("a", 5_000)},
		{Label: "doc:b", Content: strings.Repeat("b", 5_000)},
	}

	out := BuildWithMemory(strings.Repeat("q", 2_000), history, docs, TotalPromptLimit)
	assert.LessOrEqual(t, len(out), TotalPromptLimit)
}

func TestRecentWindowKeepsNewestChronological(t *testing.T) {
	history := []models.ChatMessage{
		msg(agenttypes.RoleUser, "one"),
		msg(agenttypes.RoleAssistant, "two"),
		msg(agenttypes.RoleUser, "three"),
	}

	window := RecentWindow(history, 2, 1_000)
	assert.Len(t, window, 2)
	assert.Equal(t, "two", window[0].Content)
	assert.Equal(t, "three", window[1].Content)
}

func TestRecentWindowTruncatesOverflowingMessage(t *testing.T) {
	history := []models.ChatMessage{
		msg(agenttypes.RoleUser, "short"),
		msg(agenttypes.RoleAssistant, strings.Repeat("abcdefghij", 10)),
	}

	window := RecentWindow(history, 10, 20)
	assert.Len(t, window, 1)
	assert.Len(t, window[0].Content, 20)
	assert.True(t, strings.HasSuffix(window[0].Content, "abcdefghij"))
}

func TestRecentWindowEmptyInputs(t *testing.T) {
	assert.Nil(t, RecentWindow(nil, 10, 100))
	assert.Nil(t, RecentWindow([]models.ChatMessage{msg(agenttypes.RoleUser, "x")}, 0, 100))
	assert.Nil(t, RecentWindow([]models.ChatMessage{msg(agenttypes.RoleUser, "x")}, 10, 0))
}

func TestBuildChatTranscript(t *testing.T) {
	messages := []models.ChatMessage{
		msg(agenttypes.RoleUser, "hello"),
		msg(agenttypes.RoleAssistant, "hi, how can I help"),
		msg(agenttypes.Role("tool"), "ignored"),
		msg(agenttypes.RoleUser, "  "),
	}

	out := BuildChatTranscript("You are a helpful PMO assistant.", messages, TotalPromptLimit)
	assert.Equal(t, "System: You are a helpful PMO assistant.\n\nUser: hello\n\nAssistant: hi, how can I help", out)
}

func TestBuildChatTranscriptTrimsToLimit(t *testing.T) {
	messages := []models.ChatMessage{
		msg(agenttypes.RoleUser, strings.Repeat("u", 500)),
		msg(agenttypes.RoleAssistant, strings.Repeat("a", 500)),
	}

	out := BuildChatTranscript("sys", messages, 100)
	assert.LessOrEqual(t, len(out), 100)
	assert.True(t, strings.HasPrefix(out, "System: sys\n\n"))
	assert.True(t, strings.HasSuffix(out, "a"))
}

func TestHeadAndTailBytesRespectRuneBoundaries(t *testing.T) {
	s := "aé" // 3 bytes
	assert.Equal(t, "a", headBytes(s, 2))
	assert.Equal(t, "", tailBytes(s, 1))
	assert.Equal(t, "é", tailBytes(s, 2))
	assert.Equal(t, s, headBytes(s, 10))
}
