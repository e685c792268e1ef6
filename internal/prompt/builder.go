package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
	"github.com/rs/zerolog/log"
)

const (
	// TotalPromptLimit caps the full composed prompt sent to the model.
	TotalPromptLimit = 20_000

	// ChatMessageLimit and ChatCharBudget bound the history window that
	// may be replayed into a prompt.
	ChatMessageLimit = 40
	ChatCharBudget   = 12_000

	docContextCharLimit = 6_000
	docSnippetLength    = 600

	chatContextHeader = "### CONTEXT: PRIOR CHAT"
	docContextHeader  = "### CONTEXT: NOTES & DOCS"
	promptHeader      = "### USER PROMPT"
	sectionDivider    = "---"

	// chatBudgetReserve keeps headroom between the chat window and the
	// remaining context budget so the doc block is never fully starved.
	chatBudgetReserve = 64
)

// BuildWithMemory composes the final model prompt from prior chat,
// stored notes and the user prompt, staying under totalLimit. When the
// prompt alone exceeds the limit, only the prompt section is returned.
func BuildWithMemory(userPrompt string, history []models.ChatMessage, docs []models.Note, totalLimit int) string {
	promptSection := promptHeader + "\n" + userPrompt

	available := totalLimit - len(promptSection) - len(sectionDivider) - 2
	if available <= 0 {
		log.Debug().Msg("prompt length exceeds total limit, sending prompt section only")
		return promptSection
	}

	var sections []string

	chatBudget := available - chatBudgetReserve
	if chatBudget > ChatCharBudget {
		chatBudget = ChatCharBudget
	}
	if chatBudget > 0 {
		window := RecentWindow(history, ChatMessageLimit, chatBudget)
		if block := buildChatBlock(window); block != "" {
			if len(block) <= available {
				sections = append(sections, block)
				available -= len(block) + 2
			} else {
				log.Debug().Msg("chat context exceeds budget after trimming, dropping chat block")
			}
		}
	}

	if available > 0 && len(docs) > 0 {
		docBudget := docContextCharLimit
		if docBudget > available {
			docBudget = available
		}
		if block := buildDocBlock(docs, docBudget); block != "" {
			sections = append(sections, block)
		}
	}

	if len(sections) == 0 {
		return promptSection
	}

	final := strings.Join(sections, "\n\n") + "\n\n" + sectionDivider + "\n" + promptSection
	log.Debug().Int("total_len", len(final)).Int("sections", len(sections)).Msg("built composite prompt")
	return final
}

// RecentWindow returns the newest messages, chronological order, keeping
// at most maxMessages entries within charBudget characters. A message
// that overflows the remaining budget is truncated to its tail.
func RecentWindow(history []models.ChatMessage, maxMessages, charBudget int) []models.ChatMessage {
	if len(history) == 0 || maxMessages <= 0 || charBudget <= 0 {
		return nil
	}

	collected := make([]models.ChatMessage, 0, maxMessages)
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		if len(collected) >= maxMessages {
			break
		}
		available := charBudget - used
		if available <= 0 {
			break
		}

		msg := history[i]
		if len(msg.Content) > available {
			msg.Content = tailBytes(msg.Content, available)
		}
		collected = append(collected, msg)
		used += len(msg.Content)
	}

	// Reverse back to chronological order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}

// buildChatBlock renders the chat context section, latest message first.
func buildChatBlock(messages []models.ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	lines := make([]string, 0, len(messages)+1)
	lines = append(lines, chatContextHeader)
	for i := len(messages) - 1; i >= 0; i-- {
		lines = append(lines, "- role: "+string(messages[i].Role)+" -> "+messages[i].Content)
	}
	return strings.Join(lines, "\n")
}

func buildDocBlock(docs []models.Note, budget int) string {
	if budget <= len(docContextHeader) {
		return ""
	}

	lines := []string{docContextHeader}
	remaining := budget - len(docContextHeader) - 1
	for _, doc := range docs {
		if remaining <= 0 {
			break
		}
		label := doc.Label
		if label == "" {
			label = "doc"
		}
		if doc.Content == "" {
			continue
		}

		snippetLimit := docSnippetLength
		if snippetLimit > remaining {
			snippetLimit = remaining
		}
		snippet := headBytes(doc.Content, snippetLimit)
		line := label + ": " + snippet

		if len(line) > remaining {
			available := remaining - len(label) - 2
			if available <= 0 {
				break
			}
			snippet = headBytes(snippet, available)
			if snippet == "" {
				break
			}
			line = label + ": " + snippet
		}

		lines = append(lines, line)
		remaining -= len(line) + 1
	}

	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// BuildChatTranscript flattens a system prompt plus conversation into a
// single completion prompt. Malformed entries are skipped; when the
// transcript overflows the limit, the system line is kept and the
// conversation is trimmed to its tail.
func BuildChatTranscript(systemPrompt string, messages []models.ChatMessage, limit int) string {
	systemLine := "System: " + strings.TrimSpace(systemPrompt)
	lines := []string{systemLine}
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case agenttypes.RoleUser:
			lines = append(lines, "User: "+content)
		case agenttypes.RoleAssistant:
			lines = append(lines, "Assistant: "+content)
		default:
			log.Debug().Str("role", string(msg.Role)).Msg("skipping unsupported transcript role")
		}
	}

	transcript := strings.Join(lines, "\n\n")
	if limit > 0 && len(transcript) > limit {
		log.Debug().Int("limit", limit).Msg("chat transcript exceeds limit, trimming")
		tailBudget := limit - len(systemLine) - 2
		if tailBudget <= 0 {
			return systemLine
		}
		transcript = systemLine + "\n\n" + tailBytes(transcript, tailBudget)
	}
	return transcript
}

// headBytes returns the longest prefix of s that fits in n bytes without
// splitting a rune.
func headBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// tailBytes is the suffix counterpart of headBytes.
func tailBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
