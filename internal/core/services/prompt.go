package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/aicompanion/api/internal/core/domain"
)

// PromptBudget caps the character footprint of each prompt section so the
// assembled instruction stays within the provider's practical window.
type PromptBudget struct {
	MaxKeyContextChars   int
	MaxConversationChars int
	MaxTotalChars        int
}

func DefaultPromptBudget() PromptBudget {
	return PromptBudget{
		MaxKeyContextChars:   4000,
		MaxConversationChars: 8000,
		MaxTotalChars:        16000,
	}
}

// fixedInstruction tells the provider how to answer and how to manage the
// bounded long-term memory. The reply must be a single JSON object.
func fixedInstruction(maxFacts int) string {
	return fmt.Sprintf(`You are a personal virtual assistant. Reply with a single JSON object matching exactly these fields, no markdown fences, no extra text:
- "server_reply" (string, required): the direct answer to the user, plain text, concise, no prefix. Never mention being an AI and never add disclaimers.
- "interaction_params" (object, required):
    - "relevant_for_context" (boolean): whether this interaction contains a fact worth remembering across sessions (the user's name, preferences, other key facts).
    - "context_priority" (integer, 1-100): retention priority for that fact. Start low for new facts.
    - "relevant_info" (string): a concise factual summary written as a fact about the user (e.g. "The user's name is Ana"). If nothing new was learned, repeat the most important known fact.
- "context_updates" (array of objects, optional): each {"entry_number": N, "new_priority": P} re-scores an existing key-context entry by its number. Set priority 0 to remove an entry.
The key context (long-term memory) holds at most %d entries; the lowest-priority entry is dropped on overflow. Do not duplicate existing entries. If an important entry is about to be displaced, increase its priority instead of re-adding it. Use the user's name naturally when known.`, maxFacts)
}

// BuildSystemPrompt assembles the fixed instruction, the key-context section
// (priority descending) and the recent conversation section (oldest first),
// trimming each section to its budget.
func BuildSystemPrompt(budget PromptBudget, maxFacts int, facts []domain.ContextFact, history []domain.Conversation) string {
	instruction := fixedInstruction(maxFacts)

	if section := buildKeyContextSection(budget.MaxKeyContextChars, facts); section != "" {
		instruction += "\n\n" + section
	}
	if section := buildConversationSection(budget.MaxConversationChars, history); section != "" {
		instruction += "\n\n" + section
	}

	if len(instruction) > budget.MaxTotalChars {
		instruction = instruction[:budget.MaxTotalChars-50] + "\n\n[Context truncated to fit limits]"
	}
	return instruction
}

// buildKeyContextSection numbers facts in the order they were listed; the
// same numbering is what context_updates entries refer back to.
func buildKeyContextSection(budget int, facts []domain.ContextFact) string {
	if len(facts) == 0 {
		return ""
	}

	var b strings.Builder
	for i, fact := range facts {
		line := fmt.Sprintf("%d. [%s | priority: %d] %s\n",
			i+1, fact.UpdatedAt.Format(time.RFC3339), fact.Priority, fact.Info)
		if b.Len()+len(line) > budget {
			break
		}
		b.WriteString(line)
	}
	if b.Len() == 0 {
		return ""
	}
	return "KEY CONTEXT FROM PREVIOUS IMPORTANT INTERACTIONS:\n" + b.String()
}

// buildConversationSection walks newest-first history and prepends entries,
// so the oldest surviving exchange comes first and the newest is always
// kept when the budget bites.
func buildConversationSection(budget int, history []domain.Conversation) string {
	if len(history) == 0 {
		return ""
	}

	var content string
	for _, conv := range history {
		reply := strings.TrimSpace(strings.TrimPrefix(conv.ServerReply, "Assistant:"))
		entry := fmt.Sprintf("User: %s (at %s)\nAssistant: %s\n\n",
			conv.UserInput, conv.Timestamp.Format(time.RFC3339), reply)
		if len(content)+len(entry) > budget {
			break
		}
		content = entry + content
	}
	if content == "" {
		return ""
	}
	return "RECENT CONVERSATION HISTORY:\n" + content
}
