package service

import "github.com/kaiva-ai/kaiva/internal/domain"

// SystemPrompt sets the assistant persona for every chat completion
const SystemPrompt = `You are Kai, an AI assistant specializing in commercial real estate.
When analyzing documents:
1. Focus on extracting key information and terms
2. Highlight important dates, numbers, and conditions
3. Provide a structured summary using markdown formatting
4. If it's a lease or contract, identify critical clauses
5. For financial documents, emphasize key metrics and calculations`

// DocumentSeparator joins the user's text and the extracted document
const DocumentSeparator = "\n\nDocument content:\n"

// AssemblePrompt builds the ordered message list sent to the completion API:
// the system prompt, the history verbatim, then the current user turn.
// The user's instruction always precedes the document body.
func AssemblePrompt(systemPrompt string, history []domain.Message, userText, extracted string) []domain.Message {
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)

	content := userText
	if extracted != "" {
		content = userText + DocumentSeparator + extracted
	}
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: content})

	return messages
}
