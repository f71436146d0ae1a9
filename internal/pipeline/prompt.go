package pipeline

import (
	"fmt"
	"strings"

	"chatpipe/internal/models"
)

const (
	previewLimit = 200

	userLabel      = "Người dùng"
	assistantLabel = "Trợ lý"

	// attachment text folded into the prompt is bounded to keep the
	// provider call from ballooning
	attachmentTextLimit = 8000
)

// preview bounds a trace input echo.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit]) + "…"
}

// conversationContext renders all turns before the last one as
// speaker-labeled lines.
func conversationContext(messages []models.Message) string {
	if len(messages) <= 1 {
		return ""
	}
	var b strings.Builder
	for _, msg := range messages[:len(messages)-1] {
		text := strings.TrimSpace(msg.Content.PlainText())
		if text == "" {
			continue
		}
		label := userLabel
		if msg.Role == models.RoleAssistant {
			label = assistantLabel
		}
		fmt.Fprintf(&b, "%s: %s\n", label, text)
	}
	return strings.TrimSpace(b.String())
}

// searchSection renders search output as labeled sections for the next
// stage's input.
func searchSection(data *models.SearchData) string {
	if !data.HasContent() {
		return ""
	}
	var b strings.Builder
	if data.Summary != "" {
		b.WriteString("Tóm tắt tra cứu:\n")
		b.WriteString(data.Summary)
		b.WriteString("\n")
	}
	if len(data.Results) > 0 {
		b.WriteString("Kết quả tìm kiếm:\n")
		for _, r := range data.Results {
			line := "- " + r.Title
			if r.URL != "" {
				line += " (" + r.URL + ")"
			}
			if r.Snippet != "" {
				line += ": " + r.Snippet
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// rewriteInput concatenates prior context, search content, and the original
// question, in that order. With neither context nor search content it is the
// question itself.
func rewriteInput(contextText, searchText, question string) string {
	sections := make([]string, 0, 3)
	if contextText != "" {
		sections = append(sections, "Ngữ cảnh hội thoại:\n"+contextText)
	}
	if searchText != "" {
		sections = append(sections, searchText)
	}
	if len(sections) == 0 {
		return question
	}
	sections = append(sections, "Câu hỏi gốc: "+question)
	return strings.Join(sections, "\n\n")
}

// groundedPrompt asks the answer model to rely on the search content.
func groundedPrompt(question, searchText string) string {
	if searchText == "" {
		return question
	}
	return fmt.Sprintf(
		"Dựa vào thông tin tra cứu dưới đây, hãy trả lời câu hỏi một cách đầy đủ và chính xác.\n\n%s\n\nCâu hỏi: %s",
		searchText, question)
}

// attachmentSection labels extracted attachment text appended to the prompt.
func attachmentSection(name, text string) string {
	runes := []rune(text)
	if len(runes) > attachmentTextLimit {
		text = string(runes[:attachmentTextLimit])
	}
	return fmt.Sprintf("Nội dung tệp đính kèm %q:\n%s", name, text)
}
