package ai

import (
	"strings"

	"github.com/yildizm/go-promptfmt"
)

// maxPromptCode bounds how much code is embedded in a prompt
const maxPromptCode = 8000

// RefactoringPattern builds the prompt sent to LLM providers
type RefactoringPattern struct {
	promptfmt.BasePattern
	Language string
	Code     string
	MaxCode  int
}

// SuggestionResponse is the JSON shape the prompt asks the model for
type SuggestionResponse struct {
	Suggestion string   `json:"suggestion"`
	Changes    []string `json:"changes,omitempty"`
}

// NewRefactoringPattern creates a pattern for req
func NewRefactoringPattern(req *SuggestionRequest) *RefactoringPattern {
	return &RefactoringPattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Suggests a refactoring for a code snippet",
			Tags:        []string{"refactoring", "code-review"},
		},
		Language: req.Language,
		Code:     req.Code,
		MaxCode:  maxPromptCode,
	}
}

// Build renders the prompt
func (p *RefactoringPattern) Build() *promptfmt.Prompt {
	language := p.Language
	if language == "" {
		language = "unknown"
	}

	code := p.Code
	truncated := false
	if p.MaxCode > 0 && len(code) > p.MaxCode {
		code = code[:p.MaxCode]
		truncated = true
	}

	pb := promptfmt.New().
		System("You are a senior software engineer reviewing code. Suggest one focused refactoring that improves readability or maintainability. Be concise.").
		User("Suggest a refactoring for the following %s code:\n\n```%s\n%s\n```", language, strings.ToLower(language), code).
		AddContext("language", language)

	if truncated {
		pb.AddContext("note", "the code was truncated")
	}

	return pb.ExpectJSON(&SuggestionResponse{}).Build()
}

// ParseSuggestion extracts the suggestion from a model reply. Replies that
// are not the requested JSON are returned as plain text.
func ParseSuggestion(content string) string {
	var resp SuggestionResponse
	if result := promptfmt.NewResponse(content).TryParseJSON(&resp); result.Success && resp.Suggestion != "" {
		if len(resp.Changes) == 0 {
			return resp.Suggestion
		}
		var b strings.Builder
		b.WriteString(resp.Suggestion)
		for _, change := range resp.Changes {
			b.WriteString("\n- ")
			b.WriteString(change)
		}
		return b.String()
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(content), "`"))
}
