package mock

import (
	"context"
	"strings"
	"testing"

	"github.com/yildizm/CodeLens/internal/ai"
)

func TestProvider_Suggest(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "short code",
			code: "x = 1",
			want: "[Mock Suggestion] Consider simplifying the following code:\n\nx = 1...",
		},
		{
			name: "empty code",
			code: "",
			want: "[Mock Suggestion] Consider simplifying the following code:\n\n...",
		},
		{
			name: "long code is cut at 100 characters",
			code: strings.Repeat("a", 150),
			want: "[Mock Suggestion] Consider simplifying the following code:\n\n" + strings.Repeat("a", 100) + "...",
		},
		{
			name: "multibyte characters counted as runes",
			code: strings.Repeat("é", 120),
			want: "[Mock Suggestion] Consider simplifying the following code:\n\n" + strings.Repeat("é", 100) + "...",
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Suggest(context.Background(), &ai.SuggestionRequest{Language: "python", Code: tt.code})
			if err != nil {
				t.Fatalf("Suggest failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Suggest(ctx, &ai.SuggestionRequest{Code: "x"}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	if f.Type() != "mock" {
		t.Errorf("Expected type 'mock', got %q", f.Type())
	}

	p, err := f.Create(f.DefaultConfig())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("Expected name 'mock', got %q", p.Name())
	}
}
