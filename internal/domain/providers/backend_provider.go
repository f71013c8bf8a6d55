package providers

import (
	"context"
)

// TranslationProvider translates display strings through the backend.
type TranslationProvider interface {
	// Translate returns the translations in the same order as texts.
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)
}
