package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/liang/fanqie/internal/domain"
)

// PreviewIntentInput contains the parameters for previewing an interpretation.
type PreviewIntentInput struct {
	Text string // Free-form text
}

// PreviewIntentOutput contains the interpretation of the text.
type PreviewIntentOutput struct {
	Source IntentSource
	Intent domain.ParsedIntent
}

// PreviewIntent interprets text without creating a task.
type PreviewIntent struct {
	resolver *IntentResolver
	access   *ModelAccess
}

// NewPreviewIntent creates a new PreviewIntent use case.
func NewPreviewIntent(resolver *IntentResolver, access *ModelAccess) *PreviewIntent {
	return &PreviewIntent{
		resolver: resolver,
		access:   access,
	}
}

// Execute interprets the text.
// When the remote call fails the local interpretation is still returned,
// together with an error wrapping domain.ErrRemoteCallFailed.
func (uc *PreviewIntent) Execute(ctx context.Context, in PreviewIntentInput) (*PreviewIntentOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrEmptyTitle
	}

	result := uc.resolver.Resolve(ctx, text, uc.access.Ready())
	out := &PreviewIntentOutput{Intent: result.Intent, Source: result.Source}

	if result.RemoteErr != nil {
		if errors.Is(result.RemoteErr, domain.ErrRemoteCallFailed) {
			return out, result.RemoteErr
		}
		return out, errors.Join(domain.ErrRemoteCallFailed, result.RemoteErr)
	}
	return out, nil
}
