package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/liang/fanqie/internal/domain"
)

// IntentSource names the parser that produced an intent.
type IntentSource string

// Intent sources.
const (
	IntentSourceLocal  IntentSource = "local"
	IntentSourceRemote IntentSource = "remote"
)

// RemoteIntentParser interprets text with the remote language model.
type RemoteIntentParser struct {
	model  domain.LanguageModel
	access *ModelAccess
	clock  domain.Clock
}

// NewRemoteIntentParser creates a new RemoteIntentParser.
func NewRemoteIntentParser(model domain.LanguageModel, access *ModelAccess, clock domain.Clock) *RemoteIntentParser {
	return &RemoteIntentParser{
		model:  model,
		access: access,
		clock:  clock,
	}
}

// Parse interprets raw text.
// Returns domain.ErrRemoteUnavailable when no model is configured and an
// error wrapping domain.ErrRemoteCallFailed when the call fails.
// The returned due instant is reduced to its calendar date in the
// clock's location.
func (p *RemoteIntentParser) Parse(ctx context.Context, raw string) (domain.ParsedIntent, error) {
	if p.model == nil {
		return domain.ParsedIntent{}, domain.ErrRemoteUnavailable
	}
	creds, err := p.access.Credentials()
	if err != nil {
		return domain.ParsedIntent{}, err
	}

	remote, err := p.model.Interpret(ctx, creds, raw)
	if err != nil {
		return domain.ParsedIntent{}, fmt.Errorf("%w: %w", domain.ErrRemoteCallFailed, err)
	}
	if remote == nil {
		return domain.ParsedIntent{}, fmt.Errorf("%w: empty interpretation", domain.ErrRemoteCallFailed)
	}

	intent := domain.ParsedIntent{Title: strings.TrimSpace(remote.Title)}
	if intent.Title == "" {
		intent.Title = strings.TrimSpace(raw)
	}
	if remote.Priority != nil && *remote.Priority != 0 {
		priority := *remote.Priority
		intent.Priority = &priority
	}
	if remote.DueDate != nil {
		due := domain.DateOf(remote.DueDate.In(p.clock.Now().Location()))
		intent.DueDate = &due
	}
	return intent, nil
}

// ResolveResult is the outcome of IntentResolver.Resolve.
type ResolveResult struct {
	RemoteErr error // Swallowed remote failure (nil when remote succeeded or was not tried)
	Source    IntentSource
	Intent    domain.ParsedIntent
}

// IntentResolver picks between the remote and the local parser.
type IntentResolver struct {
	local  *domain.LocalIntentParser
	remote *RemoteIntentParser
	logger domain.Logger
}

// NewIntentResolver creates a new IntentResolver.
func NewIntentResolver(local *domain.LocalIntentParser, remote *RemoteIntentParser, logger domain.Logger) *IntentResolver {
	return &IntentResolver{
		local:  local,
		remote: remote,
		logger: logger,
	}
}

// Resolve interprets raw text and never fails.
// With modelReady false only the local parser runs. Otherwise the remote
// parser is tried first and any failure falls back to the local result.
func (r *IntentResolver) Resolve(ctx context.Context, raw string, modelReady bool) ResolveResult {
	if modelReady && r.remote != nil {
		intent, err := r.remote.Parse(ctx, raw)
		if err == nil {
			return ResolveResult{Intent: intent, Source: IntentSourceRemote}
		}
		if r.logger != nil {
			r.logger.Warn("", "intent", fmt.Sprintf("remote parse failed, using local rules: %v", err))
		}
		return ResolveResult{
			Intent:    r.local.Parse(raw),
			Source:    IntentSourceLocal,
			RemoteErr: err,
		}
	}
	return ResolveResult{Intent: r.local.Parse(raw), Source: IntentSourceLocal}
}
