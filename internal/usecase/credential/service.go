// Package credential resolves the provider API key a session runs with.
package credential

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// Resolver finds a credential: the one a session already holds, then configuration,
// then the user. Nothing else in a session runs until it succeeds.
type Resolver struct {
	source   Source
	varName  string
	prompter Prompter
}

// New creates a resolver looking up varName in source. prompter may be nil.
func New(source Source, varName string, prompter Prompter) *Resolver {
	return &Resolver{source: source, varName: varName, prompter: prompter}
}

// VarName is the variable the credential is looked up under.
func (r *Resolver) VarName() string { return r.varName }

// Resolve returns held when set. Otherwise it consults configuration and finally the
// prompter; an empty or missing answer yields domain.ErrCredentialRequired.
func (r *Resolver) Resolve(ctx context.Context, held string) (string, error) {
	if held = strings.TrimSpace(held); held != "" {
		return held, nil
	}

	if r.source != nil {
		v, ok, err := r.source.Lookup(r.varName)
		if err != nil {
			return "", fmt.Errorf("lookup %s: %w", r.varName, err)
		}
		if ok {
			return v, nil
		}
	}

	if r.prompter == nil {
		return "", domain.ErrCredentialRequired
	}
	answer, err := r.prompter.PromptCredential(ctx, r.varName)
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", r.varName, err)
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return "", domain.ErrCredentialRequired
	}
	return answer, nil
}
