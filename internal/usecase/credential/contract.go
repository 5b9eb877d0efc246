package credential

import "context"

// Source looks up configured secrets by variable name.
type Source interface {
	Lookup(name string) (value string, found bool, err error)
}

// Prompter asks the user for a credential. An empty answer means none was given.
type Prompter interface {
	PromptCredential(ctx context.Context, varName string) (string, error)
}
