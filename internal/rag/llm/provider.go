package llm

import "context"

// Provider generates the final answer for a user question. The service behind
// it is opaque - it runs its own retrieval and reasoning; we only submit the
// question text and read back an answer string.
type Provider interface {
	Generate(ctx context.Context, query string) (string, error)
}
