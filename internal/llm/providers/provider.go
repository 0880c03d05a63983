package providers

import "context"

// Message is one role-tagged turn in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates one text completion for a list of role-tagged messages.
// Calls are stateless; every request carries its full context.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}

// StatusError carries the upstream HTTP status of a failed completion call
// so callers can report it alongside the message.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
