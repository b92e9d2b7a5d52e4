package ledger

import (
	"context"
	"sync"
)

// Notifier surfaces a message to the user, who acknowledges it.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, message string)

// Notify calls f(ctx, message).
func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f(ctx, prompt).
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Confirmed returns a Confirmer that always gives the same answer. It is used
// when the user already answered, e.g. through a confirm flag in a request.
func Confirmed(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return answer })
}

// Inbox is a Notifier that keeps every message for later display.
type Inbox struct {
	mu       sync.Mutex
	messages []string
}

// Notify records the message.
func (i *Inbox) Notify(_ context.Context, message string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.messages = append(i.messages, message)
}

// Messages returns the recorded messages in order.
func (i *Inbox) Messages() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.messages...)
}

func notify(ctx context.Context, n Notifier, message string) {
	if n != nil {
		n.Notify(ctx, message)
	}
}
