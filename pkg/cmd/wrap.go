package cmd

import "context"

// Unwrappable is implemented by middleware wrappers so adapters can reach
// the command underneath and type-assert its provider interfaces.
type Unwrappable interface {
	Command
	Unwrap() Command
}

// Wrapped replaces the Run of Inner while keeping its identity.
type Wrapped struct {
	Inner   Command
	RunFunc func(ctx context.Context, inv *Invocation) error
}

func (w *Wrapped) Name() string        { return w.Inner.Name() }
func (w *Wrapped) Description() string { return w.Inner.Description() }

func (w *Wrapped) Run(ctx context.Context, inv *Invocation) error {
	if w.RunFunc != nil {
		return w.RunFunc(ctx, inv)
	}
	return w.Inner.Run(ctx, inv)
}

func (w *Wrapped) Unwrap() Command { return w.Inner }

// Wrap returns a command that runs run instead of c.Run.
func Wrap(c Command, run func(ctx context.Context, inv *Invocation) error) Command {
	return &Wrapped{Inner: c, RunFunc: run}
}

// Root strips every wrapper from c.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}

// As returns the unwrapped command as T when it implements it.
func As[T any](c Command) (T, bool) {
	t, ok := Root(c).(T)
	return t, ok
}
