// Package cmd is the transport-agnostic command core. A command has a name,
// a description and Run(ctx, invocation); transports (slash commands, the
// operator CLI) wrap it with their own registration and dispatch.
package cmd

import "context"

// Invocation is the input a transport passes to a command. Data holds the
// transport context, for example *command.SlashInteractionContext.
type Invocation struct {
	Name string
	Args []string
	Data interface{}
}

// Command is identity plus execution. Permissions, options and registration
// details live in transport adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
