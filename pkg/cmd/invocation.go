// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord messages, CLI, HTTP) is defined by adapters that wrap this.
package cmd

import (
	"context"

	"github.com/keshon/textcmd/pkg/args"
)

// Invocation carries what any command runner passes: the bound arguments, the
// raw argument text and an opaque payload. Adapters set Data to their context
// (e.g. *discordgo.Session + event).
type Invocation struct {
	// Path is the command path as typed, aliases included, e.g. ["remind", "in"].
	Path []string
	Args args.BoundArguments
	Raw  string
	Data interface{}
}

// Command is the universal contract: identity plus execution. Permissions and
// transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// SignatureProvider is implemented by commands that take arguments. Commands
// without it are bound against an empty signature.
type SignatureProvider interface {
	Signature() *args.Signature
}

// Aliased is implemented by commands reachable under extra names.
type Aliased interface {
	Aliases() []string
}

// Group is implemented by commands that own subcommands.
type Group interface {
	Subcommands() *Registry
}

// Hideable is implemented by commands that should not be listed.
type Hideable interface {
	Hidden() bool
}

// SignatureOf returns the signature of c or of the command it wraps.
func SignatureOf(c Command) *args.Signature {
	if sp, ok := Root(c).(SignatureProvider); ok {
		return sp.Signature()
	}
	return nil
}

// AliasesOf returns the aliases of c or of the command it wraps.
func AliasesOf(c Command) []string {
	if a, ok := Root(c).(Aliased); ok {
		return a.Aliases()
	}
	return nil
}

// IsHidden reports whether c asks not to be listed.
func IsHidden(c Command) bool {
	h, ok := Root(c).(Hideable)
	return ok && h.Hidden()
}
