package cmd

// Middleware wraps a command (e.g. logging, recovery). The wrapped
// value is still a Command; Root reaches the original.
type Middleware func(Command) Command

// Apply applies middlewares so that the first in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// Chain composes middlewares into one, first outermost.
func Chain(mws ...Middleware) Middleware {
	return func(c Command) Command {
		return Apply(c, mws...)
	}
}
