package cmd

import (
	"context"
	"errors"
	"fmt"
)

// Check decides whether an invocation may go ahead. It runs before any
// argument is bound, once per level of the invoked path: c is the group or
// leaf command being checked at that level.
type Check func(ctx context.Context, c Command, inv *Invocation) error

// ErrSkip makes a check stop the invocation without telling the user.
var ErrSkip = errors.New("command skipped")

// CheckError is returned when a check refuses an invocation.
type CheckError struct {
	// Command is the name of the level whose check refused.
	Command string
	Err     error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check failed for %q: %v", e.Command, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Toggleable is implemented by commands that can be switched off. A disabled
// group disables everything beneath it.
type Toggleable interface {
	Enabled() bool
}

// Hierarchical is implemented by groups that decide whether their checks also
// guard their subcommands. Groups without it pass their checks down.
type Hierarchical interface {
	HierarchicalChecks() bool
}

// IsEnabled reports whether c is switched on; commands that are not
// Toggleable always are.
func IsEnabled(c Command) bool {
	t, ok := Root(c).(Toggleable)
	return !ok || t.Enabled()
}

// PathEnabled reports whether every command along path is enabled.
func PathEnabled(path []Command) bool {
	for _, c := range path {
		if !IsEnabled(c) {
			return false
		}
	}
	return true
}

// CheckedLevels returns the commands of path whose checks apply to its last
// element, outermost first. The last element is always included.
func CheckedLevels(path []Command) []Command {
	if len(path) == 0 {
		return nil
	}
	levels := make([]Command, 0, len(path))
	for _, c := range path[:len(path)-1] {
		if h, ok := Root(c).(Hierarchical); ok && !h.HierarchicalChecks() {
			continue
		}
		levels = append(levels, c)
	}
	return append(levels, path[len(path)-1])
}

// RunChecks runs every check against every checked level of path, parents
// before children. The first refusal stops the rest.
func RunChecks(ctx context.Context, path []Command, inv *Invocation, checks ...Check) error {
	for _, c := range CheckedLevels(path) {
		for _, check := range checks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := check(ctx, c, inv); err != nil {
				return &CheckError{Command: c.Name(), Err: err}
			}
		}
	}
	return nil
}
