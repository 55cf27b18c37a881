package core

import (
	"strings"

	"github.com/keshon/textcmd/pkg/args"
)

// Usage renders a one-line synopsis such as "!remind in <duration> <text...>".
// Required parameters use angle brackets, optional ones square brackets.
func Usage(prefix string, path []string, sig *args.Signature) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(strings.Join(path, " "))
	for _, p := range sig.Params() {
		sb.WriteByte(' ')
		sb.WriteString(ParamUsage(p))
	}
	return sb.String()
}

// ParamUsage renders a single parameter, e.g. "[times]" or "<options...>".
func ParamUsage(p args.ParameterSpec) string {
	name := p.Name
	if p.Kind == args.Variadic || p.Kind == args.Greedy {
		name += "..."
	}
	if p.Optional {
		return "[" + name + "]"
	}
	return "<" + name + ">"
}
