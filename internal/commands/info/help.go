package info

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

type HelpCommand struct {
	core.Base
	Registry *cmd.Registry
}

func NewHelpCommand(reg *cmd.Registry) *HelpCommand {
	return &HelpCommand{
		Base: core.Base{
			CommandName:     "help",
			CommandAliases:  []string{"h", "commands"},
			Summary:         "List commands, or show how to use one",
			CommandCategory: "🕯️ Information",
			Params: args.NewBuilder().
				Param("command", nil, args.Optional()).
				Param("subcommand", nil, args.Optional()).
				MustBuild(),
		},
		Registry: reg,
	}
}

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}

	var words []string
	for _, name := range []string{"command", "subcommand"} {
		if w := inv.Args.String(name); w != "" {
			words = append(words, strings.ToLower(w))
		}
	}

	if len(words) == 0 {
		return mc.ReplyEmbed("Help", BuildHelpByCategory(c.Registry, mc.Prefix))
	}
	text, found := DescribeCommand(c.Registry, mc.Prefix, words)
	if !found {
		return mc.Reply(fmt.Sprintf("No command called `%s`.", words[0]))
	}
	return mc.ReplyEmbed("Help", text)
}

// BuildHelpByCategory lists visible, enabled commands grouped by category, ordered by
// category weight and then by name.
func BuildHelpByCategory(reg *cmd.Registry, prefix string) string {
	categoryMap := make(map[string][]cmd.Command)
	for _, c := range reg.GetAll() {
		if cmd.IsHidden(c) || !cmd.IsEnabled(c) {
			continue
		}
		cat := core.CategoryOf(c)
		categoryMap[cat] = append(categoryMap[cat], c)
	}

	cats := make([]string, 0, len(categoryMap))
	for cat := range categoryMap {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeight(cats[i]), config.CategoryWeight(cats[j])
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		name := cat
		if name == "" {
			name = "Other"
		}
		sb.WriteString(fmt.Sprintf("**%s**\n", name))
		for _, c := range categoryMap[cat] {
			sb.WriteString(fmt.Sprintf("`%s%s` - %s\n", prefix, c.Name(), c.Description()))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Type `%shelp <command>` for details.", prefix))
	return sb.String()
}

// DescribeCommand renders usage, aliases and subcommands of the command
// named by words.
func DescribeCommand(reg *cmd.Registry, prefix string, words []string) (string, bool) {
	chain, n := reg.Lookup(words)
	if n == 0 || !cmd.PathEnabled(chain) {
		return "", false
	}
	c, path := chain[n-1], words[:n]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("`%s`\n%s\n", core.Usage(prefix, path, cmd.SignatureOf(c)), c.Description()))
	if aliases := cmd.AliasesOf(c); len(aliases) > 0 {
		sb.WriteString(fmt.Sprintf("\n**Aliases**: `%s`\n", strings.Join(aliases, "`, `")))
	}
	if g, ok := cmd.Root(c).(cmd.Group); ok {
		sb.WriteString("\n**Subcommands**\n")
		for _, sub := range g.Subcommands().GetAll() {
			if cmd.IsHidden(sub) || !cmd.IsEnabled(sub) {
				continue
			}
			subPath := append(append([]string{}, path...), sub.Name())
			sb.WriteString(fmt.Sprintf("`%s` - %s\n", core.Usage(prefix, subPath, cmd.SignatureOf(sub)), sub.Description()))
		}
	}
	return sb.String(), true
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewHelpCommand(cmd.DefaultRegistry))
}
