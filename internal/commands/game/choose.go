package game

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

type ChooseCommand struct {
	core.Base
}

func NewChooseCommand() *ChooseCommand {
	return &ChooseCommand{Base: core.Base{
		CommandName:     "choose",
		CommandAliases:  []string{"pick"},
		Summary:         "Pick one of the options, quote options that contain spaces",
		CommandCategory: "🎲 Gameplay",
		Params:          args.NewBuilder().Param("options", nil, args.Rest()).MustBuild(),
	}}
}

func (c *ChooseCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}

	// the bound value joins the words; re-split the raw text to keep
	// quoted options whole
	options := args.Texts(args.Tokenize(inv.Raw))
	if len(options) < 2 {
		return mc.Reply("Give me at least two options to choose from.")
	}
	return mc.Reply(fmt.Sprintf("I choose **%s**.", Choose(options, rand.IntN)))
}

// Choose returns one of options using intn(n) in [0, n).
func Choose(options []string, intn func(int) int) string {
	return options[intn(len(options))]
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewChooseCommand())
}
