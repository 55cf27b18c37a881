package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

const maxRollTimes = 10

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}
)

type RollCommand struct {
	core.Base
}

func NewRollCommand() *RollCommand {
	return &RollCommand{Base: core.Base{
		CommandName:     "roll",
		CommandAliases:  []string{"r", "dice"},
		Summary:         "Roll dice with formulas like `2d6+1d4*2`",
		CommandCategory: "🎲 Gameplay",
		Params: args.NewBuilder().
			Param("formula", nil).
			Param("times", args.TypeOf[int](), args.Default(1)).
			MustBuild(),
	}}
}

func (c *RollCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}

	formula := inv.Args.String("formula")
	times := inv.Args.Int("times")
	if times < 1 || times > maxRollTimes {
		return mc.Reply(fmt.Sprintf("You can roll between 1 and %d times.", maxRollTimes))
	}

	var lines []string
	for range times {
		res, err := Evaluate(formula, rand.IntN)
		if err != nil {
			return mc.Reply(err.Error())
		}
		lines = append(lines, fmt.Sprintf("**Calculation**:\t%s\n**Result**:\t**%d**", res.Detail, res.Total))
	}

	return mc.ReplyEmbed("🎲 Dice Roll", fmt.Sprintf("**User Input**:\t`%s`\n%s", formula, strings.Join(lines, "\n\n")))
}

// RollResult is an evaluated formula.
type RollResult struct {
	Total  int
	Detail string
}

type term struct {
	value int
	desc  string
	op    string
}

// Evaluate rolls a dice formula. intn(n) must return a value in [0, n).
// Multiplication and division bind tighter than addition and subtraction.
func Evaluate(formula string, intn func(int) int) (RollResult, error) {
	formula = strings.ReplaceAll(formula, " ", "")
	if formula == "" || tokenRegex.ReplaceAllString(formula, "") != "" {
		return RollResult{}, errors.New("Can't parse your formula. Try something like `2d6+1d4*2-3`")
	}
	tokens := tokenRegex.FindAllString(formula, -1)

	var terms []term
	currentOp := "+"
	expectOperand := true
	for _, token := range tokens {
		if validOps[token] {
			if expectOperand {
				return RollResult{}, errors.New("Syntax error: operator without left operand")
			}
			currentOp = token
			expectOperand = true
			continue
		}
		if !expectOperand {
			return RollResult{}, errors.New("Syntax error: missing operator")
		}

		val, desc, err := evaluateToken(token, intn)
		if err != nil {
			return RollResult{}, fmt.Errorf("Failed to evaluate `%s`: %v", token, err)
		}
		terms = append(terms, term{value: val, desc: desc, op: currentOp})
		expectOperand = false
	}
	if expectOperand {
		return RollResult{}, errors.New("Syntax error: formula ends with an operator")
	}

	// * and / first
	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		prev := merged[len(merged)-1]
		merged = merged[:len(merged)-1]

		var newVal int
		switch t.op {
		case "*":
			newVal = prev.value * t.value
		case "/":
			if t.value == 0 {
				return RollResult{}, errors.New("Division by zero is forbidden. Even in games.")
			}
			newVal = prev.value / t.value
		}
		merged = append(merged, term{
			value: newVal,
			desc:  fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
			op:    prev.op,
		})
	}

	// + and -
	total := 0
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, fmt.Sprintf(" %s ", t.op))
		}
		details = append(details, t.desc)
		if t.op == "-" {
			total -= t.value
		} else {
			total += t.value
		}
	}

	return RollResult{Total: total, Detail: strings.Join(details, "")}, nil
}

func evaluateToken(token string, intn func(int) int) (int, string, error) {
	if m := diceRegex.FindStringSubmatch(token); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return 0, "", errors.New("invalid dice count")
			}
			count = n
		}

		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return 0, "", errors.New("invalid dice sides")
		}
		if count > 100 || sides > 1000 {
			return 0, "", errors.New("too big. max 100 dice, 1000 sides")
		}

		var sum int
		rolls := make([]string, 0, count)
		for range count {
			r := intn(sides) + 1
			sum += r
			rolls = append(rolls, strconv.Itoa(r))
		}
		return sum, fmt.Sprintf("`%s` [%s]", token, strings.Join(rolls, ", ")), nil
	}

	num, err := strconv.Atoi(token)
	if err != nil {
		return 0, "", errors.New("not a number or dice")
	}
	return num, fmt.Sprintf("`%d`", num), nil
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewRollCommand())
}
