package game

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// highest always rolls the top face.
func highest(n int) int { return n - 1 }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		formula string
		total   int
		detail  string
	}{
		{"2d6+3", 15, "`2d6` [6, 6] + `3`"},
		{"1d4*2-3", 5, "`1d4` [4] * `2` - `3`"},
		{"2 + 3 * 4", 14, "`2` + `3` * `4`"},
		{"d20/4", 5, "`d20` [20] / `4`"},
		{"10-2D6", -2, "`10` - `2D6` [6, 6]"},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			res, err := Evaluate(tt.formula, highest)
			require.NoError(t, err)
			assert.Equal(t, tt.total, res.Total)
			assert.Equal(t, tt.detail, res.Detail)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := map[string]string{
		"":      "Can't parse",
		"2d6+x": "Can't parse",
		"+3":    "without left operand",
		"d6d6":  "missing operator",
		"3+":    "ends with an operator",
		"4/0":   "Division by zero",
		"1d1":   "invalid dice sides",
		"0d6":   "invalid dice count",
		"101d6": "too big",
	}
	for formula, want := range tests {
		_, err := Evaluate(formula, highest)
		require.Error(t, err, formula)
		assert.Contains(t, err.Error(), want, formula)
	}
}

func TestChoose(t *testing.T) {
	options := []string{"tea", "coffee", "hot chocolate"}
	assert.Equal(t, "hot chocolate", Choose(options, highest))
	assert.Equal(t, "tea", Choose(options, func(int) int { return 0 }))
}

func TestThankMessage(t *testing.T) {
	author := &discordgo.User{Username: "ann"}
	members := []any{
		&discordgo.Member{Nick: "Bobby", User: &discordgo.User{Username: "bob"}},
		&discordgo.Member{User: &discordgo.User{Username: "cy", GlobalName: "Cyrus"}},
		&discordgo.Member{User: &discordgo.User{Username: "dee"}},
		"not a member",
	}
	assert.Equal(t, "**ann** thanks **Bobby**, **Cyrus**, **dee** for the map", ThankMessage(author, members, "for the map"))
}
