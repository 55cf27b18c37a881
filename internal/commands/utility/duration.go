package utility

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/textcmd/pkg/args"
)

const (
	minReminderDelay = time.Second
	maxReminderDelay = 30 * 24 * time.Hour
)

var durationPartRe = regexp.MustCompile(`(\d+)([dhms])`)

// Duration is a reminder delay written as `10m`, `1h30m` or `2d`.
type Duration time.Duration

// Convert parses raw. Units are d, h, m and s, largest first is not required.
func (Duration) Convert(_ context.Context, _ *args.Context, raw string) (any, error) {
	d, err := ParseDuration(raw)
	if err != nil {
		return nil, err
	}
	return Duration(d), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ParseDuration accepts one or more number+unit pairs and nothing else, and
// keeps the result between one second and thirty days.
func ParseDuration(raw string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	parts := durationPartRe.FindAllStringSubmatchIndex(s, -1)
	if s == "" || len(parts) == 0 {
		return 0, fmt.Errorf("%w: %q is not a duration like 10m or 1h30m", args.ErrBadArgument, raw)
	}

	var total time.Duration
	pos := 0
	for _, p := range parts {
		if p[0] != pos {
			return 0, fmt.Errorf("%w: %q is not a duration like 10m or 1h30m", args.ErrBadArgument, raw)
		}
		n, err := strconv.Atoi(s[p[2]:p[3]])
		if err != nil || n > 100000 {
			return 0, fmt.Errorf("%w: %q is too large", args.ErrBadArgument, raw)
		}
		total += time.Duration(n) * unit(s[p[4]:p[5]])
		pos = p[1]
	}
	if pos != len(s) {
		return 0, fmt.Errorf("%w: %q is not a duration like 10m or 1h30m", args.ErrBadArgument, raw)
	}

	if total < minReminderDelay || total > maxReminderDelay {
		return 0, fmt.Errorf("%w: duration must be between 1s and 30d", args.ErrBadArgument)
	}
	return total, nil
}

func unit(u string) time.Duration {
	switch u {
	case "d":
		return 24 * time.Hour
	case "h":
		return time.Hour
	case "m":
		return time.Minute
	default:
		return time.Second
	}
}
