package args

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const escapeChar = '\\'

// Token is one unit of message text. Start and End are byte offsets into the
// tokenized string; for a quoted token they include the quotes.
type Token struct {
	Text   string
	Quoted bool
	Start  int
	End    int
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '`'
}

// Tokenize splits raw into tokens. It never fails: an unterminated quote runs
// to the end of the input and a dangling escape is kept as a literal backslash.
func Tokenize(raw string) []Token {
	var (
		tokens  []Token
		buf     strings.Builder
		inToken bool
		quote   rune
		cur     Token
	)

	flush := func(end int) {
		cur.Text = buf.String()
		cur.End = end
		tokens = append(tokens, cur)
		buf.Reset()
		inToken = false
		quote = 0
		cur = Token{}
	}

	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])

		if r == escapeChar {
			next, nsize := utf8.DecodeRuneInString(raw[i+size:])
			if nsize > 0 && (isQuote(next) || unicode.IsSpace(next) || next == escapeChar) {
				if !inToken {
					inToken = true
					cur.Start = i
				}
				buf.WriteString(raw[i+size : i+size+nsize])
				i += size + nsize
				continue
			}
		}

		switch {
		case quote != 0:
			if r == quote {
				flush(i + size)
			} else {
				buf.WriteString(raw[i : i+size])
			}
		case unicode.IsSpace(r):
			if inToken {
				flush(i)
			}
		case !inToken && isQuote(r):
			inToken = true
			cur.Start = i
			cur.Quoted = true
			quote = r
		default:
			if !inToken {
				inToken = true
				cur.Start = i
			}
			buf.WriteString(raw[i : i+size])
		}
		i += size
	}

	if inToken {
		flush(len(raw))
	}
	return tokens
}

// Texts returns the text of every token, in order.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// Remainder returns the slice of raw starting at the first token, so callers
// can recover the untouched text after a command name.
func Remainder(raw string, tokens []Token) string {
	if len(tokens) == 0 {
		return ""
	}
	return raw[tokens[0].Start:]
}

// Quote wraps s in double quotes, escaping embedded quotes and backslashes.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == escapeChar {
			b.WriteByte(escapeChar)
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// JoinQuoted quotes each text and joins them with single spaces. Tokenizing
// the result yields the same texts in the same order.
func JoinQuoted(texts []string) string {
	quoted := make([]string, len(texts))
	for i, t := range texts {
		quoted[i] = Quote(t)
	}
	return strings.Join(quoted, " ")
}
