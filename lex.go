package clesh

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	encunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// A Token is a single source token annotated for diagnostics.
type Token struct {
	Text   string
	Source string
	Line   int
}

// SplitLine splits one source line into raw tokens. Tokens are separated by
// whitespace, except that a double-quoted run becomes a single token spelled
// with a leading '$', so string literals survive tokenization with their
// spaces intact. Quotes do not nest and there are no escapes; a quote left
// open runs to the end of the line.
func SplitLine(line string) []string {
	var tokens []string
	var b strings.Builder
	quoted := false
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range line {
		switch {
		case quoted:
			if r == '"' {
				tokens = append(tokens, "$"+b.String())
				b.Reset()
				quoted = false
			} else {
				b.WriteRune(r)
			}
		case r == '"':
			flush()
			quoted = true
		case unicode.IsSpace(r):
			flush()
		default:
			b.WriteRune(r)
		}
	}
	if quoted {
		tokens = append(tokens, "$"+b.String())
	} else {
		flush()
	}
	return tokens
}

// readSource reads a source file and returns its lines. The decoder honors a
// byte order mark, so UTF-8 and UTF-16 sources both work; input without a
// mark is taken as UTF-8.
func readSource(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := encunicode.UTF8.NewDecoder()
	scanner := bufio.NewScanner(transform.NewReader(f, encunicode.BOMOverride(dec)))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
