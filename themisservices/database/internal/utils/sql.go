package utils

import (
	"fmt"
	"reflect"
	"strings"
)

// Statement is SQL text with its placeholder tokens held apart from the text
// around them. text always has one more element than tokens, and tokens[i]
// sits between text[i] and text[i+1]. Text that merely looks like a token is
// never substituted.
type Statement struct {
	text   []string
	tokens []string
}

// SplitStatement cuts raw at every occurrence of marker followed by digits.
// Each cut becomes the token tokenPrefix+digits. marker must not occur in raw
// other than in front of a token.
func SplitStatement(raw string, marker string, tokenPrefix string) Statement {
	pieces := strings.Split(raw, marker)

	statement := Statement{
		text:   []string{pieces[0]},
		tokens: []string{},
	}

	for _, piece := range pieces[1:] {
		digits := len(piece) - len(strings.TrimLeft(piece, "0123456789"))
		statement.tokens = append(statement.tokens, tokenPrefix+piece[:digits])
		statement.text = append(statement.text, piece[digits:])
	}

	return statement
}

func (statement Statement) Tokens() []string {
	return statement.tokens
}

// Replace writes the statement with every token swapped for replace(token).
func (statement Statement) Replace(replace func(token string) string) string {
	builder := strings.Builder{}
	for i, text := range statement.text {
		builder.WriteString(text)
		if i < len(statement.tokens) {
			builder.WriteString(replace(statement.tokens[i]))
		}
	}

	return builder.String()
}

func (statement Statement) String() string {
	return statement.Replace(func(token string) string {
		return token
	})
}

// Prepare writes every token in the engine's positional placeholder syntax and
// returns the arguments in placeholder order. Slice parameters (other than
// []byte) expand into one placeholder per element.
func (statement Statement) Prepare(parameters map[string]any, numberedParams bool) (string, []any, error) {
	args := []any{}
	counter := 0
	paramBuilder := func() string {
		counter++
		if !numberedParams {
			return "?"
		}

		return fmt.Sprintf("$%d", counter)
	}

	missing := []string{}
	prepared := statement.Replace(func(token string) string {
		parameterValue, found := parameters[token]
		if !found {
			missing = append(missing, token)
			return token
		}

		if parameterValue == nil {
			args = append(args, nil)
			return paramBuilder()
		}

		rt := reflect.TypeOf(parameterValue)
		if (rt.Kind() == reflect.Array || rt.Kind() == reflect.Slice) && rt.Elem().Kind() != reflect.Uint8 {
			localArgs := []string{}

			valueOf := reflect.ValueOf(parameterValue)
			for i := range valueOf.Len() {
				localArgs = append(localArgs, paramBuilder())
				args = append(args, valueOf.Index(i).Interface())
			}

			return strings.Join(localArgs, ", ")
		}

		args = append(args, parameterValue)

		return paramBuilder()
	})

	if len(missing) > 0 {
		return "", nil, fmt.Errorf("missing parameters: %s", strings.Join(missing, ", "))
	}

	return strings.TrimSpace(prepared), args, nil
}
