package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/semnet/internal/props"
)

// Script error codes (E200-E209)
const (
	ErrBadLine          = "E201" // line is not (ids) {props} or bare ids
	ErrBadProps         = "E202" // props are not a JSON object
	ErrWildcardConflict = "E203" // id used both as wildcard and literal
	ErrBuild            = "E204" // network rejected the declaration
)

// ScriptError reports a problem with one script line.
type ScriptError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Mode selects the script dialect.
type Mode int

const (
	// ModeNetwork parses network scripts; '*' is not allowed.
	ModeNetwork Mode = iota

	// ModeQuery parses query scripts; '*' marks a wildcard.
	ModeQuery
)

var tokenRe = regexp.MustCompile(`^[\p{L}\p{N}_\-.@]+$`)

// Item is one parsed declaration.
type Item struct {
	// Line is the 1-based source line.
	Line int

	// IDs holds one entity id, or label, source and target for an edge.
	// Wildcard prefixes are stripped.
	IDs []string

	// Wildcard marks which IDs carried a '*' prefix.
	Wildcard []bool

	// Props is nil when the line has no props object.
	Props props.Object
}

// IsEdge reports whether the item declares an edge.
func (it Item) IsEdge() bool {
	return len(it.IDs) == 3
}

// Parse splits a script into items.
func Parse(script string, mode Mode) ([]Item, error) {
	var items []Item
	for i, raw := range strings.Split(script, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, err := parseLine(line, mode)
		if err != nil {
			err.Line = i + 1
			return nil, err
		}
		item.Line = i + 1
		items = append(items, item)
	}
	return items, nil
}

func parseLine(line string, mode Mode) (Item, *ScriptError) {
	ids, rest := line, ""
	if strings.HasPrefix(line, "(") {
		end := strings.IndexByte(line, ')')
		if end < 0 {
			return Item{}, &ScriptError{Code: ErrBadLine, Message: fmt.Sprintf("unclosed parenthesis in %q", line)}
		}
		ids, rest = line[1:end], strings.TrimSpace(line[end+1:])
	}

	var item Item
	if rest != "" {
		if !strings.HasPrefix(rest, "{") {
			return Item{}, &ScriptError{Code: ErrBadLine, Message: fmt.Sprintf("unexpected text after ids: %q", rest)}
		}
		p, err := props.ParseObject([]byte(rest))
		if err != nil {
			return Item{}, &ScriptError{Code: ErrBadProps, Message: fmt.Sprintf("invalid props %s", rest), Err: err}
		}
		item.Props = p
	}

	tokens := strings.Fields(ids)
	if len(tokens) != 1 && len(tokens) != 3 {
		return Item{}, &ScriptError{
			Code:    ErrBadLine,
			Message: fmt.Sprintf("expected 1 or 3 ids, got %d in %q", len(tokens), ids),
		}
	}

	for _, tok := range tokens {
		wildcard := false
		if mode == ModeQuery && strings.HasPrefix(tok, "*") {
			tok, wildcard = tok[1:], true
		}
		if !tokenRe.MatchString(tok) {
			return Item{}, &ScriptError{Code: ErrBadLine, Message: fmt.Sprintf("invalid id %q", tok)}
		}
		item.IDs = append(item.IDs, tok)
		item.Wildcard = append(item.Wildcard, wildcard)
	}
	return item, nil
}
