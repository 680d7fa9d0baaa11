// Package prompt renders the text sent to the generation model from a question and its context.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"geekqa/internal/retrieval"
)

// ErrTemplate reports a malformed or missing prompt template.
var ErrTemplate = errors.New("invalid prompt template")

// Placeholder names accepted in a template.
const (
	SlotContext  = "context"
	SlotQuestion = "question"
)

//go:embed templates/qa_ja.tmpl
var defaultTemplate string

// DefaultTemplate returns the built-in Japanese persona template.
func DefaultTemplate() string {
	return defaultTemplate
}

type segment struct {
	literal string
	slot    string
}

// Composer fills a parsed template with rendered context and the question.
// A Composer is immutable after construction and safe for concurrent use.
type Composer struct {
	segments []segment
}

// NewComposer parses tmpl. It must contain {context} and {question} exactly once each;
// "{{" and "}}" produce literal braces.
func NewComposer(tmpl string) (*Composer, error) {
	segments, err := parse(tmpl)
	if err != nil {
		return nil, err
	}
	return &Composer{segments: segments}, nil
}

// Default returns a Composer over the built-in template.
func Default() *Composer {
	c, err := NewComposer(defaultTemplate)
	if err != nil {
		panic(fmt.Sprintf("built-in prompt template: %v", err))
	}
	return c
}

// LoadComposer reads a template file, or uses the built-in template when path is empty.
func LoadComposer(path string) (*Composer, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrTemplate, path, err)
	}
	return NewComposer(string(raw))
}

// Compose renders the prompt. Substitution is a single pass, so placeholder-like text
// inside chunks or the question is never expanded. The question is escaped like chunk
// text so it cannot close its element or start a new conversation turn.
func (c *Composer) Compose(chunks []retrieval.DocumentChunk, question string) (string, error) {
	if c == nil || len(c.segments) == 0 {
		return "", fmt.Errorf("%w: composer has no template", ErrTemplate)
	}

	rendered := RenderContext(chunks)

	var b strings.Builder
	for _, seg := range c.segments {
		switch seg.slot {
		case SlotContext:
			b.WriteString(rendered)
		case SlotQuestion:
			b.WriteString(escapeText(question))
		default:
			b.WriteString(seg.literal)
		}
	}
	return b.String(), nil
}

// RenderContext wraps each chunk in a document element, in order, joined by newlines.
func RenderContext(chunks []retrieval.DocumentChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	parts := make([]string, len(chunks))
	for i, ch := range chunks {
		parts[i] = `<document index="` + strconv.Itoa(i+1) + `" source="` + attrEscaper.Replace(ch.SourceID) + `">` +
			escapeText(ch.Text) + `</document>`
	}
	return strings.Join(parts, "\n")
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;",
		// Turn markers get a space after the blank line so only the template starts turns.
		"\n\nHuman:", "\n\n Human:",
		"\n\nAssistant:", "\n\n Assistant:",
	)
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", " ")
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func parse(tmpl string) ([]segment, error) {
	var (
		segments []segment
		lit      strings.Builder
		seen     = map[string]int{}
	)
	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch {
		case ch == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			lit.WriteByte('{')
			i++
		case ch == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			lit.WriteByte('}')
			i++
		case ch == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d", ErrTemplate, i)
			}
			name := tmpl[i+1 : i+1+end]
			if name != SlotContext && name != SlotQuestion {
				return nil, fmt.Errorf("%w: unknown placeholder {%s}", ErrTemplate, name)
			}
			seen[name]++
			flush()
			segments = append(segments, segment{slot: name})
			i += end + 1
		case ch == '}':
			return nil, fmt.Errorf("%w: unmatched '}' at offset %d", ErrTemplate, i)
		default:
			lit.WriteByte(ch)
		}
	}
	flush()

	for _, name := range []string{SlotContext, SlotQuestion} {
		if seen[name] != 1 {
			return nil, fmt.Errorf("%w: {%s} must appear exactly once, found %d", ErrTemplate, name, seen[name])
		}
	}
	return segments, nil
}
