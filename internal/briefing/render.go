package briefing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTemplate is returned when section tags do not pair up:
// an unclosed {{#name}} or {{^name}}, or a {{/name}} with no opener.
var ErrMalformedTemplate = errors.New("malformed template")

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Tag sigils. A tag with no sigil is a plain variable.
const (
	sigilSection  = '#' // conditional / iteration section
	sigilInverted = '^' // shown when the value is falsy
	sigilClose    = '/' // section terminator
	sigilNone     = 0
)

// Render substitutes ctx into a mustache-subset template and returns the
// resulting document. Three passes run over the input, each a linear scan
// over tag boundaries: inverted sections first, then conditional/iteration
// sections, then plain variables. Section bodies are rendered by a full
// recursive Render call against the appropriate context (the unchanged
// outer context for inverted and truthy-conditional sections, each item's
// own context for sequences), so a variable inside a section resolves
// exactly once, in the right scope.
//
// Lookup misses render as empty text. Mismatched section tags return an
// error wrapping ErrMalformedTemplate.
func Render(template string, ctx Context) (string, error) {
	out, err := expandSections(template, ctx, sigilInverted)
	if err != nil {
		return "", err
	}
	out, err = expandSections(out, ctx, sigilSection)
	if err != nil {
		return "", err
	}
	return substituteVariables(out, ctx)
}

// tag is one parsed {{...}} occurrence.
type tag struct {
	sigil byte
	name  string
	start int // offset of "{{"
	end   int // offset just past "}}"
}

// parseTag reads the tag starting at pos, which must point at "{{".
// ok is false when the tag never closes; the caller treats the delimiter
// as literal text.
func parseTag(s string, pos int) (t tag, ok bool) {
	inner := pos + len(openDelim)
	rel := strings.Index(s[inner:], closeDelim)
	if rel < 0 {
		return tag{}, false
	}
	name := s[inner : inner+rel]
	t = tag{
		sigil: sigilNone,
		name:  name,
		start: pos,
		end:   inner + rel + len(closeDelim),
	}
	if name != "" {
		switch name[0] {
		case sigilSection, sigilInverted, sigilClose:
			t.sigil = name[0]
			t.name = name[1:]
		}
	}
	return t, true
}

// findSectionEnd locates the {{/name}} matching a section opened just
// before `from`. Nested sections reusing the same name are balanced, so
// each opener pairs with its own closer.
func findSectionEnd(s string, from int, name string) (bodyEnd, resume int, ok bool) {
	depth := 1
	i := from
	for {
		j := strings.Index(s[i:], openDelim)
		if j < 0 {
			return 0, 0, false
		}
		j += i
		t, tagOK := parseTag(s, j)
		if !tagOK {
			return 0, 0, false
		}
		if t.name == name {
			switch t.sigil {
			case sigilSection, sigilInverted:
				depth++
			case sigilClose:
				depth--
				if depth == 0 {
					return t.start, t.end, true
				}
			}
		}
		i = t.end
	}
}

// expandSections resolves every section of the given kind in s against ctx,
// copying everything else through untouched. Sections of the other kind and
// their close tags survive for the later pass.
func expandSections(s string, ctx Context, sigil byte) (string, error) {
	var out strings.Builder
	i := 0
	for {
		j := strings.Index(s[i:], openDelim)
		if j < 0 {
			out.WriteString(s[i:])
			return out.String(), nil
		}
		j += i
		out.WriteString(s[i:j])

		t, ok := parseTag(s, j)
		if !ok {
			// Dangling "{{" with no close: literal text.
			out.WriteString(s[j:])
			return out.String(), nil
		}

		if t.sigil != sigil {
			// The conditional pass runs after every inverted section has
			// been consumed, so a close tag seen here has no opener.
			if sigil == sigilSection && t.sigil == sigilClose {
				return "", fmt.Errorf("%w: unexpected {{/%s}}", ErrMalformedTemplate, t.name)
			}
			out.WriteString(s[t.start:t.end])
			i = t.end
			continue
		}

		bodyEnd, resume, found := findSectionEnd(s, t.end, t.name)
		if !found {
			return "", fmt.Errorf("%w: unclosed section {{%c%s}}", ErrMalformedTemplate, sigil, t.name)
		}
		body := s[t.end:bodyEnd]

		rendered, err := renderSection(sigil, body, ctx, ctx[t.name])
		if err != nil {
			return "", err
		}
		out.WriteString(rendered)
		i = resume
	}
}

// renderSection produces the replacement text for one matched section span.
func renderSection(sigil byte, body string, ctx Context, value any) (string, error) {
	if sigil == sigilInverted {
		// Inverted sections never introduce bindings: the body still sees
		// the outer context.
		if truthy(value) {
			return "", nil
		}
		return Render(body, ctx)
	}

	if items, isList := asList(value); isList {
		var out strings.Builder
		for _, item := range items {
			rendered, err := Render(body, item)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
		return out.String(), nil
	}

	if truthy(value) {
		return Render(body, ctx)
	}
	return "", nil
}

// substituteVariables resolves the plain {{name}} tags left after both
// section passes. Any surviving section sigil means the template was
// malformed.
func substituteVariables(s string, ctx Context) (string, error) {
	var out strings.Builder
	i := 0
	for {
		j := strings.Index(s[i:], openDelim)
		if j < 0 {
			out.WriteString(s[i:])
			return out.String(), nil
		}
		j += i
		out.WriteString(s[i:j])

		t, ok := parseTag(s, j)
		if !ok {
			out.WriteString(s[j:])
			return out.String(), nil
		}

		switch t.sigil {
		case sigilSection, sigilInverted:
			return "", fmt.Errorf("%w: unclosed section {{%c%s}}", ErrMalformedTemplate, t.sigil, t.name)
		case sigilClose:
			return "", fmt.Errorf("%w: unexpected {{/%s}}", ErrMalformedTemplate, t.name)
		}

		if t.name == "" {
			// "{{}}" is not a tag; leave it alone.
			out.WriteString(s[t.start:t.end])
		} else {
			out.WriteString(stringify(ctx[t.name]))
		}
		i = t.end
	}
}
