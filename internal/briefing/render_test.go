package briefing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Variables(t *testing.T) {
	t.Run("substitutes a present value", func(t *testing.T) {
		out, err := Render("{{X}}", Context{"X": "hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("missing key renders empty", func(t *testing.T) {
		out, err := Render("{{X}}", Context{})
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("nil value renders empty", func(t *testing.T) {
		out, err := Render("a{{X}}b", Context{"X": nil})
		require.NoError(t, err)
		assert.Equal(t, "ab", out)
	})

	t.Run("coerces numbers and booleans", func(t *testing.T) {
		out, err := Render("{{n}} {{f}} {{b}}", Context{"n": 72, "f": 72.5, "b": true})
		require.NoError(t, err)
		assert.Equal(t, "72 72.5 true", out)
	})

	t.Run("literal text around tags survives", func(t *testing.T) {
		out, err := Render("Hello, {{name}}!", Context{"name": "world"})
		require.NoError(t, err)
		assert.Equal(t, "Hello, world!", out)
	})

	t.Run("dangling open delimiter is literal", func(t *testing.T) {
		out, err := Render("a {{ b", Context{})
		require.NoError(t, err)
		assert.Equal(t, "a {{ b", out)
	})
}

func TestRender_ConditionalSections(t *testing.T) {
	t.Run("hides on false", func(t *testing.T) {
		out, err := Render("{{#X}}A{{/X}}", Context{"X": false})
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("shows on true", func(t *testing.T) {
		out, err := Render("{{#X}}A{{/X}}", Context{"X": true})
		require.NoError(t, err)
		assert.Equal(t, "A", out)
	})

	t.Run("hides on absent key", func(t *testing.T) {
		out, err := Render("{{#X}}A{{/X}}", Context{})
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("hides on empty string and zero", func(t *testing.T) {
		out, err := Render("{{#s}}A{{/s}}{{#n}}B{{/n}}", Context{"s": "", "n": 0})
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("truthy body sees the outer context", func(t *testing.T) {
		out, err := Render("{{#show}}{{greeting}}{{/show}}",
			Context{"show": true, "greeting": "hi"})
		require.NoError(t, err)
		assert.Equal(t, "hi", out)
	})
}

func TestRender_InvertedSections(t *testing.T) {
	t.Run("shows on absent key", func(t *testing.T) {
		out, err := Render("{{^X}}A{{/X}}", Context{})
		require.NoError(t, err)
		assert.Equal(t, "A", out)
	})

	t.Run("hides on true", func(t *testing.T) {
		out, err := Render("{{^X}}A{{/X}}", Context{"X": true})
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("shows on empty list", func(t *testing.T) {
		out, err := Render("{{^items}}nothing{{/items}}", Context{"items": []Context{}})
		require.NoError(t, err)
		assert.Equal(t, "nothing", out)
	})

	t.Run("body sees the outer context", func(t *testing.T) {
		out, err := Render("{{^missing}}{{name}}{{/missing}}", Context{"name": "n"})
		require.NoError(t, err)
		assert.Equal(t, "n", out)
	})

	t.Run("paired with a conditional on the same name", func(t *testing.T) {
		template := "{{#ok}}yes{{/ok}}{{^ok}}no{{/ok}}"

		out, err := Render(template, Context{"ok": true})
		require.NoError(t, err)
		assert.Equal(t, "yes", out)

		out, err = Render(template, Context{"ok": false})
		require.NoError(t, err)
		assert.Equal(t, "no", out)
	})
}

func TestRender_Iteration(t *testing.T) {
	t.Run("renders once per element in order", func(t *testing.T) {
		out, err := Render("{{#ITEMS}}[{{NAME}}]{{/ITEMS}}", Context{
			"ITEMS": []Context{{"NAME": "a"}, {"NAME": "b"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "[a][b]", out)
	})

	t.Run("empty sequence renders nothing", func(t *testing.T) {
		out, err := Render("{{#ITEMS}}[{{NAME}}]{{/ITEMS}}", Context{
			"ITEMS": []Context{},
		})
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("item context shadows the outer context entirely", func(t *testing.T) {
		out, err := Render("{{#ITEMS}}{{NAME}}-{{OUTER}};{{/ITEMS}}", Context{
			"NAME":  "outer",
			"OUTER": "visible-outside-only",
			"ITEMS": []Context{{"NAME": "a"}, {"NAME": "b"}},
		})
		require.NoError(t, err)
		// OUTER is not inherited into item scope.
		assert.Equal(t, "a-;b-;", out)
	})

	t.Run("nested iteration", func(t *testing.T) {
		out, err := Render("{{#rows}}<{{#cols}}{{v}}{{/cols}}>{{/rows}}", Context{
			"rows": []Context{
				{"cols": []Context{{"v": "1"}, {"v": "2"}}},
				{"cols": []Context{{"v": "3"}}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "<12><3>", out)
	})

	t.Run("same name at different nesting depths", func(t *testing.T) {
		out, err := Render("{{#x}}a{{#x}}b{{/x}}c{{/x}}", Context{
			"x": []Context{
				{"x": true},
				{"x": false},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "abcac", out)
	})

	t.Run("accepts plain map slices", func(t *testing.T) {
		out, err := Render("{{#ITEMS}}{{NAME}}{{/ITEMS}}", Context{
			"ITEMS": []map[string]any{{"NAME": "a"}, {"NAME": "b"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "ab", out)
	})
}

func TestRender_Nesting(t *testing.T) {
	t.Run("conditional inside iteration resolves per item", func(t *testing.T) {
		out, err := Render("{{#items}}{{#flag}}[{{name}}]{{/flag}}{{/items}}", Context{
			"items": []Context{
				{"name": "a", "flag": true},
				{"name": "b", "flag": false},
				{"name": "c", "flag": true},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "[a][c]", out)
	})

	t.Run("variable inside conditional inside conditional", func(t *testing.T) {
		out, err := Render("{{#a}}{{#b}}{{v}}{{/b}}{{/a}}",
			Context{"a": true, "b": true, "v": "deep"})
		require.NoError(t, err)
		assert.Equal(t, "deep", out)
	})
}

func TestRender_Malformed(t *testing.T) {
	cases := []struct {
		name     string
		template string
	}{
		{"unclosed conditional", "{{#X}}A"},
		{"unclosed inverted", "{{^X}}A"},
		{"stray close tag", "A{{/X}}"},
		{"mismatched close name", "{{#X}}A{{/Y}}"},
		{"close before open", "{{/X}}{{#X}}A{{/X}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Render(tc.template, Context{"X": true})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedTemplate),
				"expected ErrMalformedTemplate, got %v", err)
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	template := "{{date}} {{#items}}{{n}},{{/items}}{{^missing}}end{{/missing}}"
	ctx := Context{
		"date":  "Monday",
		"items": []Context{{"n": 1}, {"n": 2}, {"n": 3}},
	}

	first, err := Render(template, ctx)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		out, err := Render(template, ctx)
		require.NoError(t, err)
		assert.Equal(t, first, out)
	}
	assert.Equal(t, "Monday 1,2,3,end", first)
}

func TestRender_LargeBody(t *testing.T) {
	// The renderer must stay linear-ish on big literal spans.
	big := strings.Repeat("lorem ipsum ", 10000)
	out, err := Render("{{#show}}"+big+"{{/show}}", Context{"show": true})
	require.NoError(t, err)
	assert.Equal(t, big, out)
}
