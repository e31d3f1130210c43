package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Type selects which rewrite instruction is sent to the model.
type Type string

const (
	FixWriting  Type = "fix_writing"
	MakeLonger  Type = "make_longer"
	MakeShorter Type = "make_shorter"
	ImproveSEO  Type = "improve_seo"
)

const keywordPlaceholder = "{keyword}"

// ErrUnknownType is returned for any tag outside the catalog.
var ErrUnknownType = errors.New("unknown prompt type")

// SystemPrompt is the default system turn sent ahead of every request.
const SystemPrompt = "You're a product description AI tool. Your only task is to help merchants improve their product descriptions. " +
	"You're immaculate at spelling and grammar, and you know how to optimize for SEO and conversion. " +
	"You always obey the prompt exactly. You exclusively return the optimized product description, and introduce no contextual information. " +
	"Your descriptions are between 120 and 160 characters long, unless asked to make shorter or longer."

type entry struct {
	label    string
	template string
}

var catalog = map[Type]entry{
	FixWriting: {
		label:    "Fix writing",
		template: "Fix spelling and grammar. Don't introduce new ideas, just fix the writing.",
	},
	MakeLonger: {
		label:    "Make longer",
		template: "Make the text longer, without losing the original meaning. Get creative.",
	},
	MakeShorter: {
		label:    "Make shorter",
		template: "Make as short as possible, without losing the original meaning. Don't introduce any new ideas or words, but fix grammar and spelling.",
	},
	ImproveSEO: {
		label: "Optimize for SEO",
		template: "Paraphrase this product description using SEO best practices. Use active voice and short sentences to make the content more readable " +
			"for potential shoppers in the context of the focus keyword: '{keyword}'. Text length may exceed 160 characters. " +
			"The text should be unique and not copied from other sources. The focus keyword should be used 2-3 times in your output.",
	},
}

var order = []Type{FixWriting, MakeLonger, MakeShorter, ImproveSEO}

// Types returns every known type in display order.
func Types() []Type {
	out := make([]Type, len(order))
	copy(out, order)
	return out
}

// Parse converts a caller-supplied tag into a Type.
func Parse(s string) (Type, error) {
	t := Type(s)
	if _, ok := catalog[t]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownType, s)
	}
	return t, nil
}

// Lookup returns the raw instruction template for t.
func Lookup(t Type) (string, error) {
	e, ok := catalog[t]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return e.template, nil
}

// Render returns the instruction for t. The keyword is substituted only for
// ImproveSEO; other templates carry no placeholder and ignore it.
func Render(t Type, keyword string) (string, error) {
	tmpl, err := Lookup(t)
	if err != nil {
		return "", err
	}
	if t != ImproveSEO {
		return tmpl, nil
	}
	return strings.ReplaceAll(tmpl, keywordPlaceholder, keyword), nil
}

// Label is the button text for t.
func (t Type) Label() string {
	if e, ok := catalog[t]; ok {
		return e.label
	}
	return string(t)
}

// Tooltip is shown next to the SEO action so the merchant knows which
// keyword will be used. Empty for every other type.
func (t Type) Tooltip(keyword string) string {
	if t != ImproveSEO {
		return ""
	}
	return "Keyword: " + keyword
}

func (t Type) String() string { return string(t) }
