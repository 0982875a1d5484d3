package runblock

import "regexp"

var languageClassRe = regexp.MustCompile(`language-(\w+)`)

// Sandbox templates understood by the preview widget.
const (
	TemplateReact   = "react"
	TemplateVanilla = "vanilla"
)

// Language is the classification of a code block's language tag.
type Language struct {
	Tag       string // bare tag, e.g. "jsx"; empty when absent
	Script    bool   // js, jsx, javascript
	Component bool   // jsx, tsx, react
}

// ParseLanguage returns the tag embedded in a class name such as
// "language-jsx", or "" when there is none.
func ParseLanguage(className string) string {
	m := languageClassRe.FindStringSubmatch(className)
	if m == nil {
		return ""
	}
	return m[1]
}

// Classify derives the script/component flags for a bare language tag.
func Classify(tag string) Language {
	lang := Language{Tag: tag}
	switch tag {
	case "js", "javascript":
		lang.Script = true
	case "jsx":
		lang.Script = true
		lang.Component = true
	case "tsx", "react":
		lang.Component = true
	}
	return lang
}

// ClassifyClass is Classify(ParseLanguage(className)).
func ClassifyClass(className string) Language {
	return Classify(ParseLanguage(className))
}

// Runnable reports whether the block is eligible for live preview.
func (l Language) Runnable() bool {
	return l.Script || l.Component
}

// Label is the header text shown above the block.
func (l Language) Label() string {
	if l.Tag == "" {
		return "text"
	}
	return l.Tag
}

// Template returns the sandbox template for the language, or "" when the
// block is not runnable. Component languages win over plain scripts.
func (l Language) Template() string {
	switch {
	case l.Component:
		return TemplateReact
	case l.Script:
		return TemplateVanilla
	default:
		return ""
	}
}
