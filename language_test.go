package runblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		className string
		want      string
	}{
		{"language-jsx", "jsx"},
		{"language-javascript", "javascript"},
		{"hljs language-python extra", "python"},
		{"language-", ""},
		{"", ""},
		{"plain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.className, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.className))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tag       string
		script    bool
		component bool
		template  string
		label     string
	}{
		{"js", true, false, TemplateVanilla, "js"},
		{"javascript", true, false, TemplateVanilla, "javascript"},
		{"jsx", true, true, TemplateReact, "jsx"},
		{"tsx", false, true, TemplateReact, "tsx"},
		{"react", false, true, TemplateReact, "react"},
		{"python", false, false, "", "python"},
		{"ts", false, false, "", "ts"},
		{"", false, false, "", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			lang := Classify(tt.tag)
			assert.Equal(t, tt.script, lang.Script, "Script")
			assert.Equal(t, tt.component, lang.Component, "Component")
			assert.Equal(t, tt.script || tt.component, lang.Runnable(), "Runnable")
			assert.Equal(t, tt.template, lang.Template(), "Template")
			assert.Equal(t, tt.label, lang.Label(), "Label")
		})
	}
}

func TestClassifyClass(t *testing.T) {
	assert.True(t, ClassifyClass("language-react").Runnable())
	assert.False(t, ClassifyClass("language-go").Runnable())
	assert.False(t, ClassifyClass("").Runnable())
}
