package runblock

// PreviewTheme is the visual theme of the live-preview widget.
const PreviewTheme = "nightOwl"

// PreviewOptions is the static option bundle passed to the preview widget.
type PreviewOptions struct {
	ShowNavigator         bool `json:"showNavigator"`
	ShowTabs              bool `json:"showTabs"`
	ShowLineNumbers       bool `json:"showLineNumbers"`
	ShowInlineErrors      bool `json:"showInlineErrors"`
	ClosableTabs          bool `json:"closableTabs"`
	WrapContent           bool `json:"wrapContent"`
	EditorHeight          int  `json:"editorHeight"`
	EditorWidthPercentage int  `json:"editorWidthPercentage"`
}

// DefaultPreviewOptions returns the option bundle used for every preview.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		ShowNavigator:         true,
		ShowTabs:              true,
		ShowLineNumbers:       true,
		ShowInlineErrors:      true,
		ClosableTabs:          false,
		WrapContent:           true,
		EditorHeight:          400,
		EditorWidthPercentage: 60,
	}
}

// Preview is a live-preview request: a virtual project plus fixed
// presentation settings.
type Preview struct {
	Template string         `json:"template"`
	Theme    string         `json:"theme"`
	Files    Files          `json:"files"`
	Options  PreviewOptions `json:"options"`
}

// NewPreview builds the preview request for a snippet, or nil when the
// language cannot run in the sandbox.
func NewPreview(code string, lang Language) *Preview {
	files := ResolveFiles(code, lang)
	if files == nil {
		return nil
	}
	return newPreview(files, lang)
}

func newPreview(files Files, lang Language) *Preview {
	return &Preview{
		Template: lang.Template(),
		Theme:    PreviewTheme,
		Files:    files,
		Options:  DefaultPreviewOptions(),
	}
}
