package runblock

import (
	"regexp"
	"strings"
)

// Entry files of the two sandbox templates.
const (
	AppFile       = "/App.js"
	IndexFile     = "/index.js"
	IndexHTMLFile = "/index.html"
)

const reactBootstrap = `import React from 'react';
import ReactDOM from 'react-dom';
import App from './App';

ReactDOM.render(<App />, document.getElementById('root'));`

const vanillaShell = `<!DOCTYPE html>
<html>
  <head>
    <title>JavaScript Example</title>
    <meta charset="UTF-8" />
  </head>
  <body>
    <div id="app"></div>
    <script src="index.js"></script>
  </body>
</html>`

const (
	cssPlaceholder = "/* CSS styles */"
	moduleStub     = "// This file was referenced in your code\n// Add your implementation here"
)

var (
	cssImportRe = regexp.MustCompile(`import\s+['"]([^'"\n]+\.css)['"]`)
	// import x from './a.js' | import './a.js' | require('./a.js')
	jsImportRe = regexp.MustCompile(`(?:import\s+(?:[^'"\n]*?\bfrom\s+)?|require\s*\(\s*)['"](\.{0,2}/[^'"\n]+\.js)['"]`)
)

// ResolveFiles returns the virtual project for a snippet: the extracted
// files when the snippet has markers, otherwise a synthesized default
// project. It returns nil for languages that cannot run in the sandbox.
func ResolveFiles(code string, lang Language) Files {
	if !lang.Runnable() {
		return nil
	}
	if files := ExtractFiles(code); len(files) > 0 {
		return files
	}
	return DefaultFiles(code, lang)
}

// DefaultFiles fabricates a minimal runnable project around a snippet that
// has no file markers.
func DefaultFiles(code string, lang Language) Files {
	if lang.Component {
		return defaultComponentFiles(code)
	}
	return defaultScriptFiles(code)
}

func defaultComponentFiles(code string) Files {
	files := Files{
		AppFile:   {Code: wrapComponent(code)},
		IndexFile: {Code: reactBootstrap, Hidden: true},
	}

	for _, m := range cssImportRe.FindAllStringSubmatch(code, -1) {
		p := filePath(m[1])
		if _, ok := files[p]; !ok {
			files[p] = File{Code: cssPlaceholder}
		}
	}
	return files
}

// wrapComponent leaves modules that export or mount themselves alone and
// otherwise adds the React import and a default export of App.
func wrapComponent(code string) string {
	if mountsItself(code) {
		return code
	}
	return "import React from 'react';\n\n" + code + "\n\nexport default App;"
}

func mountsItself(code string) bool {
	return strings.Contains(code, "export default") ||
		strings.Contains(code, "ReactDOM.render") ||
		strings.Contains(code, "createRoot(")
}

func defaultScriptFiles(code string) Files {
	files := Files{
		IndexFile:     {Code: code},
		IndexHTMLFile: {Code: vanillaShell, Hidden: true},
	}

	if !strings.Contains(code, "import") && !strings.Contains(code, "require") {
		return files
	}
	for _, m := range jsImportRe.FindAllStringSubmatch(code, -1) {
		p := filePath(m[1])
		if _, ok := files[p]; !ok {
			files[p] = File{Code: moduleStub}
		}
	}
	return files
}
