// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	_ "embed"
	"os/exec"
	"path/filepath"
	"text/template"
)

// Top is the number of paths offered to fzf.
const Top = 200

// ZshFzf contains the zsh shell integration script with fzf support.
//
//go:embed zsh-fzf.sh
var ZshFzf string

// Render renders the integration script with the local zsh path.
func Render() (string, error) {
	// First use LookPath to find zsh binary
	zsh, err := exec.LookPath("zsh")
	if err != nil {
		return "", err
	}

	return render(filepath.ToSlash(zsh))
}

// render substitutes the template values.
func render(zsh string) (string, error) {
	tmpl, err := template.New("zsh-fzf").Parse(ZshFzf)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"ZSH": zsh,
		"Top": Top,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
