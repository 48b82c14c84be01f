// Package shell generates the rc-file hook that loads ezswitch-managed
// variables into new bash and zsh sessions.
package shell

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"ezswitch/config/storage"
	"ezswitch/internal/utils"
)

// Block markers. Everything between them belongs to ezswitch.
const (
	BeginMarker = "# >>> ezswitch >>>"
	EndMarker   = "# <<< ezswitch <<<"
)

const hookTemplate = `{{.Begin}}
# Load ANTHROPIC_* variables selected with ezswitch
if command -v {{.Binary}} >/dev/null 2>&1; then
  eval "$(command {{.Binary}} load-env)"
fi
{{.End}}
`

// Generator renders the rc hook
type Generator struct {
	Binary string
}

// NewGenerator returns a generator for the ezswitch binary on PATH
func NewGenerator() *Generator {
	return &Generator{Binary: "ezswitch"}
}

// Generate renders the hook block
func (g *Generator) Generate() (string, error) {
	tmpl, err := template.New("hook").Parse(hookTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Begin, End, Binary string
	}{BeginMarker, EndMarker, utils.ShellQuote(g.Binary)})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// RCFile picks the rc file for the shell named by $SHELL
func RCFile(shellPath, homeDir string) (string, error) {
	switch base := filepath.Base(shellPath); {
	case strings.Contains(base, "zsh"):
		return filepath.Join(homeDir, ".zshrc"), nil
	case strings.Contains(base, "bash"):
		return filepath.Join(homeDir, ".bashrc"), nil
	}
	return "", fmt.Errorf("unsupported shell: %q", shellPath)
}

// HasBlock reports whether content already carries the hook
func HasBlock(content string) bool {
	return strings.Contains(content, BeginMarker) && strings.Contains(content, EndMarker)
}

// RemoveBlock strips every hook block from content. An unterminated block
// runs to the end of the file.
func RemoveBlock(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	inBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == BeginMarker:
			inBlock = true
		case trimmed == EndMarker && inBlock:
			inBlock = false
		case !inBlock:
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

// InstallResult describes what Install did
type InstallResult struct {
	RCFile           string
	AlreadyInstalled bool
	Replaced         bool
}

// Install appends the hook to rcFile. An existing block is left alone
// unless force is set, in which case it is replaced.
func (g *Generator) Install(rcFile string, force bool) (InstallResult, error) {
	result := InstallResult{RCFile: rcFile}

	block, err := g.Generate()
	if err != nil {
		return result, err
	}

	var content string
	if data, err := os.ReadFile(rcFile); err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return result, fmt.Errorf("failed to read %s: %w", rcFile, err)
	}

	if HasBlock(content) {
		if !force {
			result.AlreadyInstalled = true
			return result, nil
		}
		content = RemoveBlock(content)
		result.Replaced = true
	}

	if content = strings.TrimRight(content, "\n"); content != "" {
		content += "\n\n"
	}
	content += block

	if err := storage.AtomicWrite(rcFile, []byte(content), 0600); err != nil {
		return result, fmt.Errorf("failed to update %s: %w", rcFile, err)
	}
	return result, nil
}

// ExportScript renders shell lines that make the current shell match vars.
// Names missing from vars are unset. Names are emitted in the given order.
func ExportScript(names []string, vars map[string]string) string {
	var b strings.Builder
	for _, name := range names {
		if v, ok := vars[name]; ok && v != "" {
			fmt.Fprintf(&b, "export %s=%s\n", name, utils.ShellQuote(v))
		} else {
			fmt.Fprintf(&b, "unset %s\n", name)
		}
	}
	return b.String()
}
