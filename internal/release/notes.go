package release

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/flarebyte/vmrelease/internal/notes"
)

// NotesData is what a notes template or script sees.
type NotesData struct {
	Product      string
	Version      string
	Revision     string
	Archives     []string
	Repositories []string
}

const defaultNotes = `{{.Product}} {{.Version}}

Built from revision {{.Revision}}.
{{if .Archives}}
Binary archives:
{{range .Archives}}- {{.}}
{{end}}{{end}}
Published to:
{{range .Repositories}}- {{.}}
{{else}}- (no external repositories)
{{end}}`

var notesTemplate = template.Must(template.New("notes").Parse(defaultNotes))

// RenderNotes produces the release-notes text. An empty script selects the
// built-in template.
func RenderNotes(ctx context.Context, data NotesData, script string, sb notes.Sandbox) (string, error) {
	if script == "" {
		var buf bytes.Buffer
		if err := notesTemplate.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("render notes: %w", err)
		}
		return buf.String(), nil
	}
	return sb.Render(ctx, script, map[string]any{
		"product":      data.Product,
		"version":      data.Version,
		"revision":     data.Revision,
		"archives":     data.Archives,
		"repositories": data.Repositories,
	})
}

// WriteNotes renders and writes the notes to path.
func WriteNotes(ctx context.Context, path string, data NotesData, script string, sb notes.Sandbox) error {
	text, err := RenderNotes(ctx, data, script, sb)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
