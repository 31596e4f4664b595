// Package render turns a note collection into display markup.
package render

import (
	"bytes"
	"fmt"
	"math"
	"text/template"

	"github.com/starford/blognotes/internal/escape"
	"github.com/starford/blognotes/internal/models"
)

// Placeholder is the markup produced for an empty collection.
const Placeholder = `<p class="notes-empty">No notes yet. Create your first note above!</p>`

// Plain-text fields go through escape exactly once; content is emitted as stored.
const notesTemplate = `{{- range . }}
<article class="note" data-note-id="{{ .ID }}">
  <header class="note-header">
    <h3 class="note-title">{{ escape .Title }}</h3>
    <div class="note-meta">
      <span class="note-timestamp">{{ escape .Timestamp }}</span>
      <button type="button" class="note-delete" data-delete-id="{{ .ID }}" aria-label="Delete note">&#128465;&#65039;</button>
    </div>
  </header>
  <div class="note-content prose">{{ .Content }}</div>
{{- if .Files }}
  <section class="note-attachments">
    <h4>Attachments:</h4>
{{- range .Files }}
    <div class="note-attachment"><span>&#128206;</span><span class="attachment-name">{{ escape .Name }}</span><span class="attachment-size">({{ kib .Size }})</span></div>
{{- end }}
  </section>
{{- end }}
</article>
{{- end }}
`

// Renderer renders collections with a fixed template. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// New parses the notes template.
func New() *Renderer {
	t := template.Must(template.New("notes").Funcs(template.FuncMap{
		"escape": escape.String,
		"kib":    KiB,
	}).Parse(notesTemplate))
	return &Renderer{tmpl: t}
}

// Render returns the markup for c in collection order. The output depends only
// on c, so equal collections render to identical bytes.
func (r *Renderer) Render(c models.Collection) (string, error) {
	if len(c) == 0 {
		return Placeholder, nil
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}

// KiB formats a byte count in kibibytes with one decimal, e.g. 2048 -> "2.0KB".
// Halves round up, so 256 bytes is "0.3KB" as in the page script.
func KiB(size int64) string {
	tenths := math.Floor(float64(size)*10/1024 + 0.5)
	return fmt.Sprintf("%.1fKB", tenths/10)
}
