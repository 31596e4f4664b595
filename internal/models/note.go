// Package models defines the domain types for blognotes.
package models

// Note is one saved note. It is built once and never mutated afterwards.
type Note struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"` // HTML fragment from the editor, stored verbatim
	Files     []Attachment `json:"files"`
	Timestamp string       `json:"timestamp"`
}

// Attachment is the persisted metadata of a file picked for a note.
// File contents are never stored.
type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// FileRef is a file selected in the picker but not yet committed to a note.
// Data may be nil when only the descriptor is known.
type FileRef struct {
	Name string
	Size int64
	Type string
	Data []byte
}

// Descriptor projects the file reference to its persisted shape.
func (f FileRef) Descriptor() Attachment {
	return Attachment{Name: f.Name, Size: f.Size, Type: f.Type}
}

// Collection is the ordered set of notes, newest first.
type Collection []Note

// Find returns the note with the given id.
func (c Collection) Find(id int64) (Note, bool) {
	for _, n := range c {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

// Without returns a copy of c with every note matching id removed.
// Relative order of the remaining notes is preserved.
func (c Collection) Without(id int64) Collection {
	out := make(Collection, 0, len(c))
	for _, n := range c {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
