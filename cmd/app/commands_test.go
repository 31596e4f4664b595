package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/starford/blognotes/internal/models"
)

func TestParseAttachment(t *testing.T) {
	ref, err := parseAttachment("a.png:2048:image/png")
	if err != nil {
		t.Fatal(err)
	}
	want := models.FileRef{Name: "a.png", Size: 2048, Type: "image/png"}
	if ref.Descriptor() != want.Descriptor() {
		t.Errorf("ref = %+v", ref)
	}

	ref, err = parseAttachment("notes.txt:10:")
	if err != nil || ref.Type != "" {
		t.Errorf("empty type: %+v, %v", ref, err)
	}

	for _, bad := range []string{"a.png", "a.png:big:image/png", ":1:x", "a:-1:x"} {
		if _, err := parseAttachment(bad); err == nil {
			t.Errorf("parseAttachment(%q): expected error", bad)
		}
	}
}

func TestNoteContent(t *testing.T) {
	got, err := noteContent("<p>x</p>", "")
	if err != nil || got != "<p>x</p>" {
		t.Errorf("plain = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte("# Title\n\ntext"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = noteContent("", path)
	if err != nil || !strings.Contains(got, "<h1>Title</h1>") {
		t.Errorf("markdown = %q, %v", got, err)
	}

	if _, err := noteContent("<p>x</p>", path); err == nil {
		t.Error("expected error for both sources")
	}
}

func TestPrintNotes(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printNotes(&buf, nil)
	if !strings.Contains(buf.String(), "No notes yet") {
		t.Errorf("empty = %q", buf.String())
	}

	buf.Reset()
	printNotes(&buf, models.Collection{{
		ID: 7, Title: "Trip", Timestamp: "now",
		Files: []models.Attachment{{Name: "a.png", Size: 1536}},
	}})
	got := buf.String()
	for _, want := range []string{"7  Trip  now", "a.png (1.5KB)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestWriteExportIsByteIdentical(t *testing.T) {
	raw := `[{"id":1,"title":"T","content":"<p>c</p>","files":[],"timestamp":"now"}]`

	var buf bytes.Buffer
	if err := writeExport(&buf, "", raw); err != nil {
		t.Fatal(err)
	}
	if buf.String() != raw {
		t.Errorf("stdout export = %q, want %q", buf.String(), raw)
	}

	path := filepath.Join(t.TempDir(), "blog-notes.json")
	if err := writeExport(&buf, path, raw); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != raw {
		t.Errorf("file export = %q, want %q", data, raw)
	}
}
