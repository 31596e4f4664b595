package render

import (
	"strings"
	"testing"

	"github.com/starford/blognotes/internal/models"
)

func TestRenderEmptyIsPlaceholder(t *testing.T) {
	r := New()
	for _, c := range []models.Collection{nil, {}} {
		got, err := r.Render(c)
		if err != nil {
			t.Fatal(err)
		}
		if got != Placeholder {
			t.Errorf("Render(%#v) = %q", c, got)
		}
	}
}

func TestRenderSingleNote(t *testing.T) {
	r := New()
	got, err := r.Render(models.Collection{{
		ID:        1700000000000,
		Title:     "Trip",
		Content:   "<p>Hello</p>",
		Files:     []models.Attachment{},
		Timestamp: "1/2/2026, 3:04:05 PM",
	}})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<h3 class="note-title">Trip</h3>`,
		`<div class="note-content prose"><p>Hello</p></div>`,
		`1/2/2026, 3:04:05 PM`,
		`data-delete-id="1700000000000"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Attachments:") {
		t.Error("attachments section rendered for note without files")
	}
}

func TestRenderEscapesPlainTextOnly(t *testing.T) {
	r := New()
	got, _ := r.Render(models.Collection{{
		ID:      1,
		Title:   `<script>alert('x')</script>`,
		Content: `<b>bold</b>`,
		Files:   []models.Attachment{{Name: `"><img src=x>`, Size: 10, Type: "text/plain"}},
	}})
	if strings.Contains(got, "<script>") {
		t.Error("title was not escaped")
	}
	if !strings.Contains(got, "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;") {
		t.Errorf("escaped title missing:\n%s", got)
	}
	if !strings.Contains(got, "<b>bold</b>") {
		t.Error("content should be emitted unescaped")
	}
	if strings.Contains(got, `"><img`) {
		t.Error("attachment name was not escaped")
	}
}

func TestRenderAttachments(t *testing.T) {
	r := New()
	got, _ := r.Render(models.Collection{{
		ID:      1,
		Title:   "t",
		Content: "<p>c</p>",
		Files: []models.Attachment{
			{Name: "a.png", Size: 2048, Type: "image/png"},
			{Name: "b.txt", Size: 1500, Type: "text/plain"},
		},
	}})
	if !strings.Contains(got, "Attachments:") {
		t.Fatalf("attachments section missing:\n%s", got)
	}
	if !strings.Contains(got, "(2.0KB)") || !strings.Contains(got, "(1.5KB)") {
		t.Errorf("sizes missing:\n%s", got)
	}
	if strings.Index(got, "a.png") > strings.Index(got, "b.txt") {
		t.Error("attachment order not preserved")
	}
}

func TestRenderKeepsCollectionOrder(t *testing.T) {
	r := New()
	got, _ := r.Render(models.Collection{
		{ID: 1, Title: "older-first", Content: "x"},
		{ID: 2, Title: "newer-second", Content: "y"},
	})
	if strings.Index(got, "older-first") > strings.Index(got, "newer-second") {
		t.Error("renderer re-sorted the collection")
	}
	if strings.Count(got, `<article class="note"`) != 2 {
		t.Errorf("expected two note blocks:\n%s", got)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := New()
	c := models.Collection{
		{ID: 3, Title: "a", Content: "<p>1</p>", Files: []models.Attachment{{Name: "f", Size: 1}}},
		{ID: 2, Title: "b", Content: "<p>2</p>"},
	}
	first, _ := r.Render(c)
	second, _ := New().Render(c)
	if first != second {
		t.Error("render output differs between calls")
	}
}

func TestKiB(t *testing.T) {
	cases := map[int64]string{
		0:       "0.0KB",
		2048:    "2.0KB",
		1536:    "1.5KB",
		100:     "0.1KB",
		1048576: "1024.0KB",
		256:     "0.3KB",
		768:     "0.8KB",
		1280:    "1.3KB",
		2304:    "2.3KB",
		51:      "0.0KB",
		52:      "0.1KB",
	}
	for in, want := range cases {
		if got := KiB(in); got != want {
			t.Errorf("KiB(%d) = %q, want %q", in, got, want)
		}
	}
}
