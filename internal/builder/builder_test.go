package builder

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/models"
)

func fixedClock(ts time.Time) Clock {
	return func() time.Time { return ts }
}

func TestBuildValid(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	b := New(WithClock(fixedClock(ts)), WithLocation(time.UTC))

	n, err := b.Build("  Trip  ", "<p>Hello</p>", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n.Title != "Trip" {
		t.Errorf("title = %q, want trimmed", n.Title)
	}
	if n.Content != "<p>Hello</p>" {
		t.Errorf("content = %q", n.Content)
	}
	if n.Files == nil || len(n.Files) != 0 {
		t.Errorf("files = %#v, want empty non-nil", n.Files)
	}
	if n.ID != ts.UnixMilli() {
		t.Errorf("id = %d, want %d", n.ID, ts.UnixMilli())
	}
	if n.Timestamp != "1/2/2026, 3:04:05 PM" {
		t.Errorf("timestamp = %q", n.Timestamp)
	}
}

func TestBuildCustomLayout(t *testing.T) {
	ts := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	b := New(WithClock(fixedClock(ts)), WithLocation(time.UTC), WithLayout(time.RFC3339))
	n, err := b.Build("t", "<p>c</p>", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n.Timestamp != "2026-10-19T08:30:00Z" {
		t.Errorf("timestamp = %q", n.Timestamp)
	}
}

func TestBuildCopiesAttachments(t *testing.T) {
	b := New()
	files := []models.Attachment{{Name: "a.png", Size: 2048, Type: "image/png"}}
	n, err := b.Build("t", "<p>c</p>", files)
	if err != nil {
		t.Fatal(err)
	}
	files[0].Name = "mutated"
	if n.Files[0].Name != "a.png" {
		t.Error("note shares the caller's attachment slice")
	}
}

func TestBuildRejects(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		content string
		field   string
	}{
		{"empty title", "", "<p>x</p>", "title"},
		{"blank title", "   ", "<p>x</p>", "title"},
		{"empty content", "t", "", "content"},
		{"whitespace content", "t", " \n\t ", "content"},
		{"line break", "t", "<br>", "content"},
		{"wrapped line break", "t", "<div><br></div>", "content"},
		{"self-closing break", "t", "<br />", "content"},
		{"both empty", "", "", "title"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New().Build(tc.title, tc.content, nil)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestIDsStrictlyIncreasing(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(WithClock(fixedClock(ts)))

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := b.Build("t", "<p>c</p>", nil)
		if err != nil {
			t.Fatal(err)
		}
		if n.ID <= prev {
			t.Fatalf("id %d not greater than %d", n.ID, prev)
		}
		prev = n.ID
	}
}

func TestIDsSurviveClockGoingBackwards(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC),
	}
	i := 0
	b := New(WithClock(func() time.Time { t := times[i]; i++; return t }))
	first, _ := b.Build("a", "<p>a</p>", nil)
	second, _ := b.Build("b", "<p>b</p>", nil)
	if second.ID <= first.ID {
		t.Errorf("ids %d then %d", first.ID, second.ID)
	}
}

func TestIsEmptyContent(t *testing.T) {
	empty := []string{"", "  ", "<br>", "<BR>", "<div><br></div>", " <div><br/></div>\n"}
	for _, s := range empty {
		if !IsEmptyContent(s) {
			t.Errorf("IsEmptyContent(%q) = false", s)
		}
	}
	full := []string{"<p>x</p>", "x", "<div><br></div><div>x</div>", "<br><br>"}
	for _, s := range full {
		if IsEmptyContent(s) {
			t.Errorf("IsEmptyContent(%q) = true", s)
		}
	}
}
