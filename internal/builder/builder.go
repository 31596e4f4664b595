// Package builder validates editor input and assembles new notes.
package builder

import (
	"errors"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/models"
)

// DefaultTimestampLayout matches the en-US rendering of Date.toLocaleString.
const DefaultTimestampLayout = "1/2/2006, 3:04:05 PM"

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Builder.
type Option func(*Builder)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(b *Builder) { b.now = c }
}

// WithLayout sets the time layout used for the display timestamp.
func WithLayout(layout string) Option {
	return func(b *Builder) {
		if layout != "" {
			b.layout = layout
		}
	}
}

// WithLocation sets the zone the display timestamp is rendered in.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// Builder turns validated input into Notes. Ids come from the clock in
// milliseconds and are bumped past the previous id when the clock has not moved,
// so ids handed out by one Builder are strictly increasing.
type Builder struct {
	now    Clock
	layout string
	loc    *time.Location

	mu   sync.Mutex
	last int64
}

// New returns a Builder using the local clock and DefaultTimestampLayout.
func New(opts ...Option) *Builder {
	b := &Builder{
		now:    time.Now,
		layout: DefaultTimestampLayout,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type input struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Build validates title and contentHTML and returns a new Note.
// Validation failures are reported as *apperr.ValidationError.
func (b *Builder) Build(title, contentHTML string, attachments []models.Attachment) (models.Note, error) {
	in := input{Title: strings.TrimSpace(title), Content: contentHTML}
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Content, validation.Required, validation.By(nonEmptyContent)),
	); err != nil {
		return models.Note{}, toValidationError(err)
	}

	now := b.now()
	files := make([]models.Attachment, len(attachments))
	copy(files, attachments)

	return models.Note{
		ID:        b.nextID(now),
		Title:     in.Title,
		Content:   in.Content,
		Files:     files,
		Timestamp: now.In(b.loc).Format(b.layout),
	}, nil
}

func (b *Builder) nextID(now time.Time) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := now.UnixMilli()
	if id <= b.last {
		id = b.last + 1
	}
	b.last = id
	return id
}

func nonEmptyContent(value interface{}) error {
	s, _ := value.(string)
	if IsEmptyContent(s) {
		return errors.New("cannot be blank")
	}
	return nil
}

// IsEmptyContent reports whether an editor fragment carries no content: the empty
// or whitespace-only string, a lone line break, or a div wrapping only a line break.
func IsEmptyContent(html string) bool {
	s := strings.ToLower(strings.TrimSpace(html))
	if s == "" {
		return true
	}
	for _, br := range []string{"<br>", "<br/>", "<br />"} {
		if s == br || s == "<div>"+br+"</div>" {
			return true
		}
	}
	return false
}

// toValidationError picks the first failing field in form order.
func toValidationError(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	for _, field := range []string{"title", "content"} {
		if fe, ok := errs[field]; ok {
			return &apperr.ValidationError{Field: field, Reason: fe.Error()}
		}
	}
	return &apperr.ValidationError{Field: "note", Reason: err.Error()}
}
