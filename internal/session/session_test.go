package session

import (
	"testing"
	"time"

	"github.com/starford/blognotes/internal/models"
)

func TestTrackerIsPerSession(t *testing.T) {
	r := NewRegistry(time.Minute)
	a := r.Tracker("a")
	a.Add(models.FileRef{Name: "x"})

	if r.Tracker("a") != a {
		t.Error("same id returned a different tracker")
	}
	if r.Tracker("b").Len() != 0 {
		t.Error("sessions share staged files")
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestEndDropsTracker(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Tracker("a").Add(models.FileRef{Name: "x"})
	r.End("a")
	if r.Tracker("a").Len() != 0 {
		t.Error("tracker survived End")
	}
}

func TestSessionsExpire(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)
	r.Tracker("a").Add(models.FileRef{Name: "x"})
	time.Sleep(60 * time.Millisecond)
	if r.Tracker("a").Len() != 0 {
		t.Error("expired session kept its staged files")
	}
}

func TestNewIDUnique(t *testing.T) {
	if NewID() == NewID() {
		t.Error("ids collide")
	}
}
