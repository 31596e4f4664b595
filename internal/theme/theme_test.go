package theme

import (
	"testing"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/kv"
)

func TestDefaultsToLight(t *testing.T) {
	p := New(kv.NewMemory())
	got, err := p.Get()
	if err != nil || got != Light {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestSetAndToggle(t *testing.T) {
	store := kv.NewMemory()
	p := New(store)
	if err := p.Set(Dark); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := store.Get(Key); v != Dark {
		t.Errorf("stored = %q", v)
	}
	next, err := p.Toggle()
	if err != nil || next != Light {
		t.Errorf("Toggle = %q, %v", next, err)
	}
	next, _ = p.Toggle()
	if next != Dark {
		t.Errorf("second Toggle = %q", next)
	}
}

func TestRejectsUnknownTheme(t *testing.T) {
	p := New(kv.NewMemory())
	err := p.Set("sepia")
	if !apperr.IsValidation(err) {
		t.Errorf("Set(sepia) = %v, want validation error", err)
	}
}

func TestGarbageStoredValueReadsLight(t *testing.T) {
	store := kv.NewMemory()
	_ = store.Set(Key, "purple")
	if got, _ := New(store).Get(); got != Light {
		t.Errorf("Get = %q", got)
	}
}
