package attach

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/models"
)

func names(t *Tracker) []string {
	var out []string
	for _, f := range t.Files() {
		out = append(out, f.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddPreservesOrder(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a"}, models.FileRef{Name: "b"})
	tr.Add(models.FileRef{Name: "c"})
	if got := names(tr); !equal(got, []string{"a", "b", "c"}) {
		t.Errorf("files = %v", got)
	}
}

func TestRemoveAt(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a"}, models.FileRef{Name: "b"}, models.FileRef{Name: "c"})
	if err := tr.RemoveAt(1); err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if got := names(tr); !equal(got, []string{"a", "c"}) {
		t.Errorf("files = %v", got)
	}
}

func TestRemoveAtOutOfRangeIsNoop(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a"}, models.FileRef{Name: "b"})

	for _, i := range []int{-1, 2, 100} {
		err := tr.RemoveAt(i)
		var oor *apperr.OutOfRangeError
		if !errors.As(err, &oor) {
			t.Errorf("RemoveAt(%d) = %v, want OutOfRangeError", i, err)
		}
	}
	if got := names(tr); !equal(got, []string{"a", "b"}) {
		t.Errorf("files changed: %v", got)
	}
}

func TestRemoveAtDoesNotAliasSnapshots(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a"}, models.FileRef{Name: "b"}, models.FileRef{Name: "c"})
	snap := tr.Files()
	_ = tr.RemoveAt(0)
	if snap[0].Name != "a" || snap[1].Name != "b" {
		t.Errorf("snapshot mutated: %+v", snap)
	}
}

func TestClear(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a"})
	tr.Clear()
	if tr.Len() != 0 {
		t.Errorf("Len after Clear = %d", tr.Len())
	}
	if d := tr.Descriptors(); d == nil || len(d) != 0 {
		t.Errorf("Descriptors after Clear = %#v, want empty non-nil", d)
	}
}

func TestDescriptorsDropData(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a.png", Size: 2048, Type: "image/png", Data: []byte{1, 2, 3}})
	d := tr.Descriptors()
	want := models.Attachment{Name: "a.png", Size: 2048, Type: "image/png"}
	if len(d) != 1 || d[0] != want {
		t.Errorf("Descriptors = %+v", d)
	}
}

func TestConcurrentAdds(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(models.FileRef{Name: "f"})
		}()
	}
	wg.Wait()
	if tr.Len() != 50 {
		t.Errorf("Len = %d, want 50", tr.Len())
	}
}

func TestCommitClearsOnSuccess(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a", Size: 3, Type: "text/plain", Data: []byte("abc")})

	var got []models.Attachment
	err := tr.Commit(func(files []models.Attachment) error {
		got = files
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := models.Attachment{Name: "a", Size: 3, Type: "text/plain"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("committed = %+v", got)
	}
	if tr.Len() != 0 {
		t.Errorf("len after commit = %d", tr.Len())
	}
}

func TestCommitKeepsFilesOnError(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a"})
	boom := errors.New("boom")

	if err := tr.Commit(func([]models.Attachment) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if got := names(tr); !equal(got, []string{"a"}) {
		t.Errorf("files = %v", got)
	}
}

func TestCommitKeepsFilesStagedMeanwhile(t *testing.T) {
	tr := NewTracker()
	tr.Add(models.FileRef{Name: "a"})

	entered := make(chan struct{})
	added := make(chan struct{})
	go func() {
		<-entered
		tr.Add(models.FileRef{Name: "late"})
		close(added)
	}()

	err := tr.Commit(func(files []models.Attachment) error {
		close(entered)
		select {
		case <-added:
			t.Error("Add completed while commit was running")
		case <-time.After(20 * time.Millisecond):
		}
		if len(files) != 1 || files[0].Name != "a" {
			t.Errorf("committed = %+v", files)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	<-added

	if got := names(tr); !equal(got, []string{"late"}) {
		t.Errorf("files after commit = %v, want [late]", got)
	}
}
