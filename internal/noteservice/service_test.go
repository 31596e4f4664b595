package noteservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/attach"
	"github.com/starford/blognotes/internal/models"
	"github.com/starford/blognotes/internal/noteservice"
	"github.com/starford/blognotes/internal/render"
	"github.com/starford/blognotes/internal/testutil"
)

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := testutil.TestService(t, testutil.TestKV(t))

	n, err := svc.Save(ctx, "Trip", "<p>Hello</p>", nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(c) != 1 {
		t.Fatalf("len = %d, want 1", len(c))
	}
	got := c[0]
	if got.ID != n.ID || got.Title != "Trip" || got.Content != "<p>Hello</p>" || got.Timestamp != n.Timestamp {
		t.Errorf("loaded %+v, built %+v", got, n)
	}
	if len(got.Files) != 0 {
		t.Errorf("files = %+v", got.Files)
	}

	r, err := svc.Render(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.HTML, "Trip") || !strings.Contains(r.HTML, "Hello") {
		t.Errorf("render missing note:\n%s", r.HTML)
	}
	if strings.Contains(r.HTML, "Attachments:") {
		t.Error("unexpected attachments section")
	}
}

func TestSaveUsesAndClearsTracker(t *testing.T) {
	ctx := context.Background()
	svc := testutil.TestService(t, testutil.TestKV(t))
	tr := attach.NewTracker()
	tr.Add(models.FileRef{Name: "a.png", Size: 2048, Type: "image/png", Data: []byte("png")})

	n, err := svc.Save(ctx, "With file", "<p>x</p>", tr)
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Files) != 1 || n.Files[0].Name != "a.png" {
		t.Errorf("files = %+v", n.Files)
	}
	if tr.Len() != 0 {
		t.Error("tracker not cleared after save")
	}
	r, _ := svc.Render(ctx)
	if !strings.Contains(r.HTML, "2.0KB") {
		t.Errorf("render missing size:\n%s", r.HTML)
	}
}

func TestSaveValidationKeepsState(t *testing.T) {
	ctx := context.Background()
	rec := &testutil.Recorder{}
	svc := testutil.TestService(t, testutil.TestKV(t), noteservice.WithPublisher(rec))
	tr := attach.NewTracker()
	tr.Add(models.FileRef{Name: "keep.txt"})

	_, err := svc.Save(ctx, "", "<p>x</p>", tr)
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if tr.Len() != 1 {
		t.Error("tracker cleared on failed save")
	}
	if _, err := svc.Export(ctx); !errors.Is(err, apperr.ErrEmptyStore) {
		t.Errorf("store written on failed save: %v", err)
	}
	if len(rec.Kinds()) != 0 {
		t.Errorf("events published: %v", rec.Kinds())
	}
}

func TestNewestFirstAndDelete(t *testing.T) {
	ctx := context.Background()
	rec := &testutil.Recorder{}
	svc := testutil.TestService(t, testutil.TestKV(t), noteservice.WithPublisher(rec))

	a, _ := svc.Save(ctx, "a", "<p>a</p>", nil)
	b, _ := svc.Save(ctx, "b", "<p>b</p>", nil)
	c, _ := svc.Save(ctx, "c", "<p>c</p>", nil)

	list, _ := svc.List(ctx)
	if list[0].ID != c.ID || list[1].ID != b.ID || list[2].ID != a.ID {
		t.Fatalf("not newest first: %+v", list)
	}

	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ = svc.List(ctx)
	if len(list) != 2 || list[0].ID != c.ID || list[1].ID != a.ID {
		t.Errorf("after delete: %+v", list)
	}

	if err := svc.Delete(ctx, 12345); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete unknown = %v, want ErrNotFound", err)
	}
	list, _ = svc.List(ctx)
	if len(list) != 2 {
		t.Errorf("unknown delete changed collection: %d notes", len(list))
	}

	want := []string{"saved", "saved", "saved", "deleted"}
	got := rec.Kinds()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRenderEmptyAndCached(t *testing.T) {
	ctx := context.Background()
	svc := testutil.TestService(t, testutil.TestKV(t))

	r, err := svc.Render(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if r.HTML != render.Placeholder {
		t.Errorf("empty render = %q", r.HTML)
	}

	_, _ = svc.Save(ctx, "x", "<p>x</p>", nil)
	first, _ := svc.Render(ctx)
	second, _ := svc.Render(ctx)
	if first != second {
		t.Error("render not deterministic")
	}
	if first.ETag == r.ETag {
		t.Error("etag did not change after save")
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := testutil.TestService(t, testutil.TestKV(t))
	_, _ = src.Save(ctx, "one", "<p>1</p>", nil)
	_, _ = src.Save(ctx, "two", "<p>2</p>", nil)
	raw, err := src.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}

	rec := &testutil.Recorder{}
	dst := testutil.TestService(t, testutil.TestKV(t), noteservice.WithPublisher(rec))
	if err := dst.Import(ctx, raw); err != nil {
		t.Fatalf("Import: %v", err)
	}
	again, _ := dst.Export(ctx)
	if again != raw {
		t.Errorf("export after import differs:\n%s\n%s", again, raw)
	}
	if k := rec.Kinds(); len(k) != 1 || k[0] != "imported" {
		t.Errorf("events = %v", k)
	}
}

func TestImportInvalidKeepsCollection(t *testing.T) {
	ctx := context.Background()
	svc := testutil.TestService(t, testutil.TestKV(t))
	_, _ = svc.Save(ctx, "keep", "<p>k</p>", nil)
	before, _ := svc.Export(ctx)

	err := svc.Import(ctx, "{broken")
	if !apperr.IsParse(err) {
		t.Fatalf("err = %v, want parse error", err)
	}
	if !noteservice.IsUserError(err) {
		t.Error("parse error should be a user error")
	}
	after, _ := svc.Export(ctx)
	if before != after {
		t.Error("collection changed after invalid import")
	}
}

func TestFingerprint(t *testing.T) {
	ctx := context.Background()
	svc := testutil.TestService(t, testutil.TestKV(t))
	fp, err := svc.Fingerprint(ctx)
	if err != nil || fp != "" {
		t.Errorf("empty fingerprint = %q, %v", fp, err)
	}
	_, _ = svc.Save(ctx, "x", "<p>x</p>", nil)
	fp, _ = svc.Fingerprint(ctx)
	if len(fp) != 64 {
		t.Errorf("fingerprint = %q", fp)
	}
}
