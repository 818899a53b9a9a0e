package directory

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "data", "conversations.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestCreateAssignsThreadID(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	s, err := d.Create(ctx, "Qual a capital do Brasil?")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if s.ThreadID != fmt.Sprintf("t%d", s.ID) {
		t.Errorf("ThreadID = %q, want t%d", s.ThreadID, s.ID)
	}

	s2, err := d.Create(ctx, "Cotação do dólar")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if s2.ID == s.ID || s2.ThreadID == s.ThreadID {
		t.Errorf("sessions must be distinct: %+v vs %+v", s, s2)
	}
}

func TestGet(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	s, _ := d.Create(ctx, "oi")

	got, ok, err := d.Get(ctx, s.ID)
	if err != nil || !ok {
		t.Fatalf("Get() = ok=%v err=%v", ok, err)
	}
	if got.ThreadID != s.ThreadID || got.FirstMessage != "oi" {
		t.Errorf("got %+v", got)
	}

	_, ok, err = d.Get(ctx, 9999)
	if err != nil {
		t.Fatalf("Get(missing) error: %v", err)
	}
	if ok {
		t.Error("Get(missing) ok = true")
	}
}

func TestListOrdering(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	older, _ := d.Create(ctx, "primeira conversa")
	time.Sleep(2 * time.Millisecond)
	newer, _ := d.Create(ctx, "segunda conversa")

	entries, err := d.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != newer.ID || entries[1].ID != older.ID {
		t.Errorf("order = [%d, %d], want newest first", entries[0].ID, entries[1].ID)
	}

	// touching the older session moves it to the front
	time.Sleep(2 * time.Millisecond)
	if err := d.Touch(ctx, older.ID); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}
	entries, _ = d.List(ctx)
	if entries[0].ID != older.ID {
		t.Errorf("touched session not first: %+v", entries)
	}
}

func TestTimeLayoutSortsChronologically(t *testing.T) {
	// List orders rows by string comparison, so the stored layout must keep
	// whole seconds and fractional seconds in chronological string order.
	// RFC 3339 Nano trims trailing zeros, which breaks this pair.
	whole := time.Date(2026, 8, 29, 12, 0, 1, 0, time.UTC)
	later := whole.Add(500 * time.Millisecond)
	earlier := whole.Add(-500 * time.Millisecond)

	if whole.Format(timeLayout) >= later.Format(timeLayout) {
		t.Errorf("%q does not sort before %q", whole.Format(timeLayout), later.Format(timeLayout))
	}
	if earlier.Format(timeLayout) >= whole.Format(timeLayout) {
		t.Errorf("%q does not sort before %q", earlier.Format(timeLayout), whole.Format(timeLayout))
	}

	// stored values must still round-trip through the lenient parser
	if _, err := time.Parse(time.RFC3339Nano, whole.Format(timeLayout)); err != nil {
		t.Errorf("stored timestamp not parseable: %v", err)
	}
}

func TestListFormatting(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	long := strings.Repeat("a", 60)
	d.Create(ctx, long)

	entries, err := d.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	got := entries[0].FirstMessage
	if got != strings.Repeat("a", 47)+"..." {
		t.Errorf("FirstMessage = %q, want 47 chars plus ellipsis", got)
	}
	if _, err := time.Parse("02-01-2006", entries[0].UpdatedAt); err != nil {
		t.Errorf("UpdatedAt = %q, want dd-mm-yyyy", entries[0].UpdatedAt)
	}
}

func TestTruncateMultibyte(t *testing.T) {
	// 60 two-byte runes must cut at rune boundaries
	long := strings.Repeat("é", 60)
	got := truncate(long, 50)
	if got != strings.Repeat("é", 47)+"..." {
		t.Errorf("truncate = %q", got)
	}

	if got := truncate("curta", 50); got != "curta" {
		t.Errorf("truncate(short) = %q", got)
	}
}

func TestDelete(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	s, _ := d.Create(ctx, "oi")

	deleted, err := d.Delete(ctx, s.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v", deleted, err)
	}
	if _, ok, _ := d.Get(ctx, s.ID); ok {
		t.Error("session still present after Delete")
	}

	deleted, err = d.Delete(ctx, s.ID)
	if err != nil {
		t.Fatalf("Delete(missing) error: %v", err)
	}
	if deleted {
		t.Error("Delete(missing) reported true")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.db")

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	s, _ := d.Create(context.Background(), "oi")
	d.Close()

	// reopening must keep existing rows and schema
	d2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer d2.Close()

	if _, ok, _ := d2.Get(context.Background(), s.ID); !ok {
		t.Error("session lost across reopen")
	}
}
