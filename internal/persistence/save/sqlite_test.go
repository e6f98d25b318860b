package save

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	got, err := s.Get("missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Fatalf("missing session returned %d bytes", len(got))
	}

	blob := []byte("first")
	s.Put("shop_1", blob)
	waitFor(t, func() bool {
		b, err := s.Get("shop_1")
		return err == nil && bytes.Equal(b, blob)
	})

	blob2 := []byte("second")
	s.Put("shop_1", blob2)
	waitFor(t, func() bool {
		b, err := s.Get("shop_1")
		return err == nil && bytes.Equal(b, blob2)
	})
}

func TestStore_PutAfterCloseIsDropped(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Must not panic on a closed store.
	s.Put("shop_1", []byte("late"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}
