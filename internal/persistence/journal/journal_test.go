package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"bloombroker.app/internal/sim/shop"
)

func TestActivityJournal_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	j := NewActivityJournal(dir)

	entries := []shop.LogEntry{
		{ID: "l1", Type: shop.LogSale, Message: "Sam bought Golden Pothos for 25 GP", TimestampMs: 1000, GPChange: 25},
		{ID: "l2", Type: shop.LogCustomerLeft, Message: "Theo browsed but left empty-handed", TimestampMs: 2000},
	}
	for i, e := range entries {
		if err := j.WriteEntry("shop_1", uint64(i), e); err != nil {
			t.Fatalf("write entry %d: %v", i, err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "activity", "*.jsonl.zst"))
	if err != nil || len(files) != 1 {
		t.Fatalf("journal files = %v (err %v), want exactly one", files, err)
	}

	f, err := os.Open(files[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var got []activityRecord
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var rec activityRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, rec)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(entries) {
		t.Fatalf("read %d records, want %d", len(got), len(entries))
	}
	for i, rec := range got {
		if rec.SessionID != "shop_1" || rec.EntryID != entries[i].ID || rec.Message != entries[i].Message {
			t.Fatalf("record %d = %+v, want entry %+v", i, rec, entries[i])
		}
	}
}
