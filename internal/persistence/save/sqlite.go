package save

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps one compressed save blob per session in SQLite. Writes are
// funneled through a single goroutine so the sim loop never blocks on disk;
// reads are synchronous and only happen at startup.
type Store struct {
	db *sql.DB

	ch   chan putReq
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type putReq struct {
	sessionID string
	blob      []byte
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		ch: make(chan putReq, 64),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for this append-heavy, single-writer workload.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS saves (
		session_id TEXT PRIMARY KEY,
		blob BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

func (s *Store) loop() {
	for r := range s.ch {
		_, err := s.db.Exec(
			`INSERT INTO saves (session_id, blob, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(session_id) DO UPDATE SET blob=excluded.blob, updated_at=excluded.updated_at`,
			r.sessionID, r.blob, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			// A missed save is recoverable; the next cadence retries.
			continue
		}
	}
}

// Put queues a save blob. Drops the write if the store is closing or the
// queue is full; a newer blob always follows.
func (s *Store) Put(sessionID string, blob []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- putReq{sessionID: sessionID, blob: blob}:
	default:
	}
}

// Get returns the stored blob for a session, or (nil, nil) when absent.
func (s *Store) Get(sessionID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM saves WHERE session_id = ?`, sessionID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
