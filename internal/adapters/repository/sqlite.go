package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/domain/window"
	"github.com/okian/underdog/pkg/metrics"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const sessionSchema = `CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT    PRIMARY KEY,
	recent     TEXT    NOT NULL,
	aggregate  TEXT    NOT NULL,
	rounds     INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore persists sessions in a single SQLite table. Buffers are stored
// as JSON arrays, oldest first.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore opens (and if needed creates) the database at path.
func OpenSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create session store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: writes are serialized and :memory: stays a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sessionSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session schema: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateActiveSessions(s.Count(context.Background()))
	return s, nil
}

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, state window.State) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("create", sinceMs(start)) }()

	sess := newSession(state, s.now())
	recent, aggregate, err := encodeState(sess.State)
	if err != nil {
		metrics.RecordStoreError("create")
		return Session{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, recent, aggregate, rounds, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, recent, aggregate, sess.Rounds, sess.CreatedAt.UnixNano(), sess.UpdatedAt.UnixNano())
	if err != nil {
		metrics.RecordStoreError("create")
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	metrics.UpdateActiveSessions(s.Count(ctx))
	return sess, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("get", sinceMs(start)) }()

	var (
		recent, aggregate string
		rounds            int
		created, updated  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT recent, aggregate, rounds, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&recent, &aggregate, &rounds, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordStoreError("get")
		return Session{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("get")
		return Session{}, fmt.Errorf("select session: %w", err)
	}

	state, err := decodeState(recent, aggregate)
	if err != nil {
		metrics.RecordStoreError("get")
		return Session{}, err
	}
	return Session{
		ID:        id,
		State:     state,
		Rounds:    rounds,
		CreatedAt: time.Unix(0, created),
		UpdatedAt: time.Unix(0, updated),
	}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, sess Session) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("save", sinceMs(start)) }()

	recent, aggregate, err := encodeState(sess.State)
	if err != nil {
		metrics.RecordStoreError("save")
		return Session{}, err
	}
	// Round-trip through UnixNano so the result matches a later Get.
	updated := time.Unix(0, s.now().UnixNano())
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET recent = ?, aggregate = ?, rounds = ?, updated_at = ? WHERE id = ?`,
		recent, aggregate, sess.Rounds, updated.UnixNano(), sess.ID)
	if err != nil {
		metrics.RecordStoreError("save")
		return Session{}, fmt.Errorf("update session: %w", err)
	}
	if err := requireRow(res, "save"); err != nil {
		return Session{}, err
	}
	sess.UpdatedAt = updated
	return sess, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("delete", sinceMs(start)) }()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		metrics.RecordStoreError("delete")
		return fmt.Errorf("delete session: %w", err)
	}
	if err := requireRow(res, "delete"); err != nil {
		return err
	}
	metrics.UpdateActiveSessions(s.Count(ctx))
	return nil
}

// Count implements Store. Query failures count as zero.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		metrics.RecordStoreError("count")
		return 0
	}
	return n
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		metrics.RecordStoreError(op)
		return fmt.Errorf("%s session: %w", op, err)
	}
	if n == 0 {
		metrics.RecordStoreError(op)
		return ErrNotFound
	}
	return nil
}

func encodeState(state window.State) (string, string, error) {
	recent, err := json.Marshal(state.Recent())
	if err != nil {
		return "", "", fmt.Errorf("encode recent: %w", err)
	}
	aggregate, err := json.Marshal(state.Aggregate())
	if err != nil {
		return "", "", fmt.Errorf("encode aggregate: %w", err)
	}
	return string(recent), string(aggregate), nil
}

func decodeState(recent, aggregate string) (window.State, error) {
	var r, a []model.Competitor
	if err := json.Unmarshal([]byte(recent), &r); err != nil {
		return window.State{}, fmt.Errorf("%w: recent: %w", ErrCorruptRecord, err)
	}
	if err := json.Unmarshal([]byte(aggregate), &a); err != nil {
		return window.State{}, fmt.Errorf("%w: aggregate: %w", ErrCorruptRecord, err)
	}
	return window.New(r, a), nil
}
