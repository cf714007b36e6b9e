package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleState() window.State {
	return window.New(
		model.Competitors("A", "B", "A"),
		model.Competitors("A", "A", "B", "C"),
	)
}

// exerciseStore runs the shared contract against any Store implementation.
func exerciseStore(ctx context.Context, s Store) {
	Convey("When a session is created", func() {
		created, err := s.Create(ctx, sampleState())
		So(err, ShouldBeNil)
		So(created.ID, ShouldNotBeEmpty)
		So(s.Count(ctx), ShouldEqual, 1)

		Convey("Then it can be read back intact", func() {
			got, err := s.Get(ctx, created.ID)
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, created.ID)
			So(got.Rounds, ShouldEqual, 0)
			So(got.State.Recent(), ShouldResemble, model.Competitors("A", "B", "A"))
			So(got.State.Aggregate(), ShouldResemble, model.Competitors("A", "A", "B", "C"))
		})

		Convey("Then saving an advanced state persists it", func() {
			created.State = created.State.Push("C")
			created.Rounds = 1
			saved, err := s.Save(ctx, created)
			So(err, ShouldBeNil)
			So(saved.Rounds, ShouldEqual, 1)

			got, err := s.Get(ctx, created.ID)
			So(err, ShouldBeNil)
			So(got.Rounds, ShouldEqual, 1)
			So(got.UpdatedAt.Equal(saved.UpdatedAt), ShouldBeTrue)
			So(got.State.Recent(), ShouldResemble, model.Competitors("B", "A", "C"))
			So(got.State.Aggregate(), ShouldResemble, model.Competitors("A", "B", "C", "C"))
		})

		Convey("Then deleting removes it", func() {
			So(s.Delete(ctx, created.ID), ShouldBeNil)
			So(s.Count(ctx), ShouldEqual, 0)

			_, err := s.Get(ctx, created.ID)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(errors.Is(s.Delete(ctx, created.ID), ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When sessions are unknown", func() {
		_, err := s.Get(ctx, "missing")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		_, err = s.Save(ctx, Session{ID: "missing"})
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		So(errors.Is(s.Delete(ctx, "missing"), ErrNotFound), ShouldBeTrue)
	})

	Convey("When two sessions are created", func() {
		a, err := s.Create(ctx, sampleState())
		So(err, ShouldBeNil)
		b, err := s.Create(ctx, window.State{})
		So(err, ShouldBeNil)

		So(a.ID, ShouldNotEqual, b.ID)
		So(s.Count(ctx), ShouldEqual, 2)

		got, err := s.Get(ctx, b.ID)
		So(err, ShouldBeNil)
		So(got.State.Recent(), ShouldBeEmpty)
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		s := NewMemoryStore(WithClock(func() time.Time { return fixed }))
		defer func() { _ = s.Close() }()

		exerciseStore(context.Background(), s)

		Convey("Then timestamps come from the clock", func() {
			sess, err := s.Create(context.Background(), sampleState())
			So(err, ShouldBeNil)
			So(sess.CreatedAt, ShouldEqual, fixed)
		})

		Convey("Then Save stamps UpdatedAt from the clock and returns it", func() {
			ctx := context.Background()
			later := fixed.Add(time.Minute)
			clocked := NewMemoryStore(WithClock(func() time.Time { return fixed }))
			sess, err := clocked.Create(ctx, sampleState())
			So(err, ShouldBeNil)

			clocked.now = func() time.Time { return later }
			saved, err := clocked.Save(ctx, sess)
			So(err, ShouldBeNil)
			So(saved.UpdatedAt, ShouldEqual, later)
			So(saved.CreatedAt, ShouldEqual, fixed)

			got, err := clocked.Get(ctx, sess.ID)
			So(err, ShouldBeNil)
			So(got.UpdatedAt, ShouldEqual, later)
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess, err := s.Create(ctx, sampleState())
				if err != nil {
					return
				}
				sess.State = sess.State.Push("B")
				_, _ = s.Save(ctx, sess)
			}()
		}
		wg.Wait()

		So(s.Count(ctx), ShouldEqual, 50)
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given an in-memory SQLite store", t, func() {
		s, err := OpenSQLiteStore(MemoryPath)
		So(err, ShouldBeNil)
		defer func() { _ = s.Close() }()

		exerciseStore(context.Background(), s)
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	Convey("Given a SQLite store on disk", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "sessions.db")

		s, err := OpenSQLiteStore(path)
		So(err, ShouldBeNil)
		created, err := s.Create(ctx, sampleState())
		So(err, ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("Then sessions survive a reopen", func() {
			reopened, err := OpenSQLiteStore(path)
			So(err, ShouldBeNil)
			defer func() { _ = reopened.Close() }()

			got, err := reopened.Get(ctx, created.ID)
			So(err, ShouldBeNil)
			So(got.State.Aggregate(), ShouldResemble, model.Competitors("A", "A", "B", "C"))
			So(got.CreatedAt.Equal(created.CreatedAt), ShouldBeTrue)
		})
	})
}

func TestSQLiteStore_CorruptRecord(t *testing.T) {
	Convey("Given a row with a malformed buffer", t, func() {
		ctx := context.Background()
		s, err := OpenSQLiteStore(MemoryPath)
		So(err, ShouldBeNil)
		defer func() { _ = s.Close() }()

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO sessions (id, recent, aggregate, rounds, created_at, updated_at) VALUES ('bad', 'not json', '[]', 0, 0, 0)`)
		So(err, ShouldBeNil)

		_, err = s.Get(ctx, "bad")
		So(errors.Is(err, ErrCorruptRecord), ShouldBeTrue)
	})
}
