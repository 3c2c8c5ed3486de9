package intents

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"remindd/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put upserts by the (reminder, target, firesAt) key so re-dispatch after a
// reschedule overwrites rather than duplicates.
func (s *sqliteStore) Put(ctx context.Context, rec Record) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO intents(id, reminder_id, target_user_id, fires_at, title, body, status, created_at)
		 VALUES(?,?,?,?,?,?,?,?)
		 ON CONFLICT(reminder_id, target_user_id, fires_at) DO UPDATE SET
		   title=excluded.title, body=excluded.body, status=excluded.status`,
		rec.ID, rec.ReminderID, rec.TargetUserID, rec.FiresAt.UnixMilli(),
		rec.Title, nullStr(rec.Body), string(rec.Status), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) CancelByReminder(ctx context.Context, reminderID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE intents SET status=? WHERE reminder_id=? AND status=?`,
		string(StatusCancelled), reminderID, string(StatusPending),
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *sqliteStore) CancelAll(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE intents SET status=? WHERE status=?`,
		string(StatusCancelled), string(StatusPending),
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *sqliteStore) ListByReminder(ctx context.Context, reminderID string) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, reminder_id, target_user_id, fires_at, title, COALESCE(body,''), status, created_at
		 FROM intents WHERE reminder_id=? ORDER BY fires_at`, reminderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec     Record
			ms      int64
			status  string
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.ReminderID, &rec.TargetUserID, &ms, &rec.Title, &rec.Body, &status, &created); err != nil {
			return nil, err
		}
		rec.FiresAt = time.UnixMilli(ms)
		rec.Status = Status(status)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PruneBefore removes cancelled or long-past rows older than cutoff
// (unix millis). Pending future intents are never pruned.
func (s *sqliteStore) PruneBefore(ctx context.Context, cutoff int64) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM intents WHERE fires_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
