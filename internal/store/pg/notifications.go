package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"edcore.org/internal/notify"
)

var _ notify.RecordStore = (*Store)(nil)

const maxListLimit = 200

func (s *Store) InsertBatch(ctx context.Context, records []notify.Record) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		dataJSON := []byte("{}")
		if len(r.Data) > 0 {
			raw, err := json.Marshal(r.Data)
			if err != nil {
				return fmt.Errorf("marshal data: %w", err)
			}
			dataJSON = raw
		}
		if _, err := tx.ExecContext(ctx, `
			insert into notifications (id, user_id, type, title, message, priority, action_url, data, is_read, created_at)
			values ($1, $2, $3, $4, $5, $6, nullif($7, ''), $8, false, $9)
		`, r.ID, r.UserID, string(r.Type), r.Title, r.Message, string(r.Priority), r.ActionURL, dataJSON, r.CreatedAt); err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return notify.ErrConflict
			}
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) List(ctx context.Context, userID string, opts notify.ListOptions) ([]notify.Record, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	limit := opts.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = 50
	}
	query := `
		select id, user_id, type, title, message, priority, coalesce(action_url, ''), data, is_read, created_at, read_at
		from notifications
		where user_id = $1
	`
	if opts.UnreadOnly {
		query += ` and is_read = false`
	}
	query += ` order by created_at desc limit $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []notify.Record
	for rows.Next() {
		var (
			r       notify.Record
			rawData []byte
			readAt  sql.NullTime
			typ     string
			prio    string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &typ, &r.Title, &r.Message, &prio, &r.ActionURL, &rawData, &r.IsRead, &r.CreatedAt, &readAt); err != nil {
			return nil, err
		}
		r.Type = notify.Type(typ)
		r.Priority = notify.Priority(prio)
		if len(rawData) > 0 {
			if err := json.Unmarshal(rawData, &r.Data); err != nil {
				return nil, fmt.Errorf("decode data: %w", err)
			}
		}
		if readAt.Valid {
			t := readAt.Time
			r.ReadAt = &t
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkRead flips the given rows to read. The is_read guard keeps read_at at
// its first-transition value on repeated calls.
func (s *Store) MarkRead(ctx context.Context, ids []string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		update notifications
		set is_read = true, read_at = now()
		where id = any($1) and is_read = false
	`, pq.Array(ids))
	return err
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	_, err := s.db.ExecContext(ctx, `
		update notifications
		set is_read = true, read_at = now()
		where user_id = $1 and is_read = false
	`, userID)
	return err
}

func (s *Store) Delete(ctx context.Context, ids []string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		delete from notifications where id = any($1)
	`, pq.Array(ids))
	return err
}
