package pg

import (
	"context"
	"database/sql"
	"errors"

	"edcore.org/internal/access"
)

var _ access.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, principalID string) (access.Map, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select module, access_level
		from access_grants
		where principal_id = $1
	`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := access.Map{}
	for rows.Next() {
		var module, level string
		if err := rows.Scan(&module, &level); err != nil {
			return nil, err
		}
		m[module] = access.ParseLevel(level)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) Upsert(ctx context.Context, g access.Grant) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	_, err := s.db.ExecContext(ctx, `
		insert into access_grants (principal_id, module, access_level, sub_domain)
		values ($1, $2, $3, nullif($4, ''))
		on conflict (principal_id, module) do update
		set access_level = excluded.access_level,
		    sub_domain   = excluded.sub_domain,
		    updated_at   = now()
	`, g.PrincipalID, g.Module, string(g.Level), g.SubDomain)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return access.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, principalID, module string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		delete from access_grants
		where principal_id = $1 and module = $2
	`, principalID, module)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return access.ErrNotFound
	}
	return nil
}

func (s *Store) BulkReplace(ctx context.Context, principalID string, grants []access.Grant) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		delete from access_grants where principal_id = $1
	`, principalID); err != nil {
		return err
	}
	for _, g := range grants {
		if _, err := tx.ExecContext(ctx, `
			insert into access_grants (principal_id, module, access_level, sub_domain)
			values ($1, $2, $3, nullif($4, ''))
		`, principalID, g.Module, string(g.Level), g.SubDomain); err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return access.ErrConflict
			}
			return err
		}
	}
	return tx.Commit()
}
