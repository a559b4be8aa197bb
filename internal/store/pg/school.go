package pg

import (
	"context"
	"errors"
	"time"

	"edcore.org/internal/school"
)

var _ school.Store = (*Store)(nil)

func (s *Store) AbsenteesByDate(ctx context.Context, schoolID string, date time.Time, class, section string) ([]school.Student, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select st.id, st.school_id, st.name, st.class, st.section,
		       coalesce(st.parent_phone, ''), coalesce(st.parent_account_id, '')
		from students st
		join attendance_records ar on ar.student_id = st.id
		where st.school_id = $1
		  and ar.date = $2::date
		  and ar.status = 'absent'
		  and ($3 = '' or st.class = $3)
		  and ($4 = '' or st.section = $4)
		order by st.class, st.section, st.name
	`, schoolID, date.UTC().Format("2006-01-02"), class, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudents(rows)
}

func (s *Store) StudentsBySchool(ctx context.Context, schoolID, class, section string) ([]school.Student, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, school_id, name, class, section,
		       coalesce(parent_phone, ''), coalesce(parent_account_id, '')
		from students
		where school_id = $1
		  and ($2 = '' or class = $2)
		  and ($3 = '' or section = $3)
		order by class, section, name
	`, schoolID, class, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudents(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanStudents(rows rowScanner) ([]school.Student, error) {
	var result []school.Student
	for rows.Next() {
		var st school.Student
		if err := rows.Scan(&st.ID, &st.SchoolID, &st.Name, &st.Class, &st.Section, &st.ParentPhone, &st.ParentAccountID); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
