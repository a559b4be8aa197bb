package school

import (
	"context"
	"fmt"
	"time"

	"edcore.org/internal/notify"
)

// Store describes the domain queries audience resolution needs.
type Store interface {
	// AbsenteesByDate returns students marked absent on the given date,
	// optionally narrowed to class and section.
	AbsenteesByDate(ctx context.Context, schoolID string, date time.Time, class, section string) ([]Student, error)

	// StudentsBySchool returns the enrolled students of a school, optionally
	// narrowed to class and section.
	StudentsBySchool(ctx context.Context, schoolID, class, section string) ([]Student, error)
}

// Resolver turns a notification event into its recipient audience.
// Absence alerts target the parents of that day's absentees; every other
// event type targets the parents of the whole (filtered) school.
type Resolver struct {
	store Store
}

var _ notify.AudienceResolver = (*Resolver)(nil)

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Resolve(ctx context.Context, ev notify.Event) ([]notify.Recipient, error) {
	if ev.SchoolID == "" {
		return nil, fmt.Errorf("%w: school_id is required", notify.ErrInvalidEvent)
	}
	var (
		students []Student
		err      error
	)
	switch ev.Type {
	case notify.TypeAbsenceAlert:
		date := ev.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}
		students, err = r.store.AbsenteesByDate(ctx, ev.SchoolID, date, ev.Class, ev.Section)
	default:
		students, err = r.store.StudentsBySchool(ctx, ev.SchoolID, ev.Class, ev.Section)
	}
	if err != nil {
		return nil, err
	}

	recipients := make([]notify.Recipient, 0, len(students))
	for _, st := range students {
		recipients = append(recipients, notify.Recipient{
			ID:        st.ID,
			Name:      st.Name,
			Phone:     st.ParentPhone,
			AccountID: st.ParentAccountID,
		})
	}
	return recipients, nil
}
