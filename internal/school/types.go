package school

import (
	"strings"
	"time"
)

// AttendanceStatus is the per-day attendance mark for one student.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// ParseAttendanceStatus normalizes raw input; unknown values are rejected.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	s := AttendanceStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return s, true
	}
	return "", false
}

// School is one tenant.
type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Student is the enrollment row notifications are resolved from. ParentPhone
// and ParentAccountID are each optional; whichever is populated decides the
// delivery channels the student's parent is eligible for.
type Student struct {
	ID              string `json:"id"`
	SchoolID        string `json:"school_id"`
	Name            string `json:"name"`
	Class           string `json:"class"`
	Section         string `json:"section"`
	ParentPhone     string `json:"parent_phone,omitempty"`
	ParentAccountID string `json:"parent_account_id,omitempty"`
}

// AttendanceRecord is one (student, date) attendance row.
type AttendanceRecord struct {
	StudentID string           `json:"student_id"`
	SchoolID  string           `json:"school_id"`
	Date      time.Time        `json:"date"`
	Status    AttendanceStatus `json:"status"`
}
