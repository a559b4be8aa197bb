package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type enumerates the notification events the orchestrator understands.
type Type string

const (
	TypeAbsenceAlert Type = "absence_alert"
	TypeWeeklyReport Type = "weekly_report"
	TypeEmergency    Type = "emergency"
	TypeGeneral      Type = "general"
)

// Priority orders in-app notifications in client UIs.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ErrInvalidEvent marks events rejected before any channel work starts.
var ErrInvalidEvent = errors.New("notify: invalid event")

// Event is one notification occurrence bound to a school-scoped audience.
type Event struct {
	Type      Type      `json:"type"`
	SchoolID  string    `json:"school_id"`
	Class     string    `json:"class,omitempty"`
	Section   string    `json:"section,omitempty"`
	Date      time.Time `json:"date,omitzero"`
	Period    string    `json:"period,omitempty"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message,omitempty"`
	Priority  Priority  `json:"priority,omitempty"`
	ActionURL string    `json:"action_url,omitempty"`
}

// Message is the rendered payload handed to every channel.
type Message struct {
	Type      Type
	Title     string
	Body      string
	Priority  Priority
	ActionURL string
}

// Render synthesizes the outgoing message. An explicit caller-supplied
// message always wins verbatim; otherwise a small per-type template is used,
// with unknown types falling through to the general wording.
func (e Event) Render() Message {
	msg := Message{
		Type:      e.Type,
		Title:     e.Title,
		Body:      e.Message,
		Priority:  e.Priority,
		ActionURL: e.ActionURL,
	}
	if msg.Priority == "" {
		msg.Priority = defaultPriority(e.Type)
	}
	if msg.Title == "" {
		msg.Title = defaultTitle(e.Type)
	}
	if msg.Body != "" {
		return msg
	}

	switch e.Type {
	case TypeAbsenceAlert:
		date := e.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}
		msg.Body = fmt.Sprintf("Your child was marked absent on %s. Please contact the school if this is unexpected.", date.Format("02 Jan 2006"))
	case TypeWeeklyReport:
		period := strings.TrimSpace(e.Period)
		if period == "" {
			period = "this week"
		}
		msg.Body = fmt.Sprintf("Weekly attendance report for %s is now available. Open the app to view details.", period)
	case TypeEmergency:
		msg.Body = "Emergency notice from the school. Please check the app immediately for details."
	default:
		msg.Body = "You have a new notification from the school."
	}
	return msg
}

func defaultTitle(t Type) string {
	switch t {
	case TypeAbsenceAlert:
		return "Absence Alert"
	case TypeWeeklyReport:
		return "Weekly Attendance Report"
	case TypeEmergency:
		return "Emergency Notice"
	default:
		return "School Notification"
	}
}

func defaultPriority(t Type) Priority {
	switch t {
	case TypeEmergency:
		return PriorityUrgent
	case TypeAbsenceAlert:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}
