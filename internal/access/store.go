package access

import "context"

// Module keys provisioned by default. Handlers use these constants when
// guarding their own routes; administrative UIs may grant further free-form
// keys.
const (
	ModuleDashboard     = "dashboard"
	ModuleAttendance    = "attendance"
	ModuleStudents      = "students"
	ModuleFaculty       = "faculty"
	ModuleClasses       = "classes"
	ModuleFees          = "fees"
	ModuleTimetable     = "timetable"
	ModuleNotifications = "notifications"
	ModuleReports       = "reports"
	ModuleSettings      = "settings"
)

// Store describes durable CRUD over access grants.
type Store interface {
	// Get returns the full module → level map for one principal. A principal
	// with no rows yields an empty, non-nil map.
	Get(ctx context.Context, principalID string) (Map, error)

	// Upsert writes one grant keyed on (principal_id, module); concurrent
	// calls for the same key must converge to a single row.
	Upsert(ctx context.Context, g Grant) error

	// Remove deletes one grant; removing an absent grant is ErrNotFound.
	Remove(ctx context.Context, principalID, module string) error

	// BulkReplace atomically swaps every grant of a principal for the given
	// set. Used for full-access and revoke-all operations; an empty slice
	// clears the principal.
	BulkReplace(ctx context.Context, principalID string, grants []Grant) error
}

// Cache is an optional read-through cache in front of Store.Get.
// Implementations must treat lookup failures as misses.
type Cache interface {
	GetMap(ctx context.Context, principalID string) (Map, bool)
	SetMap(ctx context.Context, principalID string, m Map)
	Invalidate(ctx context.Context, principalID string)
}
