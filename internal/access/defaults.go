package access

// roleDefaults is the versioned role-to-baseline-grants table expanded at
// principal creation. It is configuration data, not logic: provisioning
// walks the table for the declared role and performs one bulk write.
// super_admin has no entry on purpose: the evaluator bypasses grants for
// that role entirely, so rows would be dead weight.
//
// Version history:
//   v2: b2c variants added alongside the original three school roles.
const DefaultsVersion = 2

var roleDefaults = map[Role]map[string]Level{
	RoleCoAdmin: {
		ModuleDashboard:     LevelAll,
		ModuleAttendance:    LevelAll,
		ModuleStudents:      LevelAll,
		ModuleFaculty:       LevelAll,
		ModuleClasses:       LevelAll,
		ModuleFees:          LevelAll,
		ModuleTimetable:     LevelAll,
		ModuleNotifications: LevelAll,
		ModuleReports:       LevelAll,
		ModuleSettings:      LevelEdit,
	},
	RoleFaculty: {
		ModuleDashboard:     LevelView,
		ModuleAttendance:    LevelEdit,
		ModuleStudents:      LevelView,
		ModuleClasses:       LevelView,
		ModuleTimetable:     LevelView,
		ModuleNotifications: LevelEdit,
		ModuleReports:       LevelView,
	},
	RoleStudent: {
		ModuleDashboard:     LevelView,
		ModuleAttendance:    LevelView,
		ModuleTimetable:     LevelView,
		ModuleNotifications: LevelView,
	},
	RoleB2CStudent: {
		ModuleDashboard:     LevelView,
		ModuleTimetable:     LevelView,
		ModuleNotifications: LevelView,
	},
	RoleB2CParent: {
		ModuleDashboard:     LevelView,
		ModuleAttendance:    LevelView,
		ModuleNotifications: LevelView,
	},
}

// DefaultGrants expands the role table into concrete grant rows for a
// principal. Roles without a table (super_admin, unknown roles) yield nil.
func DefaultGrants(principalID string, role Role) []Grant {
	table, ok := roleDefaults[role]
	if !ok {
		return nil
	}
	grants := make([]Grant, 0, len(table))
	for module, level := range table {
		grants = append(grants, Grant{
			PrincipalID: principalID,
			Module:      module,
			Level:       level,
		})
	}
	return grants
}
