package access

// Evaluate answers every permission question for one principal and module.
// It is pure: the caller supplies the pre-fetched access map, nothing is
// looked up or created here. A super_admin principal short-circuits to full
// access regardless of the map contents, including an empty or nil map; this
// is a deliberate, audited bypass. For everyone else a missing map entry
// behaves exactly like an explicit none grant.
func Evaluate(p Principal, module string, grants Map) Decision {
	if p.Role == RoleSuperAdmin {
		return Decision{CanView: true, CanEdit: true, CanDelete: true, HasFull: true, Level: LevelAll}
	}
	level, ok := grants[module]
	if !ok || !level.Valid() {
		level = LevelNone
	}
	return Decision{
		CanView:   level.AtLeast(LevelView),
		CanEdit:   level.AtLeast(LevelEdit),
		CanDelete: level.AtLeast(LevelDelete),
		HasFull:   level.AtLeast(LevelAll),
		Level:     level,
	}
}
