package access

import "testing"

func TestLevelOrdering(t *testing.T) {
	ordered := []Level{LevelNone, LevelView, LevelEdit, LevelDelete, LevelAll}
	for i, lower := range ordered {
		for j, higher := range ordered {
			got := higher.AtLeast(lower)
			want := j >= i
			if got != want {
				t.Fatalf("%s.AtLeast(%s)=%v, want %v", higher, lower, got, want)
			}
		}
	}
}

func TestParseLevelDefaultsToNone(t *testing.T) {
	cases := map[string]Level{
		"view":   LevelView,
		" EDIT ": LevelEdit,
		"delete": LevelDelete,
		"all":    LevelAll,
		"":       LevelNone,
		"root":   LevelNone,
		"viewer": LevelNone,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q)=%s, want %s", raw, got, want)
		}
	}
}

func TestEvaluateSuperAdminBypassesMap(t *testing.T) {
	p := Principal{ID: "u1", Role: RoleSuperAdmin}
	for _, grants := range []Map{nil, {}, {"attendance": LevelNone}} {
		d := Evaluate(p, "attendance", grants)
		if !d.CanView || !d.CanEdit || !d.CanDelete || !d.HasFull {
			t.Fatalf("super_admin decision incomplete: %+v", d)
		}
		if d.Level != LevelAll {
			t.Fatalf("expected level all, got %s", d.Level)
		}
	}
}

func TestEvaluateMissingEntryEqualsNone(t *testing.T) {
	p := Principal{ID: "u2", Role: RoleFaculty}
	missing := Evaluate(p, "fees", Map{"attendance": LevelEdit})
	explicit := Evaluate(p, "fees", Map{"fees": LevelNone, "attendance": LevelEdit})
	if missing != explicit {
		t.Fatalf("missing entry %+v differs from explicit none %+v", missing, explicit)
	}
	if missing.CanView {
		t.Fatal("none grant must not allow view")
	}
}

func TestEvaluateSubsumption(t *testing.T) {
	p := Principal{ID: "u3", Role: RoleCoAdmin}
	cases := []struct {
		level     Level
		view      bool
		edit      bool
		del       bool
		full      bool
	}{
		{LevelNone, false, false, false, false},
		{LevelView, true, false, false, false},
		{LevelEdit, true, true, false, false},
		{LevelDelete, true, true, true, false},
		{LevelAll, true, true, true, true},
	}
	for _, tc := range cases {
		d := Evaluate(p, "students", Map{"students": tc.level})
		if d.CanView != tc.view || d.CanEdit != tc.edit || d.CanDelete != tc.del || d.HasFull != tc.full {
			t.Fatalf("level %s: got %+v", tc.level, d)
		}
	}
}

func TestEvaluateModuleKeysAreCaseSensitive(t *testing.T) {
	p := Principal{ID: "u4", Role: RoleFaculty}
	d := Evaluate(p, "Attendance", Map{"attendance": LevelAll})
	if d.CanView {
		t.Fatal("module lookup must be case-sensitive")
	}
}

func TestEvaluateIgnoresMalformedStoredLevel(t *testing.T) {
	p := Principal{ID: "u5", Role: RoleFaculty}
	d := Evaluate(p, "reports", Map{"reports": Level("superuser")})
	if d.CanView || d.Level != LevelNone {
		t.Fatalf("malformed level must read as none, got %+v", d)
	}
}
