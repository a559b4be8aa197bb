package access

import "strings"

// Level is the ordered access level attached to a (principal, module) grant.
// The ordering is total: none < view < edit < delete < all. Every permission
// question is answered through this single ordering; delete implies edit and
// view, all implies everything.
type Level string

const (
	LevelNone   Level = "none"
	LevelView   Level = "view"
	LevelEdit   Level = "edit"
	LevelDelete Level = "delete"
	LevelAll    Level = "all"
)

var levelRank = map[Level]int{
	LevelNone:   0,
	LevelView:   1,
	LevelEdit:   2,
	LevelDelete: 3,
	LevelAll:    4,
}

// ParseLevel normalizes raw input to a Level. Unknown or malformed values
// collapse to none rather than erroring, so a corrupt stored row can never
// grant more than it names.
func ParseLevel(raw string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := levelRank[l]; !ok {
		return LevelNone
	}
	return l
}

// Valid reports whether l is one of the five known levels.
func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// AtLeast reports whether l grants everything other does.
func (l Level) AtLeast(other Level) bool {
	return levelRank[l] >= levelRank[other]
}

func (l Level) String() string { return string(l) }
