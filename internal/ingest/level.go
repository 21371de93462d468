package ingest

import "strings"

// Level names accepted by LingQ, in code order.
const (
	LevelBeginner1     = "Beginner 1"
	LevelBeginner2     = "Beginner 2"
	LevelIntermediate1 = "Intermediate 1"
	LevelIntermediate2 = "Intermediate 2"
	LevelAdvanced1     = "Advanced 1"
	LevelAdvanced2     = "Advanced 2"
)

// DefaultLevelCode is used for empty or unknown level names.
const DefaultLevelCode = 1

var levelCodes = map[string]int{
	LevelBeginner1:     1,
	LevelBeginner2:     2,
	LevelIntermediate1: 3,
	LevelIntermediate2: 4,
	LevelAdvanced1:     5,
	LevelAdvanced2:     6,
}

// Levels returns the six level names in code order.
func Levels() []string {
	return []string{
		LevelBeginner1, LevelBeginner2,
		LevelIntermediate1, LevelIntermediate2,
		LevelAdvanced1, LevelAdvanced2,
	}
}

// LevelCode maps a level name to its integer code.
func LevelCode(level string) int {
	if code, ok := levelCodes[strings.TrimSpace(level)]; ok {
		return code
	}
	return DefaultLevelCode
}

// IsKnownLevel reports whether level is one of the six names.
func IsKnownLevel(level string) bool {
	_, ok := levelCodes[strings.TrimSpace(level)]
	return ok
}
