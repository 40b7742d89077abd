package trace

import (
	"fmt"
	"strings"
)

// Level is the tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // fatal errors only, kept for ring dumps
	LevelPhase        // runtime lifecycle and images
	LevelDetail       // plus top-level calls
	LevelDebug        // plus allocations
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// maxScope is the finest scope each level emits; 0 emits nothing.
var maxScope = [...]Scope{LevelPhase: ScopeImage, LevelDetail: ScopeCall, LevelDebug: ScopeAlloc}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel is case-insensitive; "" means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether scope passes the regular level filter. Nothing
// passes at LevelError; fatal events bypass the filter.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(maxScope) {
		return false
	}
	return scope != 0 && scope <= maxScope[l]
}

// admits is the sink-side filter: the regular filter plus runtime-scope
// events at LevelError, which only fatal errors emit directly.
func (l Level) admits(scope Scope) bool {
	return l.ShouldEmit(scope) || (l == LevelError && scope == ScopeRuntime)
}
