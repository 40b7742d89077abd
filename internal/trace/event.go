package trace

import "time"

// Kind distinguishes span boundaries from instant events.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope orders events from coarse to fine. A level admits every scope up to
// its limit.
type Scope uint8

const (
	ScopeRuntime Scope = iota + 1 // initialize, shutdown, fatal errors
	ScopeImage                    // image load and link
	ScopeCall                     // top-level calls
	ScopeAlloc                    // single allocations
)

var scopeNames = [...]string{ScopeRuntime: "runtime", ScopeImage: "image", ScopeCall: "call", ScopeAlloc: "alloc"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans and points
	Name     string // "runtime.init", "call:main", ...
	Detail   string
	Extra    map[string]string
}

// Point emits an instant event when t admits scope.
func Point(t Tracer, scope Scope, name, detail string, extra map[string]string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Name:   name,
		Detail: detail,
		Extra:  extra,
	})
}
