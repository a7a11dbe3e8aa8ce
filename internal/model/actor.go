package model

import "strconv"

// Actor identifies who performed a write.  Most writes are attributed to a
// logged-in user; auto-distribution at auction end is performed by the
// system itself.  A tagged variant is used instead of a reserved user ID so
// that a system write can never collide with a real account.
type Actor struct {
	UserID uint64 // populated for user-initiated writes
	System bool   // true for system-initiated writes
}

// UserActor returns an Actor for the given user ID.
func UserActor(id uint64) Actor { return Actor{UserID: id} }

// SystemActor attributes a write to the system itself (e.g. auto-distribution).
var SystemActor = Actor{System: true}

// AuditValue returns the value stored in audit columns: the user ID for user
// writes, or nil (SQL NULL) for system writes.
func (a Actor) AuditValue() interface{} {
	if a.System {
		return nil
	}
	return a.UserID
}

// String renders the actor for log lines.
func (a Actor) String() string {
	if a.System {
		return "system"
	}
	return "user:" + strconv.FormatUint(a.UserID, 10)
}
