package sessions

import "time"

// Session is the live record of an authenticated identity plus its expiry
// clock. Sessions are keyed by an opaque token issued at authenticate time
// and threaded through every gateway call, so multiple concurrent sessions
// need no changes to the permission or consent logic.
type Session struct {
	Token       string        // Opaque session handle (UUID)
	Identity    string        // Owning identity, a reference into the credential store
	CreatedAt   time.Time     // When the session was created
	LastRefresh time.Time     // Updated by every successful gated operation
	Timeout     time.Duration // Idle duration after which the session expires
}

// Expired reports whether the idle timeout has elapsed at the given time.
// Expiry is detected lazily on validity checks, never by a background timer.
func (s Session) Expired(now time.Time) bool {
	return now.Sub(s.LastRefresh) > s.Timeout
}
