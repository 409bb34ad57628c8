// Package session tracks the current trust level of the app session and
// notifies subscribers when it changes. The backend router subscribes here
// to decide which store serves requests.
package session

// Session describes the current authentication state. The zero value is not
// meaningful; use Anonymous() for the signed-out state.
type Session struct {
	UserID        string
	Authenticated bool
	Anonymous     bool
}

// Anonymous returns the signed-out session.
func Anonymous() Session {
	return Session{Anonymous: true}
}

// Trusted reports whether the session may use the remote store: it must be
// authenticated and not anonymous.
func (s Session) Trusted() bool {
	return s.Authenticated && !s.Anonymous
}
