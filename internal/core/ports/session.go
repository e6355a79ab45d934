package ports

// TokenSource supplies the current bearer credential, if any. The second
// return is false when no usable token is held (signed out, or expired).
type TokenSource interface {
	Token() (string, bool)
}

// SessionProvider is the external auth collaborator as seen by the core:
// it owns the token lifecycle, while the core only reacts to transitions
// between "session present" and "session absent".
type SessionProvider interface {
	TokenSource
	IsAdmin() bool
	// Subscribe registers fn to be called with true when a session becomes
	// available and false when it ends. The returned func unsubscribes.
	Subscribe(fn func(active bool)) (cancel func())
}
