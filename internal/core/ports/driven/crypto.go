package driven

// Secrets reports whether the token encryption key currently resolves to a
// usable key. The connection store encrypts internally; flow initiation only
// needs to know persistence is possible before sending a user through
// provider consent.
type Secrets interface {
	Configured() bool
}
