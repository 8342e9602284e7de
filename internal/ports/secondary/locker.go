package secondary

// DirLocker defines the secondary port for exclusive access to the
// OpenPnP configuration directory during a commit.
type DirLocker interface {
	// Acquire takes the lock, breaking stale locks left by dead or
	// expired sessions. Fails fast when another live session holds it.
	Acquire() error

	// Release drops the lock if held.
	Release() error
}
