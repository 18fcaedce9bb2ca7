package alarm

import "time"

// Actor identifies who changed the permission.
type Actor struct {
	// Hostname is the machine name where the change was made.
	Hostname string `yaml:"hostname"`
	// Username is the system user who made the change.
	Username string `yaml:"username"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}

// PermissionState is the exact-alarm permission at a point in time.
type PermissionState struct {
	// Timestamp is when the permission was last changed.
	Timestamp time.Time `yaml:"timestamp"`
	// LastActor is who changed the permission last.
	LastActor *Actor `yaml:"last_actor,omitempty"`
	// Allowed reports whether exact alarms may be scheduled.
	Allowed bool `yaml:"allowed"`
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *PermissionState) Clone() *PermissionState {
	if s == nil {
		return nil
	}

	return &PermissionState{
		Timestamp: s.Timestamp,
		LastActor: s.LastActor.Clone(),
		Allowed:   s.Allowed,
	}
}
