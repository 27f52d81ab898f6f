package peripheral

import "errors"

var (
	// ErrAccessDeclined means the user or device refused an access request.
	// This is a normal outcome, not a fault; tracker state is unchanged.
	ErrAccessDeclined = errors.New("peripheral: access request declined")

	// ErrNoProvider is returned when an access request is made but no
	// transport is wired to deliver it.
	ErrNoProvider = errors.New("peripheral: no access provider configured")

	// ErrUnknownRole is returned for access requests naming a role the
	// till does not track.
	ErrUnknownRole = errors.New("peripheral: unknown role")
)
