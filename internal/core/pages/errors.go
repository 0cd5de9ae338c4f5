package pages

import "errors"

var (
	// ErrPageNotFound is returned when no page matches the given uri or hash.
	ErrPageNotFound = errors.New("page not found")

	// ErrPageExists is returned when registering a uri that is already known.
	ErrPageExists = errors.New("page already exists")
)

// IsNotFound reports whether err indicates a missing page.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPageNotFound)
}
