package comments

import "errors"

var (
	// ErrCommentNotFound indicates the requested comment doesn't exist
	ErrCommentNotFound = errors.New("comment not found")

	// ErrParentNotFound indicates the referenced parent comment doesn't exist
	ErrParentNotFound = errors.New("parent comment not found")

	// ErrThrottled indicates the submitter exceeded the allowed posting rate.
	// Surfaced as a single generic message on purpose.
	ErrThrottled = errors.New("number of allowed comments per interval exceeded")

	// ErrDuplicate indicates a comment with the same text and author exists
	ErrDuplicate = errors.New("duplicate content")

	// ErrNotAuthorized indicates the user may not perform this action
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidStatus indicates an unknown moderation status code
	ErrInvalidStatus = errors.New("invalid comment status")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrParentNotFound)
}

// IsPolicyRejection checks if an error is a throttle or duplicate rejection.
// These are user-facing but intentionally vague.
func IsPolicyRejection(err error) bool {
	return errors.Is(err, ErrThrottled) ||
		errors.Is(err, ErrDuplicate)
}

// IsValidation checks if an error carries per-field validation messages
func IsValidation(err error) bool {
	var fe FieldErrors
	return errors.As(err, &fe)
}

// AsFieldErrors extracts the per-field message map from a validation error,
// returning nil when err is not a validation failure.
func AsFieldErrors(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
