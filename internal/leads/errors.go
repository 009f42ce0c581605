package leads

import "errors"

var (
	// ErrInvalidName is returned when the name is missing or empty
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidEmail is returned when the email is missing or empty
	ErrInvalidEmail = errors.New("email is required")

	// ErrInvalidStatus is returned when a status outside the funnel
	// enumeration is given
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrEmptyNoteText is returned when a note body is missing or empty
	ErrEmptyNoteText = errors.New("note text is required")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrNoteNotFound is returned when a note is not found on the lead
	ErrNoteNotFound = errors.New("note not found")
)

// IsValidation reports whether err is a request-validation error rather
// than a missing record or storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyNoteText)
}

// IsNotFound reports whether err means the lead or note did not resolve.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound) || errors.Is(err, ErrNoteNotFound)
}
