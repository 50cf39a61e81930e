package artifact

import "errors"

var (
	// ErrInvalidName signals a name that cannot identify an artifact, such
	// as one containing path separators.
	ErrInvalidName = errors.New("invalid artifact name")
	// ErrNameTaken indicates an active record already claims the name.
	ErrNameTaken = errors.New("artifact name already taken")
	// ErrTypeNotAllowed signals a content type outside the allow-list.
	ErrTypeNotAllowed = errors.New("content type not allowed")
	// ErrTooLarge signals that the upload exceeds the configured size cap.
	ErrTooLarge = errors.New("artifact too large")
	// ErrRecordNotFound signals that no metadata record exists for the name.
	ErrRecordNotFound = errors.New("artifact record not found")
	// ErrBlobNotFound signals that no stored bytes exist for the name.
	ErrBlobNotFound = errors.New("artifact blob not found")
	// ErrDeleteForbidden is returned when the caller is neither owner nor admin.
	ErrDeleteForbidden = errors.New("not allowed to delete artifact")
)
