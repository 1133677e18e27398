package domain

import "errors"

// Sentinel errors for the chat backend. Handlers map these to stable
// status/message pairs; nothing below is retried automatically.
var (
	// ErrAlreadyExists is returned when signing up with an email that is
	// already registered.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned on a login credential mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned for any session operation performed
	// without an active session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when an operation references an unknown user.
	ErrNotFound = errors.New("user not found")

	// ErrEmptyInput is returned when a user turn is empty or whitespace.
	ErrEmptyInput = errors.New("empty message")

	// ErrModelCallFailed is returned when the language model collaborator
	// errors or times out. The user turn that triggered the call is kept.
	ErrModelCallFailed = errors.New("model call failed")

	// ErrStoreIO is returned when the user store cannot be written.
	// Load failures are deliberately absorbed into an empty store instead
	// (see store.JSONFileStore), so this surfaces on save only.
	ErrStoreIO = errors.New("user store I/O failure")
)
