package guard

import "errors"

var (
	// ErrInvalidUser is returned by LoginByID when the id matches no record.
	// It indicates caller misuse rather than end-user input and is therefore
	// a hard error, not an AuthResult failure.
	ErrInvalidUser = errors.New("invalid user id")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrBuilderUsed is an exported constant or variable used by the authentication engine.
	ErrBuilderUsed = errors.New("builder already used")
)
