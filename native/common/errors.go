package common

import "errors"

// Failure kinds shared by every native module. Module-level sentinel errors
// wrap exactly one kind via Wrap so callers (the RPC layer in particular) can
// classify any engine error with errors.Is without knowing the module.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrStateConflict       = errors.New("state conflict")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrTemporarilyBlocked  = errors.New("temporarily blocked")
	ErrPermanentlyBlocked  = errors.New("permanently blocked")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

// Is reports a match against both the sentinel itself and its failure kind.
func (e *kindError) Is(target error) bool { return target == e.kind }

// Wrap returns a sentinel error carrying the given failure kind. The returned
// error matches the kind under errors.Is while keeping its own identity for
// exact matching.
func Wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Kind extracts the failure kind of err, or nil when err carries none.
func Kind(err error) error {
	for _, kind := range []error{
		ErrUnauthorized,
		ErrInvalidInput,
		ErrStateConflict,
		ErrInsufficientPayment,
		ErrTemporarilyBlocked,
		ErrPermanentlyBlocked,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
