package apt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindInvalidArgument ErrKind = iota // NUL in a name, architecture or version
	ErrKindPoisoned                       // a panic unwound while the cache lock was held
	ErrKindLockTimeout                    // waiting for the cache lock was cancelled
	ErrKindBusy                           // the lock is held and the caller would not wait
	ErrKindClosed                         // use of a closed session or cache
	ErrKindEncoding                       // engine text that is not valid UTF-8
	ErrKindInternal                       // the engine broke its contract (missing required field)
	ErrKindEngine                         // the engine failed to open or close
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidArgument:
		return "invalid argument"
	case ErrKindPoisoned:
		return "poisoned"
	case ErrKindLockTimeout:
		return "lock timeout"
	case ErrKindBusy:
		return "busy"
	case ErrKindClosed:
		return "closed"
	case ErrKindEncoding:
		return "encoding"
	case ErrKindInternal:
		return "internal"
	case ErrKindEngine:
		return "engine"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return "apt: " + e.Msg + ": " + e.Err.Error()
	}
	return "apt: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrLockTimeout)
// holds for every lock timeout whatever its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t.Kind == e.Kind
}

// Sentinels, one per kind.
var (
	ErrInvalidArgument = &Error{Kind: ErrKindInvalidArgument, Msg: "invalid argument"}
	// ErrPoisoned is permanent: neither Reload nor waiting clears it.
	ErrPoisoned    = &Error{Kind: ErrKindPoisoned, Msg: "cache poisoned by an earlier panic"}
	ErrLockTimeout = &Error{Kind: ErrKindLockTimeout, Msg: "timed out waiting for the cache lock"}
	ErrBusy        = &Error{Kind: ErrKindBusy, Msg: "cache lock is held"}
	ErrClosed      = &Error{Kind: ErrKindClosed, Msg: "use of closed cache or session"}
	ErrEncoding    = &Error{Kind: ErrKindEncoding, Msg: "engine text is not valid UTF-8"}
	ErrInternal    = &Error{Kind: ErrKindInternal, Msg: "engine contract violation"}
	ErrEngine      = &Error{Kind: ErrKindEngine, Msg: "engine failure"}
)

// ErrStaleView is the panic value raised when a view is read after its
// cursor advanced or was released.
var ErrStaleView = errors.New("apt: view used after its cursor moved")

// EncodingError records engine text that could not be decoded. The
// accessor that met it returns "" and the error becomes the sticky error of
// the cursor chain.
type EncodingError struct {
	Field string
	Raw   []byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("apt: %s is not valid UTF-8: %q", e.Field, e.Raw)
}

func (e *EncodingError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == ErrKindEncoding
}

// checkArg rejects strings the engine would silently truncate.
func checkArg(what, s string) error {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return &Error{Kind: ErrKindInvalidArgument, Msg: fmt.Sprintf("%s %q contains NUL at byte %d", what, s, i)}
	}
	return nil
}
