package outcome

// Key is a short machine-readable error code, paired with a human message in
// each ledger entry. Callers compare against these constants rather than
// string-matching messages.
type Key string

const (
	KeyNotFound     Key = "not_found"
	KeyInvalid      Key = "invalid"
	KeyMissing      Key = "missing"
	KeyBlank        Key = "blank"
	KeyUnsupported  Key = "unsupported"
	KeyRuntime      Key = "runtime"
	KeyTypeMismatch Key = "type_mismatch"

	// KeyUnknown marks an error that escaped domain logic without being an
	// intentional halt. Entries with this key are recorded for diagnostics
	// and the underlying error is still returned to the caller.
	KeyUnknown Key = "unknown"
)

// CategoryRuntime is the reserved category for errors raised from inside
// domain logic rather than from input shape. Every other category is an
// input name.
const CategoryRuntime = "runtime"
