package handle

// Kind classifies a reported problem.
type Kind int

// Report kinds, mirroring the classic runtime error levels.
const (
	KindError Kind = iota + 1
	KindWarning
	KindNotice
	KindPanic
	KindUserError
	KindUserWarning
	KindUserNotice
	KindRecoverable
	KindDeprecated
)

var kindNames = map[Kind]string{
	KindError:       "Error",
	KindWarning:     "Warning",
	KindNotice:      "Notice",
	KindPanic:       "Panic",
	KindUserError:   "User Error",
	KindUserWarning: "User Warning",
	KindUserNotice:  "User Notice",
	KindRecoverable: "Recoverable Error",
	KindDeprecated:  "Deprecated",
}

var kindDescriptions = map[Kind]string{
	KindError:       "Fatal run-time error. Execution of the request is halted.",
	KindWarning:     "Run-time warning. Execution of the request is not halted.",
	KindNotice:      "Run-time notice. Something happened that could indicate an error.",
	KindPanic:       "Unrecovered panic. The request was aborted while running.",
	KindUserError:   "User-generated error message.",
	KindUserWarning: "User-generated warning message.",
	KindUserNotice:  "User-generated notice message.",
	KindRecoverable: "Catchable fatal error. A probably dangerous error occurred.",
	KindDeprecated:  "Run-time notice about code that will not work in future versions.",
}

// String returns the short name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Describe returns a human readable explanation of the kind.
func (k Kind) Describe() string {
	if d, ok := kindDescriptions[k]; ok {
		return d
	}
	return "Unknown error type."
}

// Fatal reports whether the kind terminates the request.
func (k Kind) Fatal() bool {
	switch k {
	case KindError, KindPanic, KindUserError, KindRecoverable:
		return true
	default:
		return false
	}
}
