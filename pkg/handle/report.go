package handle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Report describes one problem to display and log.
type Report struct {
	Err     error
	Type    string
	Message string
	File    string
	Kind    Kind
	Line    int
}

// FromError builds a fatal report for an error returned by a handler.
// The position comes from Wrap or Errorf when the error carries one.
func FromError(err error) Report {
	rep := Report{
		Kind: KindError,
		Err:  err,
		Type: TypeName(err),
	}
	if err != nil {
		rep.Message = err.Error()
	}
	if file, line, ok := Locate(err); ok {
		rep.File, rep.Line = file, line
	}
	return rep
}

// FromPanic builds a report for a recovered panic. The location is read
// from the stack dump.
func FromPanic(recovered any, stack []byte) Report {
	rep := Report{
		Kind:    KindPanic,
		Type:    KindPanic.String(),
		Message: fmt.Sprint(recovered),
	}
	if err, ok := recovered.(error); ok {
		rep.Err = err
		rep.Type = TypeName(err)
	}
	rep.File, rep.Line = StackSite(stack)
	return rep
}

// NewReport builds a report of the given kind with the caller's location.
func NewReport(kind Kind, err error) Report {
	rep := FromError(err).WithKind(kind)
	if rep.File == "" {
		rep.File, rep.Line = Caller(1)
	}
	return rep
}

// WithKind returns r reclassified as kind. Non-fatal reports about plain
// errors take the kind description as their type.
func (r Report) WithKind(kind Kind) Report {
	r.Kind = kind
	if !kind.Fatal() && (r.Err == nil || plainTypes[r.Type]) {
		r.Type = kind.Describe()
	}
	return r
}

// plainTypes are error types that say nothing beyond their message.
var plainTypes = map[string]bool{
	"*errors.errorString": true,
	"*errors.joinError":   true,
	"*fmt.wrapError":      true,
	"*fmt.wrapErrors":     true,
}

// TypeName returns the dynamic type of err, looking through location
// wrappers added by this package.
func TypeName(err error) string {
	if err == nil {
		return "<nil>"
	}
	var le *locatedError
	for errors.As(err, &le) {
		err = le.err
	}
	return fmt.Sprintf("%T", err)
}

// Title returns the report type, falling back to the kind name.
func (r Report) Title() string {
	if r.Type != "" {
		return r.Type
	}
	return r.Kind.String()
}

// RenderLog returns the multi-line log body:
//
//	[Type] *errors.errorString
//	[Info] something failed
//	[Line] 42
//	[File] /app/handlers.go
func RenderLog(r Report) string {
	var b strings.Builder
	b.WriteString("[Type] ")
	b.WriteString(r.Title())
	b.WriteString("\r\n[Info] ")
	b.WriteString(r.Message)
	b.WriteString("\r\n[Line] ")
	b.WriteString(strconv.Itoa(r.Line))
	b.WriteString("\r\n[File] ")
	b.WriteString(r.File)
	return b.String()
}

// RenderText returns the one-line trace form "<msg> in <file> on line <n>".
func RenderText(r Report) string {
	return fmt.Sprintf("%s in %s on line %d", r.Message, r.File, r.Line)
}

// headerValue flattens the log body for use as a header value.
func headerValue(r Report) string {
	v := strings.ReplaceAll(RenderLog(r), "\r\n", " ")
	return strings.Map(func(c rune) rune {
		if c == '\r' || c == '\n' {
			return ' '
		}
		return c
	}, v)
}
