package handle

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// locatedError carries the source position where it was created.
type locatedError struct {
	err  error
	file string
	line int
}

func (e *locatedError) Error() string { return e.err.Error() }
func (e *locatedError) Unwrap() error { return e.err }

// Caller returns the file and line of the caller skip frames above Caller.
func Caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "", 0
	}
	return file, line
}

// Wrap attaches the caller's file and line to err.
// Errors that already carry a location are returned unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var le *locatedError
	if errors.As(err, &le) {
		return err
	}
	file, line := Caller(1)
	return &locatedError{err: err, file: file, line: line}
}

// Errorf formats an error like fmt.Errorf and records the caller's location.
func Errorf(format string, args ...any) error {
	file, line := Caller(1)
	return &locatedError{err: fmt.Errorf(format, args...), file: file, line: line}
}

// Locate returns the position recorded by Wrap or Errorf.
func Locate(err error) (file string, line int, ok bool) {
	var le *locatedError
	if errors.As(err, &le) {
		return le.file, le.line, true
	}
	return "", 0, false
}

// StackSite finds the panic site in a goroutine stack dump as produced by
// runtime.Stack: the first frame after the panic call that does not belong
// to the runtime. Without a panic frame the first non-runtime frame is used.
func StackSite(stack []byte) (file string, line int) {
	type frame struct {
		fn   string
		file string
		line int
	}

	var frames []frame
	sc := bufio.NewScanner(bytes.NewReader(stack))
	var fn string
	for sc.Scan() {
		text := sc.Text()
		if strings.HasPrefix(text, "\t") {
			if fn == "" {
				continue
			}
			f, l := splitPosition(strings.TrimSpace(text))
			frames = append(frames, frame{fn: fn, file: f, line: l})
			fn = ""
			continue
		}
		if strings.HasPrefix(text, "goroutine ") || text == "" {
			fn = ""
			continue
		}
		fn = text
	}

	start := 0
	for i, f := range frames {
		if strings.HasPrefix(f.fn, "panic(") {
			start = i + 1
			break
		}
	}

	for _, f := range frames[start:] {
		if isRuntimeFrame(f.fn) {
			continue
		}
		return f.file, f.line
	}
	return "", 0
}

// splitPosition parses "/path/to/file.go:42 +0x1d".
func splitPosition(s string) (string, int) {
	if i := strings.LastIndex(s, " +0x"); i >= 0 {
		s = s[:i]
	}
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0
	}
	line, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s, 0
	}
	return s[:i], line
}

func isRuntimeFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") ||
		strings.HasPrefix(fn, "runtime/") ||
		strings.HasPrefix(fn, "panic(")
}
