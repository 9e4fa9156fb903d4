// Package errors extends the standard library errors with slog annotations and
// source locations so that failures can be logged with full context.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// AnnotatedError wraps an error with a message, slog annotations, and the
// program counter of the wrap site.
type AnnotatedError struct {
	err   error
	msg   string
	attrs []slog.Attr
	pc    uintptr
}

// Wrap annotates err with a message and optional slog attributes. The call
// site is recorded for logging with SlogError.
func Wrap(err error, message string, attrs ...slog.Attr) error {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:]) //nolint:mnd // skip runtime.Callers and Wrap.
	return &AnnotatedError{
		err:   err,
		msg:   message,
		attrs: attrs,
		pc:    pcs[0],
	}
}

// DecoratePanic converts a recovered panic value into an error pointing at the
// panic site instead of the recover site.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:]) //nolint:mnd // skip runtime.Callers and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])
	var pc uintptr
	for {
		frame, more := frames.Next()
		// Skip the runtime frames between the panic site and the deferred recover.
		if !strings.HasPrefix(frame.Function, "runtime.") {
			pc = frame.PC
			break
		}
		if !more {
			break
		}
	}
	return &AnnotatedError{
		err:   nil,
		msg:   fmt.Sprintf("panic: %v", excp),
		attrs: nil,
		pc:    pc,
	}
}

func (e *AnnotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *AnnotatedError) Unwrap() error {
	return e.err
}

// source resolves the wrap site to a file:line string.
func (e *AnnotatedError) source() string {
	if e.pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{e.pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}

// SlogError converts an error into a slog.Attr with the message, the source
// location of the outermost annotated error, and all annotations collected
// from the error chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attr is elided by slog.
	}

	var (
		attrs  []slog.Attr
		source string
	)
	collectAnnotations(err, &attrs, &source)

	args := []any{slog.String("message", err.Error())}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	if len(attrs) > 0 {
		anns := make([]any, 0, len(attrs))
		for _, attr := range attrs {
			anns = append(anns, attr)
		}
		args = append(args, slog.Group("annotations", anns...))
	}
	return slog.Group("error", args...)
}

// collectAnnotations walks the error tree depth-first gathering annotations.
// The source of the first annotated error encountered wins.
func collectAnnotations(err error, attrs *[]slog.Attr, source *string) {
	if err == nil {
		return
	}
	var annotated *AnnotatedError
	if stderrors.As(err, &annotated) {
		// As finds the shallowest AnnotatedError in the chain.
		if *source == "" {
			*source = annotated.source()
		}
	}
	if annotated, ok := err.(*AnnotatedError); ok { //nolint:errorlint // direct inspection on purpose.
		*attrs = append(*attrs, annotated.attrs...)
	}
	switch unwrapped := err.(type) { //nolint:errorlint // walking the tree, not matching.
	case interface{ Unwrap() error }:
		collectAnnotations(unwrapped.Unwrap(), attrs, source)
	case interface{ Unwrap() []error }:
		for _, e := range unwrapped.Unwrap() {
			collectAnnotations(e, attrs, source)
		}
	}
}

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}

// NewSentinel returns an error meant to be used as a sentinel value for
// errors.Is comparisons.
func NewSentinel(text string) error {
	return stderrors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join wraps the given errors into a single error.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
