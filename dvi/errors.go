package dvi

import "fmt"

// ErrorKind classifies the fatal conditions that abort a decode.
type ErrorKind int

const (
	ErrTruncatedInput ErrorKind = iota
	ErrBadPreamble
	ErrBadPostambleMarker
	ErrBadPostamblePointer
	ErrInsufficientTrailer
	ErrMissingIDByte
	ErrNonBopWhereBopExpected
	ErrIllegalCommandInSkip
	ErrNonpositiveUnits
	ErrNonpositiveMagnification
	ErrPageEndedWithoutEop
	ErrBopWithinPage
	ErrPreOrPostWithinPage
	ErrFontAssetLoad
	ErrStackOverflow
)

// String returns the wire-level name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrTruncatedInput:
		return "truncated_input"
	case ErrBadPreamble:
		return "bad_preamble"
	case ErrBadPostambleMarker:
		return "bad_postamble_marker"
	case ErrBadPostamblePointer:
		return "bad_postamble_pointer"
	case ErrInsufficientTrailer:
		return "insufficient_trailer"
	case ErrMissingIDByte:
		return "missing_id_byte"
	case ErrNonBopWhereBopExpected:
		return "non_bop_where_bop_expected"
	case ErrIllegalCommandInSkip:
		return "illegal_command_in_skip"
	case ErrNonpositiveUnits:
		return "nonpositive_numerator_or_denominator"
	case ErrNonpositiveMagnification:
		return "nonpositive_magnification"
	case ErrPageEndedWithoutEop:
		return "page_ended_without_eop"
	case ErrBopWithinPage:
		return "bop_within_page"
	case ErrPreOrPostWithinPage:
		return "pre_or_post_within_page"
	case ErrFontAssetLoad:
		return "font_asset_load_failure"
	case ErrStackOverflow:
		return "stack_overflow"
	}
	return "unknown"
}

// DecodeError is a fatal condition encountered while decoding. It
// unwinds to the top-level decode call; the document built so far is
// discarded.
type DecodeError struct {
	Kind   ErrorKind
	Offset int // byte offset of the offending opcode, -1 if unknown
	Msg    string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("bad DVI file: %s at byte %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("bad DVI file: %s: %s", e.Kind, e.Msg)
}

func badDVI(kind ErrorKind, offset int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// diagSink accumulates non-fatal diagnostics. Every diagnostic is a
// one-line free-form string, forwarded to the caller-provided sink (if
// any) and to the package tracer. Decoding continues after each one with
// the corrective action stated at the call site.
type diagSink struct {
	sink  func(string)
	lines []string
}

func (d *diagSink) warnf(offset int, format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if offset >= 0 {
		line = fmt.Sprintf("%d: %s", offset, line)
	}
	d.lines = append(d.lines, line)
	if d.sink != nil {
		d.sink(line)
	}
	tracer().Infof(line)
}

func (d *diagSink) hasWarnings() bool {
	return len(d.lines) > 0
}
