package hwp

import (
	"errors"
	"fmt"
)

var (
	ErrContainer       = errors.New("hwp: invalid compound file")
	ErrStreamNotFound  = errors.New("hwp: stream not found")
	ErrFraming         = errors.New("hwp: invalid record framing")
	ErrSignature       = errors.New("hwp: invalid signature")
	ErrFormat          = errors.New("hwp: invalid format")
	ErrCrypto          = errors.New("hwp: decryption failed")
	ErrDecompress      = errors.New("hwp: decompression failed")
	ErrLimitExceeded   = errors.New("hwp: limit exceeded")
	ErrValidation      = errors.New("hwp: validation failed")
	ErrCursorExhausted = errors.New("hwp: record cursor exhausted")
)

// StreamError records which stream, and which record tag if known, a decode
// failure happened in.
type StreamError struct {
	Stream string
	Tag    Tag
	HasTag bool
	Err    error
}

func (e *StreamError) Error() string {
	if e.HasTag {
		return fmt.Sprintf("%s (stream %q, tag %s)", e.Err, e.Stream, e.Tag)
	}
	return fmt.Sprintf("%s (stream %q)", e.Err, e.Stream)
}

func (e *StreamError) Unwrap() error { return e.Err }

// streamErr attaches stream context to err unless it already carries some.
func streamErr(stream string, err error) error {
	if err == nil {
		return nil
	}
	var se *StreamError
	if errors.As(err, &se) {
		if se.Stream == "" {
			se.Stream = stream
		}
		return err
	}
	return &StreamError{Stream: stream, Err: err}
}

// tagErr attaches the record tag being decoded to err.
func tagErr(tag Tag, err error) error {
	if err == nil {
		return nil
	}
	var se *StreamError
	if errors.As(err, &se) {
		if !se.HasTag {
			se.Tag, se.HasTag = tag, true
		}
		return err
	}
	return &StreamError{Tag: tag, HasTag: true, Err: err}
}
