package command

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// DefaultMaxLineLength is the longest physical line a LineSource accepts.
const DefaultMaxLineLength = 4096

// LineSource delivers one physical line at a time from a stream and supports
// a single line of pushback.
//
// Typical use:
//
//	for src.Next() {
//	    line := src.Line()
//	    ...
//	}
//	if err := src.Err(); err != nil {
//	    ...
//	}
type LineSource struct {
	scanner *bufio.Scanner
	line    string
	count   int64
	offset  int64
	hasLine bool
	replay  bool
	err     error
	done    bool
}

// NewLineSource returns a LineSource reading r. Lines longer than maxLen bytes
// are reported as a format error; maxLen <= 0 selects DefaultMaxLineLength.
func NewLineSource(r io.Reader, maxLen int) *LineSource {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}
	s := &LineSource{scanner: bufio.NewScanner(r)}

	// The scanner needs room for the line terminator as well as the line.
	initial := 4096
	if initial > maxLen+2 {
		initial = maxLen + 2
	}
	s.scanner.Buffer(make([]byte, 0, initial), maxLen+2)
	s.scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := splitLine(data, atEOF)
		if token == nil {
			return advance, token, err
		}
		n := len(token)
		if n > 0 && token[n-1] == '\r' {
			n--
		}
		if n > maxLen {
			return 0, nil, bufio.ErrTooLong
		}
		s.offset += int64(advance)
		return advance, token, err
	})
	return s
}

// splitLine is bufio.ScanLines without the trailing carriage-return removal,
// which Next does itself so the byte offset stays exact.
func splitLine(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Next advances to the next line, replaying the current line if Unread was
// called. It returns false at end of input or on error; Err distinguishes
// the two.
func (s *LineSource) Next() bool {
	if s.replay {
		s.replay = false
		return true
	}
	if s.done {
		return false
	}
	if !s.scanner.Scan() {
		s.done = true
		s.hasLine = false
		if err := s.scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				s.err = &Error{Kind: KindFormat, Line: s.count + 1, Msg: "line too long"}
			} else {
				s.err = &Error{Kind: KindIO, Line: s.count + 1, Msg: "read failed", Err: err}
			}
		}
		return false
	}
	raw := s.scanner.Bytes()
	if n := len(raw); n > 0 && raw[n-1] == '\r' {
		raw = raw[:n-1]
	}
	s.line = string(raw)
	s.count++
	s.hasLine = true
	return true
}

// Line returns the current line, without its line terminator.
func (s *LineSource) Line() string {
	return s.line
}

// Unread arranges for the current line to be returned again by the next call
// to Next. Only one line of pushback is available.
func (s *LineSource) Unread() error {
	if !s.hasLine || s.replay {
		return ErrInvalidUnread
	}
	s.replay = true
	return nil
}

// Err returns the first non-EOF error encountered.
func (s *LineSource) Err() error {
	return s.err
}

// Count returns the number of physical lines read so far. Replayed lines are
// not counted again.
func (s *LineSource) Count() int64 {
	return s.count
}

// Offset returns the number of bytes consumed by fresh reads so far.
func (s *LineSource) Offset() int64 {
	return s.offset
}
