// Package jsonl reads newline-delimited records without failing on a
// single oversized line.
package jsonl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrLineTooLong is passed to the callback for a line over the size limit.
// The line's bytes are discarded and reading continues.
var ErrLineTooLong = errors.New("jsonl: line too long")

const readBufferSize = 64 * 1024

// Each calls fn for every line of r, 1-based lineNo, with the trailing
// newline stripped. Lines longer than maxLine bytes are reported with a nil
// line and ErrLineTooLong. line is only valid for the duration of the call.
func Each(r io.Reader, maxLine int, fn func(lineNo int, line []byte, err error)) error {
	br := bufio.NewReaderSize(r, readBufferSize)

	var buf []byte
	lineNo := 0
	pending, tooLong := false, false
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			pending = true
			if !tooLong && len(buf)+len(chunk) <= maxLine+2 {
				buf = append(buf, chunk...)
			} else {
				tooLong = true
				buf = buf[:0]
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if pending {
			lineNo++
			line := bytes.TrimRight(buf, "\r\n")
			if tooLong || len(line) > maxLine {
				fn(lineNo, nil, ErrLineTooLong)
			} else {
				fn(lineNo, line, nil)
			}
		}
		buf, pending, tooLong = buf[:0], false, false

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading line %d: %w", lineNo+1, err)
		}
	}
}
