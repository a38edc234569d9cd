package subprocess

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"io"

	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
)

// truncatedPreview is how many bytes of an oversized line are preserved
// in the LineTooLongError for diagnostics.
const truncatedPreview = 256

// lineScanner reads newline-delimited frames with a hard per-line cap.
//
// bufio.Scanner stops permanently on ErrTooLong, which would turn one
// oversized line into a fatal stream error. This scanner instead reports
// the oversized line as a LineTooLongError and resumes at the byte after
// its newline, so a single huge frame cannot poison the rest of the stream.
type lineScanner struct {
	r   *bufio.Reader
	max int
}

// newLineScanner creates a scanner capping lines at maxBytes of content,
// excluding the line terminator. maxBytes must be positive.
func newLineScanner(r io.Reader, maxBytes int) *lineScanner {
	return &lineScanner{
		r:   bufio.NewReader(r),
		max: maxBytes,
	}
}

// ReadLine returns the next line with its terminator stripped. A trailing
// carriage return is removed as well. The returned slice is only valid
// until the next call.
//
// Lines above the cap return a LineTooLongError after the whole line has
// been consumed; the next call reads the following line cleanly. io.EOF
// is returned once input is exhausted.
func (s *lineScanner) ReadLine() ([]byte, error) {
	var (
		buf      []byte
		overflow bool
	)

	for {
		frag, err := s.r.ReadSlice('\n')

		if !overflow {
			// Keep at most max content bytes plus a CRLF terminator;
			// anything past that is consumed but not retained.
			if len(buf)+len(frag) <= s.max+2 {
				buf = append(buf, frag...)
			} else {
				keep := min(len(frag), s.max+2-len(buf))
				buf = append(buf, frag[:keep]...)
				overflow = true
			}
		}

		switch {
		case err == nil:
			return s.finish(buf, overflow, false)

		case stderrors.Is(err, bufio.ErrBufferFull):
			// Line continues past the internal buffer, keep reading.

		case stderrors.Is(err, io.EOF):
			if len(buf) == 0 && !overflow {
				return nil, io.EOF
			}

			return s.finish(buf, overflow, true)

		default:
			return nil, err
		}
	}
}

// finish strips the terminator and applies the size cap to a completed line.
func (s *lineScanner) finish(buf []byte, overflow, atEOF bool) ([]byte, error) {
	line := buf
	if !atEOF {
		line = bytes.TrimSuffix(line, []byte("\n"))
	}

	line = bytes.TrimSuffix(line, []byte("\r"))

	if overflow || len(line) > s.max {
		preview := line
		if len(preview) > truncatedPreview {
			preview = preview[:truncatedPreview]
		}

		return nil, &errors.LineTooLongError{
			Limit:     s.max,
			Truncated: string(preview),
		}
	}

	return line, nil
}
