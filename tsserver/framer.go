package tsserver

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync/atomic"
)

// Framer splits the child's stdout into lines. It is created once per
// session and ends when the source closes.
//
// Lines that cannot start a JSON object are skipped before decoding: blank
// lines, banners, and the Content-Length headers tsserver writes ahead of
// each message. Every protocol message is an object, so the filter never
// drops one.
//
// A line longer than the maximum message size is discarded up to its
// terminator and counted; the next line is read normally.
type Framer struct {
	r       *bufio.Reader
	maxSize int
	buf     []byte
	err     error

	skipped   atomic.Int64
	oversized atomic.Int64

	// onOversized observes the byte length of each discarded line.
	onOversized func(n int)
}

// NewFramer creates a Framer reading from r. Lines longer than maxSize
// bytes, excluding the terminator, are dropped.
func NewFramer(r io.Reader, maxSize int) *Framer {
	if maxSize <= 0 {
		maxSize = defaultMaxMessageSize
	}
	return &Framer{
		r:       bufio.NewReaderSize(r, min(64*1024, maxSize)),
		maxSize: maxSize,
	}
}

// Next returns the next candidate line with its terminator ("\n" or
// "\r\n") stripped. It returns false once the source is exhausted; check
// Err afterwards. The returned slice is only valid until the next call.
func (f *Framer) Next() ([]byte, bool) {
	for f.err == nil {
		line, n, err := f.readLine()
		if err != nil {
			f.err = err
		}
		switch {
		case n == 0 && err != nil:
			// Nothing left before EOF or the read error.
		case line == nil:
			f.oversized.Add(1)
			if f.onOversized != nil {
				f.onOversized(n)
			}
		case !looksLikeObject(line):
			f.skipped.Add(1)
		default:
			return line, true
		}
	}
	return nil, false
}

// readLine reads through the next '\n' and returns the line without its
// terminator along with the number of bytes consumed. An over-long line is
// consumed in full but returned as nil. A final line without a terminator
// is returned together with the error that ended it.
func (f *Framer) readLine() ([]byte, int, error) {
	f.buf = f.buf[:0]
	n := 0
	tooLong := false
	for {
		chunk, err := f.r.ReadSlice('\n')
		n += len(chunk)
		if !tooLong {
			f.buf = append(f.buf, chunk...)
			if len(trimEOL(f.buf)) > f.maxSize {
				tooLong = true
				f.buf = f.buf[:0]
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if tooLong {
			return nil, n, err
		}
		return trimEOL(f.buf), n, err
	}
}

// Err returns the first non-EOF read error.
func (f *Framer) Err() error {
	if errors.Is(f.err, io.EOF) {
		return nil
	}
	return f.err
}

// Skipped returns how many lines the pre-filter dropped.
func (f *Framer) Skipped() int64 {
	return f.skipped.Load()
}

// Oversized returns how many lines were dropped for exceeding the maximum
// message size.
func (f *Framer) Oversized() int64 {
	return f.oversized.Load()
}

// trimEOL strips a trailing "\n" and then a trailing "\r".
func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'})
}

// looksLikeObject reports whether the first non-blank byte is '{'.
func looksLikeObject(line []byte) bool {
	line = bytes.TrimLeft(line, " \t\uFEFF")
	return len(line) > 0 && line[0] == '{'
}
