package loader

// reader.go holds the streaming readers that sit between an upload and the
// parsers:
//
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?'
//   - countingReader: tracks bytes read and stops once a limit is passed
//
// decodeText stacks BOM detection and sanitization for the CSV engine.

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadAll reads an upload into memory, failing with a *SizeLimitError as
// soon as more than max bytes have been seen. A max of zero or less
// disables the limit.
func ReadAll(r io.Reader, max int64) ([]byte, error) {
	cr := newCountingReader(r, max)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, cr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CheckSize rejects inputs larger than max before any parsing starts.
func CheckSize(n, max int64) error {
	if max > 0 && n > max {
		return &SizeLimitError{Size: n, Limit: max}
	}
	return nil
}

// decodeText turns raw CSV bytes into a UTF-8 stream. A UTF-16 (LE or BE)
// or UTF-8 byte order mark selects the decoder and is stripped; without a
// mark the input is taken as UTF-8. Invalid sequences never reach the CSV
// parser.
func decodeText(r io.Reader) io.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	return newUTF8Sanitizer(decoded)
}

// utf8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes with
// '?' on the fly, keeping memory use at the size of the read buffer.
type utf8Sanitizer struct {
	reader io.Reader

	// Leftover bytes from the previous read that may start a multi-byte rune
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset

	if n == 0 {
		return 0, err
	}

	if isAllASCII(p[:n]) {
		return n, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes ready to
// hand out. Unless atEOF, an incomplete rune at the end is held back for
// the next call.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			// '?' keeps the rewrite in place; U+FFFD would need 3 bytes
			data[write] = '?'
			write++
			read++
		} else {
			copy(data[write:], data[read:read+size])
			write += size
			read += size
		}
	}

	return write
}

// countingReader tracks bytes read. With a positive limit it returns a
// *SizeLimitError once more than limit bytes have been read.
type countingReader struct {
	reader    io.Reader
	BytesRead int64
	limit     int64
}

func newCountingReader(r io.Reader, limit int64) *countingReader {
	return &countingReader{reader: r, limit: limit}
}

// Read implements io.Reader.
func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.limit > 0 && r.BytesRead > r.limit {
		return n, &SizeLimitError{Size: r.BytesRead, Limit: r.limit}
	}
	return n, err
}
