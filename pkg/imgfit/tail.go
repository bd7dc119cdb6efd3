// ABOUTME: Forward-only tail capture over a seekable stream with a two-slot ring
// ABOUTME: Memory stays at 2x window regardless of length; entry position is always restored

package imgfit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Tail is the trailing window of a stream captured by CaptureTail.
type Tail struct {
	slots  [2][]byte
	cur    int // slot holding the most recent chunk
	window int
	last   int
	total  int64
}

// CaptureTail reads rs forward in chunks of windowSize until a short read,
// keeping only the last two chunks. The read position is restored to its
// value at entry before returning, on success and on failure.
func CaptureTail(rs io.ReadSeeker, windowSize int) (tail Tail, err error) {
	if rs == nil {
		return Tail{}, invalidArg("nil stream")
	}
	if windowSize <= 0 {
		return Tail{}, invalidArg("window size %d", windowSize)
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Tail{}, fmt.Errorf("reading stream position: %w", err)
	}
	defer func() {
		if _, serr := rs.Seek(start, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("restoring stream position: %w", serr)
		}
	}()

	tail = Tail{window: windowSize}
	tail.slots[0] = make([]byte, windowSize)
	tail.slots[1] = make([]byte, windowSize)

	for {
		n, rerr := io.ReadFull(rs, tail.slots[tail.cur])
		tail.total += int64(n)
		tail.last = n
		if rerr != nil && !errors.Is(rerr, io.EOF) && !errors.Is(rerr, io.ErrUnexpectedEOF) {
			return Tail{}, fmt.Errorf("reading stream: %w", rerr)
		}
		if n < windowSize {
			return tail, nil
		}
		tail.cur ^= 1
	}
}

// Total is the number of bytes read from the entry position to end of stream.
func (t Tail) Total() int64 { return t.total }

// LastChunkLen is the size of the final (short) read, possibly zero.
func (t Tail) LastChunkLen() int { return t.last }

// Window is the chunk size the tail was captured with.
func (t Tail) Window() int { return t.window }

// Bytes returns the older slot followed by the valid part of the newest one.
// A missing older chunk reads as window zero bytes, so the result is always
// Window()+LastChunkLen() long.
func (t Tail) Bytes() []byte {
	if t.window == 0 {
		return nil
	}
	out := make([]byte, 0, t.window+t.last)
	out = append(out, t.slots[t.cur^1]...)
	return append(out, t.slots[t.cur][:t.last]...)
}

// Suffix returns the last n bytes of the logical tail window, read at offset
// Window()+LastChunkLen()-n of Bytes(). n is clamped to the window length.
func (t Tail) Suffix(n int) []byte {
	buf := t.Bytes()
	if n > len(buf) {
		n = len(buf)
	}
	if n <= 0 {
		return nil
	}
	off := t.window + t.last - n
	return buf[off : off+n]
}

// Buffer drains a non-seekable source into memory so it can be sniffed.
// Callers holding pipes or network bodies must do this before Classify.
func Buffer(r io.Reader) (*bytes.Reader, error) {
	if r == nil {
		return nil, invalidArg("nil reader")
	}
	if rs, ok := r.(*bytes.Reader); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering stream: %w", err)
	}
	return bytes.NewReader(data), nil
}
