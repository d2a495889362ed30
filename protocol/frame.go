// Package protocol implements the Embedded Sass wire protocol: the
// length-prefixed framing codec and the translation between wire messages
// and the host's [sassvalue.Value] tree.
//
// The framing here is deliberately NOT the varint-delimited stream
// convention protobuf libraries usually ship a helper for. Each frame is a
// 4-byte little-endian unsigned length prefix followed by exactly that many
// bytes of protobuf payload.
// Resist the temptation to reach for a stock "read delimited protobuf"
// helper; it will assume varint framing and silently misparse the stream.
package protocol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameLength bounds a single payload to keep a corrupt length prefix
// from causing an unbounded allocation. The protocol itself imposes no
// smaller limit; this is a defensive upper bound only, well above any
// realistic stylesheet or compiled-CSS payload.
const maxFrameLength = 1 << 30 // 1 GiB

// FrameReader decodes a stream of length-prefixed frames from an
// [io.Reader]. ReadFrame blocks until a whole frame has been read or the
// underlying reader fails; it does not return partial frames. Callers
// drive it by calling ReadFrame in a loop, typically from a dedicated
// goroutine.
type FrameReader struct {
	r *bufio.Reader
}

// NewFrameReader wraps r for frame-oriented reads.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// ReadFrame reads one complete frame's payload. A truncated length header
// or a truncated payload (the stream ends mid-frame) surfaces as a fatal
// I/O error. A frame of length 0 is valid and returns an empty, non-nil
// payload.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(f.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("protocol: truncated frame length header: %w", err)
	}

	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxFrameLength {
		return nil, fmt.Errorf("protocol: frame length %d exceeds maximum %d", n, maxFrameLength)
	}

	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(f.r, payload); err != nil {
			return nil, fmt.Errorf("protocol: truncated frame payload: %w", err)
		}
	}
	return payload, nil
}

// FrameWriter encodes length-prefixed frames to an [io.Writer].
type FrameWriter struct {
	w io.Writer
}

// NewFrameWriter wraps w for frame-oriented writes.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes payload as a single frame: a 4-byte little-endian
// length prefix followed by payload itself. Writes after the peer has
// closed its end surface as ordinary errors (including a wrapped EPIPE);
// see the childproc package for how those are classified as recoverable
// protocol errors rather than panics.
func (f *FrameWriter) WriteFrame(payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := f.w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("protocol: writing frame length: %w", err)
	}
	if len(payload) > 0 {
		if _, err := f.w.Write(payload); err != nil {
			return fmt.Errorf("protocol: writing frame payload: %w", err)
		}
	}
	return nil
}
