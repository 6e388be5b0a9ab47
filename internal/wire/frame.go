package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	headerSize = 4
	// MaxFrameSize bounds a single payload.
	MaxFrameSize = 16 << 20
)

// ErrFrameTooLarge reports a length prefix above MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// CheckFrameSize reports ErrFrameTooLarge when n bytes cannot be framed.
func CheckFrameSize(n int) error {
	if n > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	return nil
}

// WriteFrame writes payload prefixed by its length in one call. An oversized
// payload is rejected before anything is written.
func WriteFrame(w io.Writer, payload []byte) error {
	if err := CheckFrameSize(len(payload)); err != nil {
		return err
	}
	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerSize:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one frame. It returns io.EOF when the stream ends cleanly on
// a frame boundary and io.ErrUnexpectedEOF when it ends inside a frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// Stream frames messages over a duplex byte stream.
type Stream struct {
	r *bufio.Reader
	w io.Writer
}

// NewStream wraps rw for framed reads and writes.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{r: bufio.NewReader(rw), w: rw}
}

// Send writes one framed payload.
func (s *Stream) Send(payload []byte) error {
	return WriteFrame(s.w, payload)
}

// Receive reads one framed payload.
func (s *Stream) Receive() ([]byte, error) {
	return ReadFrame(s.r)
}

// Unrecoverable reports whether a read error leaves the stream out of sync.
func Unrecoverable(err error) bool {
	return err != nil && !errors.Is(err, ErrProtocol)
}
