package fabric

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxFrameSize bounds a single direct-message frame. It leaves headroom
// above the protocol's own payload cap so envelope overhead never trips
// the transport limit.
const maxFrameSize = 1 << 20

var ErrFrameTooLarge = errors.New("frame exceeds size limit")

// writeFrame writes one length-prefixed frame: a big-endian uint32 length
// followed by the payload.
func writeFrame(w io.Writer, data []byte) error {
	if len(data) > maxFrameSize {
		return ErrFrameTooLarge
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// readFrame reads one length-prefixed frame.
func readFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(hdr[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
