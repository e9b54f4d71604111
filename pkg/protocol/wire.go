package protocol

import (
	"encoding/binary"
	"errors"
)

// Wire v1.3 constants.
const (
	// WireMagic identifies Six7 wire records ("SIX7").
	WireMagic = 0x53495837

	// WireVersion is the current protocol version (v1.3).
	WireVersion = 0x0103

	// WireHeaderSize is the fixed header length in bytes.
	WireHeaderSize = 8
)

// Wire record types.
const (
	WireTypeDirect uint16 = 0x0001
	WireTypeGroup  uint16 = 0x0002
	WireTypeAck    uint16 = 0x0003
)

var (
	ErrShortBuffer    = errors.New("buffer too short")
	ErrInvalidMagic   = errors.New("invalid protocol magic")
	ErrInvalidVersion = errors.New("unsupported protocol version")
	ErrWrongType      = errors.New("unexpected record type")
	ErrFieldTooLong   = errors.New("field exceeds buffer")
)

// putHeader writes the 8-byte record header.
func putHeader(buf []byte, recordType uint16) {
	binary.BigEndian.PutUint32(buf[0:4], WireMagic)
	binary.BigEndian.PutUint16(buf[4:6], WireVersion)
	binary.BigEndian.PutUint16(buf[6:8], recordType)
}

// checkHeader validates the record header and expected type.
func checkHeader(buf []byte, recordType uint16) error {
	if len(buf) < WireHeaderSize {
		return ErrShortBuffer
	}
	if binary.BigEndian.Uint32(buf[0:4]) != WireMagic {
		return ErrInvalidMagic
	}
	if binary.BigEndian.Uint16(buf[4:6]) != WireVersion {
		return ErrInvalidVersion
	}
	if binary.BigEndian.Uint16(buf[6:8]) != recordType {
		return ErrWrongType
	}
	return nil
}

// readStr16 reads a uint16-length-prefixed string at offset.
func readStr16(buf []byte, offset int) (string, int, error) {
	if len(buf) < offset+2 {
		return "", 0, ErrShortBuffer
	}
	n := int(binary.BigEndian.Uint16(buf[offset:]))
	offset += 2
	if len(buf) < offset+n {
		return "", 0, ErrFieldTooLong
	}
	return string(buf[offset : offset+n]), offset + n, nil
}

// readStr32 reads a uint32-length-prefixed string at offset.
func readStr32(buf []byte, offset int) (string, int, error) {
	if len(buf) < offset+4 {
		return "", 0, ErrShortBuffer
	}
	n := int(binary.BigEndian.Uint32(buf[offset:]))
	offset += 4
	if n < 0 || len(buf) < offset+n {
		return "", 0, ErrFieldTooLong
	}
	return string(buf[offset : offset+n]), offset + n, nil
}

func putStr16(buf []byte, offset int, s string) int {
	binary.BigEndian.PutUint16(buf[offset:], uint16(len(s)))
	offset += 2
	copy(buf[offset:], s)
	return offset + len(s)
}

func putStr32(buf []byte, offset int, s string) int {
	binary.BigEndian.PutUint32(buf[offset:], uint32(len(s)))
	offset += 4
	copy(buf[offset:], s)
	return offset + len(s)
}

// EncodeDirect encodes a direct message in the current wire format.
//
// Layout after the header: id (u16 len-prefixed), kind tag (u16
// len-prefixed), timestamp (u64), content (u32 len-prefixed).
func EncodeDirect(m *DirectMessage) []byte {
	size := WireHeaderSize + 2 + len(m.ID) + 2 + len(m.MessageType) + 8 + 4 + len(m.Content)
	buf := make([]byte, size)
	putHeader(buf, WireTypeDirect)
	offset := WireHeaderSize

	offset = putStr16(buf, offset, m.ID)
	offset = putStr16(buf, offset, m.MessageType)

	binary.BigEndian.PutUint64(buf[offset:], uint64(m.Timestamp))
	offset += 8

	putStr32(buf, offset, m.Content)
	return buf
}

// DecodeDirect decodes a direct message from the current wire format.
func DecodeDirect(buf []byte) (*DirectMessage, error) {
	if err := checkHeader(buf, WireTypeDirect); err != nil {
		return nil, err
	}
	offset := WireHeaderSize

	m := &DirectMessage{}
	var err error

	if m.ID, offset, err = readStr16(buf, offset); err != nil {
		return nil, err
	}
	if m.MessageType, offset, err = readStr16(buf, offset); err != nil {
		return nil, err
	}

	if len(buf) < offset+8 {
		return nil, ErrShortBuffer
	}
	m.Timestamp = int64(binary.BigEndian.Uint64(buf[offset:]))
	offset += 8

	if m.Content, _, err = readStr32(buf, offset); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeGroup encodes a group message in the current wire format.
//
// Layout after the header: id (u16 len-prefixed), kind tag (u16
// len-prefixed), group id (u16 len-prefixed), timestamp (u64), content
// (u32 len-prefixed).
func EncodeGroup(m *GroupMessage) []byte {
	size := WireHeaderSize + 2 + len(m.ID) + 2 + len(m.MessageType) + 2 + len(m.GroupID) + 8 + 4 + len(m.Content)
	buf := make([]byte, size)
	putHeader(buf, WireTypeGroup)
	offset := WireHeaderSize

	offset = putStr16(buf, offset, m.ID)
	offset = putStr16(buf, offset, m.MessageType)
	offset = putStr16(buf, offset, m.GroupID)

	binary.BigEndian.PutUint64(buf[offset:], uint64(m.Timestamp))
	offset += 8

	putStr32(buf, offset, m.Content)
	return buf
}

// DecodeGroup decodes a group message from the current wire format.
func DecodeGroup(buf []byte) (*GroupMessage, error) {
	if err := checkHeader(buf, WireTypeGroup); err != nil {
		return nil, err
	}
	offset := WireHeaderSize

	m := &GroupMessage{}
	var err error

	if m.ID, offset, err = readStr16(buf, offset); err != nil {
		return nil, err
	}
	if m.MessageType, offset, err = readStr16(buf, offset); err != nil {
		return nil, err
	}
	if m.GroupID, offset, err = readStr16(buf, offset); err != nil {
		return nil, err
	}

	if len(buf) < offset+8 {
		return nil, ErrShortBuffer
	}
	m.Timestamp = int64(binary.BigEndian.Uint64(buf[offset:]))
	offset += 8

	if m.Content, _, err = readStr32(buf, offset); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeAck encodes an acknowledgment. The encoding is infallible: the
// record is a fixed 9 bytes (header plus one flag byte).
func EncodeAck(a AckResponse) []byte {
	buf := make([]byte, WireHeaderSize+1)
	putHeader(buf, WireTypeAck)
	if a.Ack {
		buf[WireHeaderSize] = 1
	}
	return buf
}

// DecodeAck decodes an acknowledgment record.
func DecodeAck(buf []byte) (AckResponse, error) {
	if err := checkHeader(buf, WireTypeAck); err != nil {
		return AckResponse{}, err
	}
	if len(buf) < WireHeaderSize+1 {
		return AckResponse{}, ErrShortBuffer
	}
	return AckResponse{Ack: buf[WireHeaderSize] == 1}, nil
}
