package fabric

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundtrip(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeFrame(&buf, []byte("payload")))

	got, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestFrameEmpty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeFrame(&buf, nil))

	got, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("payload")))
	truncated := buf.Bytes()[:buf.Len()-3]

	_, err := readFrame(bytes.NewReader(truncated))
	assert.Error(t, err)
}

func TestReadFrameOversizeHeader(t *testing.T) {
	hdr := []byte{0xff, 0xff, 0xff, 0xff}

	_, err := readFrame(bytes.NewReader(hdr))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestWriteFrameOversize(t *testing.T) {
	var buf bytes.Buffer

	err := writeFrame(&buf, make([]byte, maxFrameSize+1))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Zero(t, buf.Len(), "nothing should be written for an oversize frame")
}
