package hwp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHeaderWordRoundTrip(t *testing.T) {
	words := []uint32{
		0x00000000,
		0x00000042,
		0x0FFFFFFF,
		0xFFEFFFFF, // size 0xFFE, the largest unescaped size
		0x01C00C43,
		0x12345678,
	}
	for _, w := range words {
		h := unpackRecordHeader(w)
		require.NotEqual(t, uint32(recordSizeEscape), h.Size)
		got, escaped := packRecordHeader(h)
		assert.False(t, escaped)
		assert.Equal(t, w, got, "word %#08x", w)
	}
}

func TestRecordHeaderFields(t *testing.T) {
	h := unpackRecordHeader(0x01C00C43)
	assert.Equal(t, RecordHeader{Tag: TagParaText, Level: 3, Size: 0x01C}, h)
}

func TestReadRecordHeaderEscapedSize(t *testing.T) {
	for _, size := range []uint32{0, 7, 0xFFF, 0x10000, 0xFFFFFFFF} {
		var b []byte
		b = binary.LittleEndian.AppendUint32(b, uint32(TagParaText)|2<<10|0xFFF<<20)
		b = binary.LittleEndian.AppendUint32(b, size)
		b = append(b, 0xAA) // must not be consumed
		r := bytes.NewReader(b)
		h, err := ReadRecordHeader(r)
		require.NoError(t, err)
		assert.Equal(t, size, h.Size)
		assert.Equal(t, TagParaText, h.Tag)
		assert.Equal(t, uint16(2), h.Level)
		assert.Equal(t, 1, r.Len(), "exactly one extra word consumed")
	}
}

func TestAppendRecordHeaderEscapes(t *testing.T) {
	b := AppendRecordHeader(nil, RecordHeader{Tag: TagParaText, Size: 4094})
	assert.Len(t, b, 4)
	b = AppendRecordHeader(nil, RecordHeader{Tag: TagParaText, Size: 4095})
	require.Len(t, b, 8)
	assert.Equal(t, uint32(4095), binary.LittleEndian.Uint32(b[4:]))

	h, err := ReadRecordHeader(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, uint32(4095), h.Size)
}

func TestReadRecord(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5A}, 5000)
	stream := AppendRecord(nil, rec(TagParaText, 1, payload))
	r, err := ReadRecord(bytes.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, uint32(5000), r.Size)
	assert.Equal(t, payload, r.Data)

	_, err = ReadRecord(bytes.NewReader(stream[:len(stream)-1]))
	assert.ErrorIs(t, err, ErrFraming)

	_, err = ReadRecord(bytes.NewReader([]byte{1, 2}))
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadRecordsOversizedPayload(t *testing.T) {
	// Header claims 0xFFE bytes; only 3 follow.
	data := binary.LittleEndian.AppendUint32(nil, uint32(TagParaText)|0xFFE<<20)
	data = append(data, 1, 2, 3)
	assert.NotPanics(t, func() {
		_, err := ReadRecords(data, 0)
		require.ErrorIs(t, err, ErrFraming)
		var se *StreamError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, TagParaText, se.Tag)
	})

	// Escaped size larger than the stream.
	data = binary.LittleEndian.AppendUint32(nil, uint32(TagParaText)|0xFFF<<20)
	data = binary.LittleEndian.AppendUint32(data, 0xFFFFFFFF)
	_, err := ReadRecords(data, 0)
	assert.ErrorIs(t, err, ErrFraming)

	// Escape word itself truncated.
	_, err = ReadRecords(data[:6], 0)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadRecords(t *testing.T) {
	stream := appendRecords(
		rec(TagParaHeader, 0, []byte{1, 2, 3}),
		rec(TagParaText, 1, nil),
		rec(TagCtrlHeader, 1, bytes.Repeat([]byte{7}, 4096)),
	)
	recs, err := ReadRecords(stream, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []byte{1, 2, 3}, recs[0].Data)
	assert.Empty(t, recs[1].Data)
	assert.Equal(t, uint32(4096), recs[2].Size)

	t.Run("zero padding", func(t *testing.T) {
		recs, err := ReadRecords(append(stream, 0, 0), 0)
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})
	t.Run("cipher block padding", func(t *testing.T) {
		padded := append(bytes.Clone(stream), make([]byte, 12)...)
		recs, err := readRecordsPadded(padded, 0, 16)
		require.NoError(t, err)
		assert.Len(t, recs, 3)

		recs, err = ReadRecords(padded, 0)
		require.NoError(t, err)
		assert.Len(t, recs, 6, "four-byte zero runs are empty records to ReadRecords")
	})
	t.Run("garbage tail", func(t *testing.T) {
		_, err := ReadRecords(append(stream, 0, 1), 0)
		assert.ErrorIs(t, err, ErrFraming)
	})
	t.Run("record limit", func(t *testing.T) {
		_, err := ReadRecords(stream, 2)
		assert.ErrorIs(t, err, ErrLimitExceeded)
	})
	t.Run("empty", func(t *testing.T) {
		recs, err := ReadRecords(nil, 0)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestPayloadReader(t *testing.T) {
	b := []byte{0x01, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xFF, 0xFF, 0xFF, 0xFF}
	b = append(b, hwpString(t, "한글")...)
	p := NewPayloadReader(b)
	assert.Equal(t, uint8(1), p.U8())
	assert.Equal(t, uint16(0x1234), p.U16())
	assert.Equal(t, uint32(0x12345678), p.U32())
	assert.Equal(t, int32(-1), p.I32())
	assert.Equal(t, "한글", p.UTF16String())
	require.NoError(t, p.Err())
	assert.Zero(t, p.Remaining())

	// The first short read sticks.
	assert.Zero(t, p.U32())
	assert.ErrorIs(t, p.Err(), ErrFraming)
	assert.Zero(t, p.U8())
	assert.Nil(t, p.Bytes(0))
	assert.ErrorIs(t, p.Err(), ErrFraming)
}

func TestPayloadReaderTruncatedString(t *testing.T) {
	p := NewPayloadReader([]byte{0x05, 0x00, 'a', 0x00})
	assert.Equal(t, "", p.UTF16String())
	assert.ErrorIs(t, p.Err(), ErrFraming)
}
