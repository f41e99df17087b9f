package hwp

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	recordTagBits   = 10
	recordLevelBits = 10
	recordSizeBits  = 12

	// recordSizeEscape in the size field means the real size follows as a
	// separate 32-bit word.
	recordSizeEscape = 1<<recordSizeBits - 1

	// MaxTag and MaxLevel are the largest values the packed header can carry.
	MaxTag   Tag    = 1<<recordTagBits - 1
	MaxLevel uint16 = 1<<recordLevelBits - 1
)

// RecordHeader is the decoded tag/level/size triple that precedes each
// record payload.
type RecordHeader struct {
	Tag   Tag
	Level uint16
	Size  uint32
}

// unpackRecordHeader splits the packed header word. A size of
// recordSizeEscape means the caller must read the real size separately.
func unpackRecordHeader(word uint32) RecordHeader {
	return RecordHeader{
		Tag:   Tag(ValueRange(word, 0, recordTagBits-1)),
		Level: uint16(ValueRange(word, recordTagBits, recordTagBits+recordLevelBits-1)),
		Size:  ValueRange(word, recordTagBits+recordLevelBits, 31),
	}
}

// packRecordHeader builds the header word for h. escaped reports whether h.Size
// did not fit and must be written as a second word.
func packRecordHeader(h RecordHeader) (word uint32, escaped bool) {
	size := h.Size
	if size >= recordSizeEscape {
		size, escaped = recordSizeEscape, true
	}
	word = uint32(h.Tag)&uint32(MaxTag) |
		(uint32(h.Level)&uint32(MaxLevel))<<recordTagBits |
		size<<(recordTagBits+recordLevelBits)
	return word, escaped
}

// ReadRecordHeader reads one packed header word, and the escape word when the
// 12-bit size field is saturated.
func ReadRecordHeader(r io.Reader) (RecordHeader, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return RecordHeader{}, framingErr("record header", err)
	}
	h := unpackRecordHeader(binary.LittleEndian.Uint32(buf[:]))
	if h.Size == recordSizeEscape {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return RecordHeader{}, framingErr("extended record size", err)
		}
		h.Size = binary.LittleEndian.Uint32(buf[:])
	}
	return h, nil
}

// AppendRecordHeader appends the wire form of h to dst.
func AppendRecordHeader(dst []byte, h RecordHeader) []byte {
	word, escaped := packRecordHeader(h)
	dst = binary.LittleEndian.AppendUint32(dst, word)
	if escaped {
		dst = binary.LittleEndian.AppendUint32(dst, h.Size)
	}
	return dst
}

// AppendRecord appends the header and payload of rec to dst. rec.Size is
// taken from len(rec.Data).
func AppendRecord(dst []byte, rec Record) []byte {
	dst = AppendRecordHeader(dst, RecordHeader{Tag: rec.Tag, Level: rec.Level, Size: uint32(len(rec.Data))})
	return append(dst, rec.Data...)
}

func framingErr(what string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: truncated %s", ErrFraming, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrFraming, what, err)
}

// File header layout.
const (
	fileHeaderSize     = 256
	signatureSize      = 32
	signatureCheckSize = 17
	fileHeaderReserved = 207
)

// Signature is the ASCII text every FileHeader stream starts with.
const Signature = "HWP Document File"

type fileHeaderWire struct {
	Signature      [signatureSize]byte
	Version        [4]byte
	Flags          uint32
	License        uint32
	EncryptVersion uint32
	KOGLCountry    uint8
	Reserved       [fileHeaderReserved]byte
}

func readFileHeaderWire(b []byte) (fileHeaderWire, error) {
	var h fileHeaderWire
	if len(b) != fileHeaderSize {
		return h, fmt.Errorf("%w: file header is %d bytes, want %d", ErrFraming, len(b), fileHeaderSize)
	}
	copy(h.Signature[:], b[0:32])
	copy(h.Version[:], b[32:36])
	h.Flags = binary.LittleEndian.Uint32(b[36:40])
	h.License = binary.LittleEndian.Uint32(b[40:44])
	h.EncryptVersion = binary.LittleEndian.Uint32(b[44:48])
	h.KOGLCountry = b[48]
	copy(h.Reserved[:], b[49:256])
	return h, nil
}

func writeFileHeaderWire(h fileHeaderWire) []byte {
	buf := make([]byte, fileHeaderSize)
	copy(buf[0:32], h.Signature[:])
	copy(buf[32:36], h.Version[:])
	binary.LittleEndian.PutUint32(buf[36:40], h.Flags)
	binary.LittleEndian.PutUint32(buf[40:44], h.License)
	binary.LittleEndian.PutUint32(buf[44:48], h.EncryptVersion)
	buf[48] = h.KOGLCountry
	copy(buf[49:256], h.Reserved[:])
	return buf
}
