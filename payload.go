package hwp

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// PayloadReader reads little-endian fields from a record payload. The first
// short read sets a sticky ErrFraming error; later reads return zero values.
// Check Err once after a group of reads.
type PayloadReader struct {
	data []byte
	off  int
	err  error
}

// NewPayloadReader reads data from its start.
func NewPayloadReader(data []byte) *PayloadReader {
	return &PayloadReader{data: data}
}

func (p *PayloadReader) take(n int) []byte {
	if p.err != nil {
		return nil
	}
	if n < 0 || n > len(p.data)-p.off {
		p.err = fmt.Errorf("%w: need %d payload bytes at offset %d, %d remain", ErrFraming, n, p.off, len(p.data)-p.off)
		return nil
	}
	b := p.data[p.off : p.off+n]
	p.off += n
	return b
}

// U8 reads a BYTE.
func (p *PayloadReader) U8() uint8 {
	b := p.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// U16 reads a little-endian WORD.
func (p *PayloadReader) U16() uint16 {
	b := p.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32 reads a little-endian DWORD.
func (p *PayloadReader) U32() uint32 {
	b := p.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// I32 reads a little-endian INT32.
func (p *PayloadReader) I32() int32 { return int32(p.U32()) }

// Bytes returns the next n bytes without copying.
func (p *PayloadReader) Bytes(n int) []byte { return p.take(n) }

// UTF16String reads a WORD length (in UTF-16 code units) followed by that many
// UTF-16LE code units.
func (p *PayloadReader) UTF16String() string {
	n := int(p.U16())
	b := p.take(2 * n)
	if b == nil {
		return ""
	}
	return decodeUTF16(b)
}

// Rest returns every unread byte.
func (p *PayloadReader) Rest() []byte { return p.take(p.Remaining()) }

// Remaining is the number of unread bytes.
func (p *PayloadReader) Remaining() int {
	if p.err != nil {
		return 0
	}
	return len(p.data) - p.off
}

// Err returns the first short-read error, if any.
func (p *PayloadReader) Err() error { return p.err }

func decodeUTF16(b []byte) string {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		// The decoder substitutes U+FFFD for bad sequences; an error here
		// means an odd byte count, which take() already rules out.
		return ""
	}
	return string(out)
}
