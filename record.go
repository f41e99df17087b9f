package hwp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Record is one tag/level/size/payload unit of a record stream.
//
// Children are not stored on the wire: they are the run of following records
// whose Level is greater than this record's Level. Use RecordCursor to
// rebuild them.
//
// Records returned by ReadRecords share Data with the stream buffer they were
// decoded from.
type Record struct {
	Tag   Tag
	Level uint16
	Size  uint32
	Data  []byte
}

// Reader returns a PayloadReader over the record payload.
func (r Record) Reader() *PayloadReader { return NewPayloadReader(r.Data) }

// ReadRecord decodes one record from r, reading exactly Size payload bytes.
func ReadRecord(r io.Reader) (Record, error) {
	h, err := ReadRecordHeader(r)
	if err != nil {
		return Record{}, err
	}
	// Read through a LimitReader so a forged size cannot force a large
	// allocation before the stream runs out.
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, int64(h.Size)))
	if err != nil {
		return Record{}, tagErr(h.Tag, fmt.Errorf("%w: reading payload: %v", ErrFraming, err))
	}
	if n != int64(h.Size) {
		return Record{}, tagErr(h.Tag, fmt.Errorf("%w: payload declares %d bytes, %d available", ErrFraming, h.Size, n))
	}
	return Record{Tag: h.Tag, Level: h.Level, Size: h.Size, Data: buf.Bytes()}, nil
}

// ReadRecords decodes every record in data in wire order. Fewer than four
// trailing zero bytes are treated as padding. maxRecords <= 0 means no limit.
func ReadRecords(data []byte, maxRecords int) ([]Record, error) {
	return readRecordsPadded(data, maxRecords, 4)
}

// readRecordsPadded is ReadRecords with a trailing all-zero tail shorter than
// pad treated as padding. Decrypted ViewText sections carry up to one cipher
// block of it.
func readRecordsPadded(data []byte, maxRecords, pad int) ([]Record, error) {
	var out []Record
	off := 0
	for off < len(data) {
		if maxRecords > 0 && len(out) >= maxRecords {
			return nil, fmt.Errorf("%w: more than %d records", ErrLimitExceeded, maxRecords)
		}
		if len(data)-off < pad && allZero(data[off:]) {
			break
		}
		rec, n, err := decodeRecordAt(data, off)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		off += n
	}
	return out, nil
}

// decodeRecordAt decodes the record starting at data[off:] without copying
// its payload. It returns the number of bytes consumed.
func decodeRecordAt(data []byte, off int) (Record, int, error) {
	rest := data[off:]
	if len(rest) < 4 {
		return Record{}, 0, fmt.Errorf("%w: %d trailing bytes at offset %d", ErrFraming, len(rest), off)
	}
	h := unpackRecordHeader(binary.LittleEndian.Uint32(rest))
	n := 4
	if h.Size == recordSizeEscape {
		if len(rest) < 8 {
			return Record{}, 0, tagErr(h.Tag, fmt.Errorf("%w: truncated extended size at offset %d", ErrFraming, off))
		}
		h.Size = binary.LittleEndian.Uint32(rest[4:])
		n = 8
	}
	if uint64(h.Size) > uint64(len(rest)-n) {
		return Record{}, 0, tagErr(h.Tag, fmt.Errorf("%w: payload declares %d bytes, %d remain at offset %d", ErrFraming, h.Size, len(rest)-n, off))
	}
	end := n + int(h.Size)
	rec := Record{Tag: h.Tag, Level: h.Level, Size: h.Size, Data: rest[n:end:end]}
	return rec, end, nil
}

// allZero reports whether b holds only zero padding.
func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
