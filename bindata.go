package hwp

import (
	"fmt"
	"strings"
)

type BinDataKind uint8

const (
	BinDataLink BinDataKind = iota
	BinDataEmbedding
	BinDataStorage
)

func (k BinDataKind) String() string {
	switch k {
	case BinDataLink:
		return "link"
	case BinDataEmbedding:
		return "embedding"
	case BinDataStorage:
		return "storage"
	}
	return fmt.Sprintf("BinDataKind(%d)", uint8(k))
}

type CompressMode uint8

const (
	// CompressDefault follows the file header's compressed flag.
	CompressDefault CompressMode = iota
	CompressAlways
	CompressNever
)

type BinDataStatus uint8

const (
	BinDataInitial BinDataStatus = iota
	BinDataSuccess
	BinDataFailed
	BinDataIgnored
)

// BinData describes one binary item declared in DocInfo.
type BinData struct {
	Kind         BinDataKind
	CompressMode CompressMode
	Status       BinDataStatus

	// Link items only.
	AbsolutePath string
	RelativePath string

	// Embedding and storage items only.
	ID uint16
	// Embedding items only.
	Extension string
}

func decodeBinData(rec Record) (BinData, error) {
	p := rec.Reader()
	props := p.U16()
	b := BinData{
		Kind:         BinDataKind(ValueRange(props, 0, 3)),
		CompressMode: CompressMode(ValueRange(props, 4, 5)),
		Status:       BinDataStatus(ValueRange(props, 8, 9)),
	}
	if b.Kind > BinDataStorage {
		return BinData{}, fmt.Errorf("%w: bin data kind %d", ErrFormat, b.Kind)
	}
	if b.CompressMode > CompressNever {
		return BinData{}, fmt.Errorf("%w: bin data compress mode %d", ErrFormat, b.CompressMode)
	}
	switch b.Kind {
	case BinDataLink:
		b.AbsolutePath = p.UTF16String()
		b.RelativePath = p.UTF16String()
	case BinDataEmbedding:
		b.ID = p.U16()
		b.Extension = p.UTF16String()
	case BinDataStorage:
		b.ID = p.U16()
	}
	if err := p.Err(); err != nil {
		return BinData{}, err
	}
	return b, nil
}

// StreamName is the BinData storage entry holding an embedded item, such as
// "BIN0001.png". ok is false for items that are not embedded in the file.
func (b BinData) StreamName() (name string, ok bool) {
	if b.Kind != BinDataEmbedding {
		return "", false
	}
	return fmt.Sprintf("BIN%04X.%s", b.ID, strings.ToLower(b.Extension)), true
}

// Compressed reports whether the item's stream is raw-deflated, resolving
// CompressDefault against the file header.
func (b BinData) Compressed(h FileHeader) bool {
	switch b.CompressMode {
	case CompressAlways:
		return true
	case CompressNever:
		return false
	default:
		return h.Flags.Compressed
	}
}

// Attachment is an extracted binary item.
type Attachment struct {
	Name string
	ID   uint16
	Data []byte
}

// Export re-encodes the attachment with comp and returns the file name to
// store it under.
func (a Attachment) Export(comp Compression) (name string, data []byte, err error) {
	data, err = CompressBytes(comp, a.Data)
	if err != nil {
		return "", nil, err
	}
	return a.Name + comp.Ext(), data, nil
}
