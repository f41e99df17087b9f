package hwp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/logicossoftware/go-hwp/internal/cfbtest"
)

var testVersion = NewVersion(5, 1, 0, 1)

// distKey and distSeed build the distributed fixture. Flipping the low seed
// byte changes both the mask and the key offset.
var (
	distKey  = []byte("0123456789abcdef")
	distSeed = uint32(0x12345678)
)

func rec(tag Tag, level uint16, data []byte) Record {
	return Record{Tag: tag, Level: level, Size: uint32(len(data)), Data: data}
}

func appendRecords(recs ...Record) []byte {
	var out []byte
	for _, r := range recs {
		out = AppendRecord(out, r)
	}
	return out
}

func encodeUTF16(t testing.TB, s string) []byte {
	t.Helper()
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

// hwpString is a WORD length followed by UTF-16LE code units.
func hwpString(t testing.TB, s string) []byte {
	t.Helper()
	b := encodeUTF16(t, s)
	return append(binary.LittleEndian.AppendUint16(nil, uint16(len(b)/2)), b...)
}

func propertiesData(sections uint16) []byte {
	b := binary.LittleEndian.AppendUint16(nil, sections)
	for i := 0; i < 6; i++ {
		b = binary.LittleEndian.AppendUint16(b, 1)
	}
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint32(b, 0)
	return binary.LittleEndian.AppendUint32(b, 0)
}

// idMappingsData encodes counts, which may be 15, 16 or 18 values long.
func idMappingsData(counts ...int32) []byte {
	var b []byte
	for _, n := range counts {
		b = binary.LittleEndian.AppendUint32(b, uint32(n))
	}
	return b
}

func emptyIDMappings() []byte { return idMappingsData(make([]int32, 18)...) }

// embeddedBinData is a BIN_DATA payload for an embedded item.
func embeddedBinData(t testing.TB, id uint16, ext string, mode CompressMode) []byte {
	t.Helper()
	props := uint16(BinDataEmbedding) | uint16(mode)<<4
	b := binary.LittleEndian.AppendUint16(nil, props)
	b = binary.LittleEndian.AppendUint16(b, id)
	return append(b, hwpString(t, ext)...)
}

func docInfoStream(t testing.TB, sections uint16, binData ...[]byte) []byte {
	t.Helper()
	counts := make([]int32, 18)
	counts[0] = int32(len(binData))
	recs := []Record{
		rec(TagDocumentProperties, 0, propertiesData(sections)),
		rec(TagIDMappings, 0, idMappingsData(counts...)),
	}
	for _, d := range binData {
		recs = append(recs, rec(TagBinData, 1, d))
	}
	return appendRecords(recs...)
}

// paraHeaderData is a PARA_HEADER payload with the 5.0.3.2 merged field.
func paraHeaderData(chars uint32, charShapes, rangeTags, lineSegs uint16) []byte {
	b := binary.LittleEndian.AppendUint32(nil, chars)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = append(b, 0, 0)
	b = binary.LittleEndian.AppendUint16(b, charShapes)
	b = binary.LittleEndian.AppendUint16(b, rangeTags)
	b = binary.LittleEndian.AppendUint16(b, lineSegs)
	b = binary.LittleEndian.AppendUint32(b, 0)
	return binary.LittleEndian.AppendUint16(b, 0)
}

// paragraphRecords encodes a paragraph of plain text ending in a paragraph
// break.
func paragraphRecords(t testing.TB, text string) []Record {
	t.Helper()
	body := append(encodeUTF16(t, text), 0x0D, 0x00)
	return []Record{
		rec(TagParaHeader, 0, paraHeaderData(uint32(len(body)/2), 0, 0, 0)),
		rec(TagParaText, 1, body),
	}
}

func sectionStream(t testing.TB, paragraphs ...string) []byte {
	t.Helper()
	var recs []Record
	for _, p := range paragraphs {
		recs = append(recs, paragraphRecords(t, p)...)
	}
	return appendRecords(recs...)
}

// storedDeflate wraps b in a single final stored deflate block, so the
// compressed bytes are fully determined by b.
func storedDeflate(b []byte) []byte {
	out := []byte{0x01}
	out = binary.LittleEndian.AppendUint16(out, uint16(len(b)))
	out = binary.LittleEndian.AppendUint16(out, ^uint16(len(b)))
	return append(out, b...)
}

// distributeRecord builds the DISTRIBUTE_DOC_DATA record hiding key under seed.
func distributeRecord(seed uint32, key []byte) Record {
	var pre [distributePreambleSize]byte
	off := int(seed&0xF) + 4
	copy(pre[off:], key)
	payload := xorPreamble(pre, seed)
	binary.LittleEndian.PutUint32(payload[:4], seed)
	return rec(TagDistributeDocData, 0, payload[:])
}

// viewTextStream encrypts a stored-deflate section stream the way distributed
// documents do.
func viewTextStream(t testing.TB, section []byte) []byte {
	t.Helper()
	return encryptedViewText(t, storedDeflate(section))
}

// encryptedViewText zero-pads plain to the cipher block size and encrypts it
// behind a DISTRIBUTE_DOC_DATA record.
func encryptedViewText(t testing.TB, plain []byte) []byte {
	t.Helper()
	if pad := len(plain) % 16; pad != 0 {
		plain = append(plain, make([]byte, 16-pad)...)
	}
	ct, err := encryptECB(distKey, plain)
	require.NoError(t, err)
	return append(appendRecords(distributeRecord(distSeed, distKey)), ct...)
}

type fixture struct {
	flags    Flags
	docInfo  []byte
	sections [][]byte
	view     [][]byte
	extra    []cfbtest.Entry
}

// build deflates DocInfo and sections when flags.Compressed is set and packs
// everything into a compound file.
func (f fixture) build(t testing.TB) []byte {
	t.Helper()
	h := NewFileHeader(testVersion, f.flags)
	hb, err := h.MarshalBinary()
	require.NoError(t, err)

	maybeDeflate := func(b []byte) []byte {
		if !f.flags.Compressed {
			return b
		}
		out, err := deflateCompress(b)
		require.NoError(t, err)
		return out
	}
	entries := []cfbtest.Entry{
		{Path: StreamFileHeader, Data: hb},
		{Path: StreamDocInfo, Data: maybeDeflate(f.docInfo)},
	}
	for i, s := range f.sections {
		entries = append(entries, cfbtest.Entry{Path: SectionStream(StorageBodyText, i), Data: maybeDeflate(s)})
	}
	for i, s := range f.view {
		entries = append(entries, cfbtest.Entry{Path: SectionStream(StorageViewText, i), Data: s})
	}
	entries = append(entries, f.extra...)
	b, err := cfbtest.Build(entries)
	require.NoError(t, err)
	return b
}

func simpleFixture(t testing.TB) fixture {
	return fixture{
		docInfo:  docInfoStream(t, 1),
		sections: [][]byte{sectionStream(t, "hello")},
	}
}

func distributedFixture(t testing.TB) fixture {
	return fixture{
		flags:    Flags{Compressed: true, Distributed: true},
		docInfo:  docInfoStream(t, 1),
		sections: [][]byte{sectionStream(t)},
		view:     [][]byte{viewTextStream(t, sectionStream(t, "hello"))},
	}
}
