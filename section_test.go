package hwp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSectionRecords(t *testing.T, v Version, recs ...Record) (Section, error) {
	t.Helper()
	records, err := ReadRecords(appendRecords(recs...), 0)
	require.NoError(t, err)
	return DecodeSection(NewRecordCursor(records), v)
}

// controlChar encodes an inline or extended control: code, 12 bytes, code.
func controlChar(code uint16, body string) []byte {
	b := binary.LittleEndian.AppendUint16(nil, code)
	var data [12]byte
	copy(data[:], body)
	b = append(b, data[:]...)
	return binary.LittleEndian.AppendUint16(b, code)
}

func ctrlHeaderData(id string) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(MakeControlID(id)))
}

func TestDecodeSectionParagraphs(t *testing.T) {
	s, err := decodeSectionRecords(t, testVersion, append(paragraphRecords(t, "첫 줄"), paragraphRecords(t, "second")...)...)
	require.NoError(t, err)
	require.Len(t, s.Paragraphs, 2)
	assert.Equal(t, "첫 줄", s.Paragraphs[0].Text())
	assert.Equal(t, "첫 줄\nsecond", s.Text())
	assert.Equal(t, uint32(4), s.Paragraphs[0].Header.Chars)
	require.NotNil(t, s.Paragraphs[0].Header.MergedTracked)
}

func TestDecodeParagraphFull(t *testing.T) {
	var text []byte
	text = append(text, controlChar(2, "dces")...) // section definition, extended
	text = append(text, encodeUTF16(t, "a")...)
	text = append(text, controlChar(9, "")...) // tab, inline
	text = append(text, encodeUTF16(t, "b")...)
	text = binary.LittleEndian.AppendUint16(text, CharLineBreak)
	text = append(text, controlChar(11, " lbt")...) // table, extended
	text = append(text, encodeUTF16(t, "😀")...)     // surrogate pair
	text = binary.LittleEndian.AppendUint16(text, CharParaBreak)
	chars := uint32(8 + 1 + 8 + 1 + 1 + 8 + 2 + 1)

	shapes := binary.LittleEndian.AppendUint32(nil, 0)
	shapes = binary.LittleEndian.AppendUint32(shapes, 7)
	shapes = binary.LittleEndian.AppendUint32(shapes, 3)
	shapes = binary.LittleEndian.AppendUint32(shapes, 8)

	seg := make([]byte, 36)
	binary.LittleEndian.PutUint32(seg[4:], uint32(0xFFFFFFFF)) // vertical position -1
	binary.LittleEndian.PutUint32(seg[32:], 1|1<<16|1<<21)

	ranges := binary.LittleEndian.AppendUint32(nil, 1)
	ranges = binary.LittleEndian.AppendUint32(ranges, 2)
	ranges = binary.LittleEndian.AppendUint32(ranges, 0x05000001)

	s, err := decodeSectionRecords(t, testVersion,
		rec(TagParaHeader, 0, paraHeaderData(chars|0x80000000, 2, 1, 1)),
		rec(TagParaText, 1, text),
		rec(TagParaCharShape, 1, shapes),
		rec(TagParaLineSeg, 1, seg),
		rec(TagParaRangeTag, 1, ranges),
		rec(TagCtrlHeader, 1, ctrlHeaderData("secd")),
		rec(TagPageDef, 2, make([]byte, 40)),
		rec(TagCtrlHeader, 1, ctrlHeaderData("tbl ")),
		rec(TagTable, 2, nil),
		rec(TagListHeader, 2, nil),
		rec(TagParaHeader, 2, paraHeaderData(1, 0, 0, 0)),
		rec(TagMemoList, 1, nil),
		rec(TagPageDef, 0, nil), // top-level, not a paragraph
	)
	require.NoError(t, err)
	require.Len(t, s.Paragraphs, 1)
	require.Len(t, s.Unknown, 1)
	assert.Equal(t, TagPageDef, s.Unknown[0].Record.Tag)

	p := s.Paragraphs[0]
	assert.Equal(t, chars, p.Header.Chars, "high bit is masked off")
	assert.Equal(t, uint16(2), p.Header.CharShapes)

	kinds := make([]CharKind, len(p.Chars))
	for i, c := range p.Chars {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []CharKind{
		CharExtended, CharCode, CharInline, CharCode, CharControl,
		CharExtended, CharCode, CharCode, CharControl,
	}, kinds)
	assert.Equal(t, "a\tb\n😀", p.Text())

	assert.Equal(t, []CharShape{{0, 7}, {3, 8}}, p.CharShapes)

	require.Len(t, p.LineSegments, 1)
	ls := p.LineSegments[0]
	assert.Equal(t, int32(-1), ls.VerticalPosition)
	assert.True(t, ls.FirstLineInPage)
	assert.False(t, ls.FirstLineInColumn)
	assert.True(t, ls.Empty)
	assert.True(t, ls.UseHeading)
	assert.False(t, ls.Indented)

	require.Len(t, p.RangeTags, 1)
	assert.Equal(t, uint8(5), p.RangeTags[0].Kind())

	require.Len(t, p.Controls, 2)
	assert.Equal(t, ControlSectionDef, p.Controls[0].ID)
	assert.Equal(t, "secd", p.Controls[0].ID.String())
	assert.Len(t, p.Controls[0].Children, 1)
	assert.Empty(t, p.Controls[0].Data())

	tbl := p.Controls[1]
	assert.Equal(t, ControlTable, tbl.ID)
	c := tbl.Cursor()
	assert.True(t, c.PeekTag(TagTable))
	assert.Equal(t, 3, c.Remaining())

	require.Len(t, p.Unknown, 1)
	assert.Equal(t, TagMemoList, p.Unknown[0].Tag)
}

func TestDecodeParagraphWithoutText(t *testing.T) {
	s, err := decodeSectionRecords(t, testVersion, rec(TagParaHeader, 0, paraHeaderData(5, 0, 0, 0)))
	require.NoError(t, err)
	require.Len(t, s.Paragraphs, 1)
	p := s.Paragraphs[0]
	require.Len(t, p.Chars, 1)
	assert.Equal(t, CharParaBreak, p.Chars[0].Code)
	assert.Equal(t, "", p.Text())
}

func TestDecodeParagraphHeaderVersionGate(t *testing.T) {
	data := paraHeaderData(1, 0, 0, 0)
	h, err := decodeParagraphHeader(rec(TagParaHeader, 0, data), NewVersion(5, 0, 3, 1))
	require.NoError(t, err)
	assert.Nil(t, h.MergedTracked)

	h, err = decodeParagraphHeader(rec(TagParaHeader, 0, data[:22]), VersionChangeTracking)
	require.NoError(t, err)
	assert.Nil(t, h.MergedTracked, "absent when the payload ends early")

	_, err = decodeParagraphHeader(rec(TagParaHeader, 0, data[:21]), testVersion)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestDecodeParagraphErrors(t *testing.T) {
	t.Run("missing char shapes", func(t *testing.T) {
		_, err := decodeSectionRecords(t, testVersion,
			rec(TagParaHeader, 0, paraHeaderData(1, 1, 0, 0)),
			rec(TagParaLineSeg, 1, make([]byte, 36)),
		)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("short line segments", func(t *testing.T) {
		_, err := decodeSectionRecords(t, testVersion,
			rec(TagParaHeader, 0, paraHeaderData(1, 0, 0, 2)),
			rec(TagParaLineSeg, 1, make([]byte, 36)),
		)
		assert.ErrorIs(t, err, ErrFraming)
	})
	t.Run("missing control header", func(t *testing.T) {
		_, err := decodeSectionRecords(t, testVersion,
			rec(TagParaHeader, 0, paraHeaderData(9, 0, 0, 0)),
			rec(TagParaText, 1, append(controlChar(2, "dces"), 0x0D, 0x00)),
		)
		assert.ErrorIs(t, err, ErrCursorExhausted)
	})
	t.Run("unterminated control", func(t *testing.T) {
		bad := controlChar(11, "")
		bad[len(bad)-2] = 12
		_, err := decodeSectionRecords(t, testVersion,
			rec(TagParaHeader, 0, paraHeaderData(8, 0, 0, 0)),
			rec(TagParaText, 1, bad),
		)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("truncated control", func(t *testing.T) {
		_, err := decodeSectionRecords(t, testVersion,
			rec(TagParaHeader, 0, paraHeaderData(8, 0, 0, 0)),
			rec(TagParaText, 1, controlChar(11, "")[:10]),
		)
		assert.ErrorIs(t, err, ErrFraming)
	})
}

func TestClassifyChar(t *testing.T) {
	for code, want := range map[uint16]CharKind{
		0: CharControl, 10: CharControl, 13: CharControl, 24: CharControl, 31: CharControl,
		1: CharExtended, 3: CharExtended, 11: CharExtended, 12: CharExtended,
		14: CharExtended, 18: CharExtended, 21: CharExtended, 23: CharExtended,
		4: CharInline, 8: CharInline, 9: CharInline, 19: CharInline, 20: CharInline,
		32: CharCode, 0xAC00: CharCode,
	} {
		assert.Equal(t, want, classifyChar(code), "code %d", code)
	}
}

func TestControlID(t *testing.T) {
	assert.Equal(t, "tbl ", ControlTable.String())
	assert.Equal(t, MakeControlID("fn"), ControlFootnote)
	assert.Equal(t, ControlID(0x7365_6364), ControlSectionDef)
}
