package hwp

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Body is an ordered list of sections, in container order.
type Body struct {
	Sections []Section
}

// Text joins the text of every section.
func (b Body) Text() string {
	parts := make([]string, len(b.Sections))
	for i, s := range b.Sections {
		parts[i] = s.Text()
	}
	return strings.Join(parts, "\n")
}

// Section is one BodyText/SectionN (or ViewText/SectionN) stream.
type Section struct {
	Paragraphs []Paragraph
	// Unknown holds top-level records that do not start a paragraph.
	Unknown []Opaque
}

// Text returns the paragraphs' text, one paragraph per line.
func (s Section) Text() string {
	var sb strings.Builder
	for i, p := range s.Paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Text())
	}
	return sb.String()
}

// DecodeSection decodes a section record stream. Top-level PARA_HEADER
// records start paragraphs; anything else is retained as Opaque.
func DecodeSection(c *RecordCursor, v Version) (Section, error) {
	var s Section
	for c.HasNext() {
		if c.PeekTag(TagParaHeader) {
			p, err := DecodeParagraph(c, v)
			if err != nil {
				return s, err
			}
			s.Paragraphs = append(s.Paragraphs, p)
			continue
		}
		o, err := readOpaque(c)
		if err != nil {
			return s, err
		}
		s.Unknown = append(s.Unknown, o)
	}
	return s, nil
}

// ParagraphHeader is the PARA_HEADER record.
type ParagraphHeader struct {
	// Chars is the text length in UTF-16 code units.
	Chars         uint32
	ControlMask   uint32
	ParaShapeID   uint16
	StyleID       uint8
	ColumnBreak   uint8
	CharShapes    uint16
	RangeTags     uint16
	LineSegments  uint16
	InstanceID    uint32
	MergedTracked *uint16 // 5.0.3.2+
}

const paraCharsMask = 0x7FFFFFFF

func decodeParagraphHeader(rec Record, v Version) (ParagraphHeader, error) {
	p := rec.Reader()
	h := ParagraphHeader{
		Chars:        p.U32() & paraCharsMask,
		ControlMask:  p.U32(),
		ParaShapeID:  p.U16(),
		StyleID:      p.U8(),
		ColumnBreak:  p.U8(),
		CharShapes:   p.U16(),
		RangeTags:    p.U16(),
		LineSegments: p.U16(),
		InstanceID:   p.U32(),
	}
	if v.AtLeast(VersionChangeTracking) && p.Remaining() >= 2 {
		m := p.U16()
		h.MergedTracked = &m
	}
	return h, p.Err()
}

// CharKind classifies a PARA_TEXT element.
type CharKind uint8

const (
	CharCode CharKind = iota
	CharControl
	CharInline
	CharExtended
)

// Control character codes with a meaning of their own.
const (
	CharLineBreak       uint16 = 10
	CharParaBreak       uint16 = 13
	CharHyphen          uint16 = 24
	CharKeepWordSpace   uint16 = 30
	CharFixedWidthSpace uint16 = 31
	CharTab             uint16 = 9
)

// Char is one element of PARA_TEXT. Inline and extended controls carry a
// 12-byte body; Code is the UTF-16 code unit or control code.
type Char struct {
	Kind CharKind
	Code uint16
	Data [12]byte
}

// Width is the number of UTF-16 code units the element occupies.
func (c Char) Width() uint32 {
	if c.Kind == CharInline || c.Kind == CharExtended {
		return 8
	}
	return 1
}

func classifyChar(code uint16) CharKind {
	switch {
	case code > 31:
		return CharCode
	case code == 0, code == 10, code == 13, code >= 24:
		return CharControl
	case code >= 1 && code <= 3, code == 11, code == 12, code >= 14 && code <= 18, code >= 21 && code <= 23:
		return CharExtended
	default:
		return CharInline
	}
}

// decodeChars reads PARA_TEXT elements until count code units are consumed
// or the payload ends.
func decodeChars(data []byte, count uint32) ([]Char, error) {
	p := NewPayloadReader(data)
	var chars []Char
	for n := uint32(0); n < count && p.Remaining() >= 2; {
		ch := Char{Code: p.U16()}
		ch.Kind = classifyChar(ch.Code)
		if ch.Kind == CharInline || ch.Kind == CharExtended {
			copy(ch.Data[:], p.Bytes(12))
			if end := p.U16(); p.Err() == nil && end != ch.Code {
				return nil, fmt.Errorf("%w: control char %d closed by %d", ErrFormat, ch.Code, end)
			}
		}
		if err := p.Err(); err != nil {
			return nil, err
		}
		chars = append(chars, ch)
		n += ch.Width()
	}
	return chars, nil
}

// CharShape marks where a character shape starts.
type CharShape struct {
	Position uint32
	ShapeID  uint32
}

// LineSegment is one PARA_LINE_SEG entry.
type LineSegment struct {
	TextStart         uint32
	VerticalPosition  int32
	LineHeight        int32
	TextHeight        int32
	BaselineGap       int32
	LineSpacing       int32
	ColumnStart       int32
	Width             int32
	FirstLineInPage   bool
	FirstLineInColumn bool
	Empty             bool
	FirstSegment      bool
	LastSegment       bool
	AutoHyphenated    bool
	Indented          bool
	UseHeading        bool
}

func readLineSegment(p *PayloadReader) LineSegment {
	seg := LineSegment{
		TextStart:        p.U32(),
		VerticalPosition: p.I32(),
		LineHeight:       p.I32(),
		TextHeight:       p.I32(),
		BaselineGap:      p.I32(),
		LineSpacing:      p.I32(),
		ColumnStart:      p.I32(),
		Width:            p.I32(),
	}
	flags := p.U32()
	seg.FirstLineInPage = Flag(flags, 0)
	seg.FirstLineInColumn = Flag(flags, 1)
	seg.Empty = Flag(flags, 16)
	seg.FirstSegment = Flag(flags, 17)
	seg.LastSegment = Flag(flags, 18)
	seg.AutoHyphenated = Flag(flags, 19)
	seg.Indented = Flag(flags, 20)
	seg.UseHeading = Flag(flags, 21)
	return seg
}

// RangeTag is one PARA_RANGE_TAG entry. The high 8 bits of Tag are the kind.
type RangeTag struct {
	Start uint32
	End   uint32
	Tag   uint32
}

// Kind returns the range tag kind.
func (r RangeTag) Kind() uint8 { return uint8(ValueRange(r.Tag, 24, 31)) }

// ControlID is a four-character control identifier such as "secd" or "tbl ".
type ControlID uint32

// MakeControlID packs four ASCII characters into a ControlID.
func MakeControlID(s string) ControlID {
	var id ControlID
	for i := 0; i < 4; i++ {
		var b byte = ' '
		if i < len(s) {
			b = s[i]
		}
		id = id<<8 | ControlID(b)
	}
	return id
}

func (id ControlID) String() string {
	return string([]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)})
}

// Well-known control ids.
var (
	ControlSectionDef = MakeControlID("secd")
	ControlColumnDef  = MakeControlID("cold")
	ControlTable      = MakeControlID("tbl ")
	ControlHeader     = MakeControlID("head")
	ControlFooter     = MakeControlID("foot")
	ControlFootnote   = MakeControlID("fn  ")
	ControlEndnote    = MakeControlID("en  ")
	ControlAutoNumber = MakeControlID("atno")
	ControlEquation   = MakeControlID("eqed")
	ControlShape      = MakeControlID("gso ")
)

// Control is a CTRL_HEADER record and its subtree, kept undecoded.
type Control struct {
	ID       ControlID
	Record   Record
	Children []Record
}

// Data returns the CTRL_HEADER payload after the control id.
func (c Control) Data() []byte {
	if len(c.Record.Data) < 4 {
		return nil
	}
	return c.Record.Data[4:]
}

// Cursor returns a cursor over the control's subtree, for decoding nested
// paragraph lists.
func (c Control) Cursor() *RecordCursor { return NewRecordCursor(c.Children) }

func readControl(c *RecordCursor) (Control, error) {
	rec, err := c.Expect(TagCtrlHeader)
	if err != nil {
		return Control{}, err
	}
	p := rec.Reader()
	id := ControlID(p.U32())
	if err := p.Err(); err != nil {
		return Control{}, tagErr(rec.Tag, err)
	}
	return Control{ID: id, Record: rec, Children: c.CollectChildren(rec.Level)}, nil
}

// Paragraph is a PARA_HEADER record and the records below it.
type Paragraph struct {
	Header       ParagraphHeader
	Chars        []Char
	CharShapes   []CharShape
	LineSegments []LineSegment
	RangeTags    []RangeTag
	// Controls has one entry per extended control char, in text order.
	Controls []Control
	Unknown  []Record
}

// DecodeParagraph consumes a PARA_HEADER record and its subtree.
func DecodeParagraph(c *RecordCursor, v Version) (Paragraph, error) {
	var para Paragraph
	rec, err := c.Expect(TagParaHeader)
	if err != nil {
		return para, err
	}
	if para.Header, err = decodeParagraphHeader(rec, v); err != nil {
		return para, tagErr(rec.Tag, err)
	}
	h := para.Header

	// Header.Chars may be non-zero with no PARA_TEXT present.
	if c.PeekTag(TagParaText) {
		text, _ := c.Current()
		if para.Chars, err = decodeChars(text.Data, h.Chars); err != nil {
			return para, tagErr(text.Tag, err)
		}
	} else {
		para.Chars = []Char{{Kind: CharControl, Code: CharParaBreak}}
	}

	if h.CharShapes > 0 {
		r, err := c.Expect(TagParaCharShape)
		if err != nil {
			return para, err
		}
		p := r.Reader()
		para.CharShapes = make([]CharShape, 0, min(int(h.CharShapes), p.Remaining()/8))
		for i := 0; i < int(h.CharShapes); i++ {
			para.CharShapes = append(para.CharShapes, CharShape{Position: p.U32(), ShapeID: p.U32()})
		}
		if err := p.Err(); err != nil {
			return para, tagErr(r.Tag, err)
		}
	}

	if h.LineSegments > 0 {
		r, err := c.Expect(TagParaLineSeg)
		if err != nil {
			return para, err
		}
		p := r.Reader()
		para.LineSegments = make([]LineSegment, 0, min(int(h.LineSegments), p.Remaining()/36))
		for i := 0; i < int(h.LineSegments); i++ {
			para.LineSegments = append(para.LineSegments, readLineSegment(p))
		}
		if err := p.Err(); err != nil {
			return para, tagErr(r.Tag, err)
		}
	}

	if h.RangeTags > 0 {
		r, err := c.Expect(TagParaRangeTag)
		if err != nil {
			return para, err
		}
		p := r.Reader()
		para.RangeTags = make([]RangeTag, 0, min(int(h.RangeTags), p.Remaining()/12))
		for i := 0; i < int(h.RangeTags); i++ {
			para.RangeTags = append(para.RangeTags, RangeTag{Start: p.U32(), End: p.U32(), Tag: p.U32()})
		}
		if err := p.Err(); err != nil {
			return para, tagErr(r.Tag, err)
		}
	}

	for _, ch := range para.Chars {
		if ch.Kind != CharExtended {
			continue
		}
		ctrl, err := readControl(c)
		if err != nil {
			return para, err
		}
		para.Controls = append(para.Controls, ctrl)
	}

	para.Unknown = c.CollectChildren(rec.Level)
	return para, nil
}

// Text returns the paragraph's plain text. Line breaks become '\n' and tabs
// '\t'; other controls are dropped.
func (p Paragraph) Text() string {
	b := make([]byte, 0, 2*len(p.Chars))
	for _, ch := range p.Chars {
		switch {
		case ch.Kind == CharCode:
			b = binary.LittleEndian.AppendUint16(b, ch.Code)
		case ch.Code == CharLineBreak:
			b = binary.LittleEndian.AppendUint16(b, '\n')
		case ch.Code == CharTab && ch.Kind == CharInline:
			b = binary.LittleEndian.AppendUint16(b, '\t')
		}
	}
	return decodeUTF16(b)
}
