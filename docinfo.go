package hwp

import "fmt"

// Opaque is a record kept undecoded together with its subtree.
type Opaque struct {
	Record   Record
	Children []Record
}

// Cursor returns a cursor over the retained subtree.
func (o Opaque) Cursor() *RecordCursor { return NewRecordCursor(o.Children) }

func readOpaque(c *RecordCursor) (Opaque, error) {
	rec, err := c.Current()
	if err != nil {
		return Opaque{}, err
	}
	return Opaque{Record: rec, Children: c.CollectChildren(rec.Level)}, nil
}

// optionalOpaque consumes the next record and its subtree only if it has tag.
func optionalOpaque(c *RecordCursor, tag Tag) (*Opaque, error) {
	if !c.PeekTag(tag) {
		return nil, nil
	}
	o, err := readOpaque(c)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DocumentProperties is the DOCUMENT_PROPERTIES record.
type DocumentProperties struct {
	SectionCount  uint16
	PageStart     uint16
	FootnoteStart uint16
	EndnoteStart  uint16
	PictureStart  uint16
	TableStart    uint16
	EquationStart uint16
	ListID        uint32
	ParagraphID   uint32
	CharPosition  uint32
}

func decodeDocumentProperties(rec Record) (DocumentProperties, error) {
	p := rec.Reader()
	props := DocumentProperties{
		SectionCount:  p.U16(),
		PageStart:     p.U16(),
		FootnoteStart: p.U16(),
		EndnoteStart:  p.U16(),
		PictureStart:  p.U16(),
		TableStart:    p.U16(),
		EquationStart: p.U16(),
		ListID:        p.U32(),
		ParagraphID:   p.U32(),
		CharPosition:  p.U32(),
	}
	return props, p.Err()
}

// IDMappings holds the item count of every DocInfo table. The version-gated
// counts are nil when the document predates them.
type IDMappings struct {
	BinData       int32
	FontsHangul   int32
	FontsLatin    int32
	FontsHanja    int32
	FontsJapanese int32
	FontsOther    int32
	FontsSymbol   int32
	FontsUser     int32
	BorderFills   int32
	CharShapes    int32
	TabDefs       int32
	Numberings    int32
	Bullets       int32
	ParaShapes    int32
	Styles        int32

	MemoShapes         *int32 // 5.0.2.1+
	TrackChanges       *int32 // 5.0.3.2+
	TrackChangeAuthors *int32 // 5.0.3.2+
}

func decodeIDMappings(rec Record, v Version) (IDMappings, error) {
	p := rec.Reader()
	var m IDMappings
	for _, f := range []*int32{
		&m.BinData, &m.FontsHangul, &m.FontsLatin, &m.FontsHanja, &m.FontsJapanese,
		&m.FontsOther, &m.FontsSymbol, &m.FontsUser, &m.BorderFills, &m.CharShapes,
		&m.TabDefs, &m.Numberings, &m.Bullets, &m.ParaShapes, &m.Styles,
	} {
		*f = p.I32()
	}
	// Gated counts are read when the version allows them and the payload
	// actually carries them; real files do not always agree with the version.
	optional := func(min Version) *int32 {
		if !v.AtLeast(min) || p.Remaining() < 4 {
			return nil
		}
		n := p.I32()
		return &n
	}
	m.MemoShapes = optional(VersionMemoShapes)
	m.TrackChanges = optional(VersionChangeTracking)
	m.TrackChangeAuthors = optional(VersionChangeTracking)
	return m, p.Err()
}

func derefCount(n *int32) int32 {
	if n == nil {
		return 0
	}
	return *n
}

// FontLang indexes DocInfo.FaceNames.
type FontLang int

const (
	FontHangul FontLang = iota
	FontLatin
	FontHanja
	FontJapanese
	FontOther
	FontSymbol
	FontUser
	fontLangCount
)

// FaceName is a FACE_NAME record.
type FaceName struct {
	Name            string
	AlternativeType *uint8
	AlternativeName string
	Panose          *[10]byte
	DefaultName     string
}

func decodeFaceName(rec Record) (FaceName, error) {
	p := rec.Reader()
	props := p.U8()
	f := FaceName{Name: p.UTF16String()}
	if Flag(props, 7) {
		t := p.U8()
		f.AlternativeType = &t
		f.AlternativeName = p.UTF16String()
	}
	if Flag(props, 6) {
		var panose [10]byte
		copy(panose[:], p.Bytes(10))
		f.Panose = &panose
	}
	if Flag(props, 5) {
		f.DefaultName = p.UTF16String()
	}
	return f, p.Err()
}

// DocInfo is the decoded DocInfo stream. BinData and face names are decoded;
// the other tables are kept as Opaque items in stream order.
type DocInfo struct {
	Properties DocumentProperties
	IDMappings IDMappings

	BinData   []BinData
	FaceNames [fontLangCount][]FaceName

	BorderFills        []Opaque
	CharShapes         []Opaque
	TabDefs            []Opaque
	Numberings         []Opaque
	Bullets            []Opaque
	ParaShapes         []Opaque
	Styles             []Opaque
	MemoShapes         []Opaque
	TrackChanges       []Opaque
	TrackChangeAuthors []Opaque

	DocData            *Opaque
	ForbiddenChar      *Opaque
	CompatibleDocument *Opaque
	TrackChange        *Opaque

	Unknown []Opaque
}

// DecodeDocInfo decodes a DocInfo record stream.
func DecodeDocInfo(c *RecordCursor, v Version) (DocInfo, error) {
	var info DocInfo

	rec, err := c.Expect(TagDocumentProperties)
	if err != nil {
		return info, err
	}
	if info.Properties, err = decodeDocumentProperties(rec); err != nil {
		return info, tagErr(rec.Tag, err)
	}
	c.CollectChildren(rec.Level)

	if rec, err = c.Expect(TagIDMappings); err != nil {
		return info, err
	}
	if info.IDMappings, err = decodeIDMappings(rec, v); err != nil {
		return info, tagErr(rec.Tag, err)
	}
	// The counted tables are ID_MAPPINGS' children and are consumed below.
	m := info.IDMappings

	if info.BinData, err = readItems(c, TagBinData, m.BinData, decodeBinData); err != nil {
		return info, err
	}
	fontCounts := [fontLangCount]int32{
		m.FontsHangul, m.FontsLatin, m.FontsHanja, m.FontsJapanese,
		m.FontsOther, m.FontsSymbol, m.FontsUser,
	}
	for lang, n := range fontCounts {
		if info.FaceNames[lang], err = readItems(c, TagFaceName, n, decodeFaceName); err != nil {
			return info, err
		}
	}

	for _, t := range []struct {
		dst   *[]Opaque
		tag   Tag
		count int32
	}{
		{&info.BorderFills, TagBorderFill, m.BorderFills},
		{&info.CharShapes, TagCharShape, m.CharShapes},
		{&info.TabDefs, TagTabDef, m.TabDefs},
		{&info.Numberings, TagNumbering, m.Numberings},
		{&info.Bullets, TagBullet, m.Bullets},
		{&info.ParaShapes, TagParaShape, m.ParaShapes},
		{&info.Styles, TagStyle, m.Styles},
		{&info.MemoShapes, TagMemoShape, derefCount(m.MemoShapes)},
		{&info.TrackChanges, TagTrackChangeItem, derefCount(m.TrackChanges)},
		{&info.TrackChangeAuthors, TagTrackChangeAuthor, derefCount(m.TrackChangeAuthors)},
	} {
		if *t.dst, err = readOpaqueItems(c, t.tag, t.count); err != nil {
			return info, err
		}
	}

	for _, t := range []struct {
		dst **Opaque
		tag Tag
	}{
		{&info.DocData, TagDocData},
		{&info.ForbiddenChar, TagForbiddenChar},
		{&info.CompatibleDocument, TagCompatibleDocument},
		{&info.TrackChange, TagTrackChange},
	} {
		if *t.dst, err = optionalOpaque(c, t.tag); err != nil {
			return info, err
		}
	}

	for c.HasNext() {
		o, err := readOpaque(c)
		if err != nil {
			return info, err
		}
		info.Unknown = append(info.Unknown, o)
	}
	return info, nil
}

// readItems consumes count records of tag, decoding each with decode and
// skipping any subtree below it.
func readItems[T any](c *RecordCursor, tag Tag, count int32, decode func(Record) (T, error)) ([]T, error) {
	if err := checkCount(c, tag, count); err != nil {
		return nil, err
	}
	out := make([]T, 0, count)
	for i := int32(0); i < count; i++ {
		rec, err := c.Expect(tag)
		if err != nil {
			return nil, err
		}
		item, err := decode(rec)
		if err != nil {
			return nil, tagErr(rec.Tag, err)
		}
		c.CollectChildren(rec.Level)
		out = append(out, item)
	}
	return out, nil
}

// readOpaqueItems is readItems for tables whose items are retained undecoded.
func readOpaqueItems(c *RecordCursor, tag Tag, count int32) ([]Opaque, error) {
	if err := checkCount(c, tag, count); err != nil {
		return nil, err
	}
	out := make([]Opaque, 0, count)
	for i := int32(0); i < count; i++ {
		if !c.PeekTag(tag) {
			_, err := c.Expect(tag)
			return nil, err
		}
		o, err := readOpaque(c)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// checkCount rejects declared counts that are negative or exceed the records
// left, so a hostile count cannot drive a large allocation.
func checkCount(c *RecordCursor, tag Tag, count int32) error {
	if count < 0 {
		return tagErr(TagIDMappings, fmt.Errorf("%w: negative %s count %d", ErrFormat, tag, count))
	}
	if int(count) > c.Remaining() {
		return tagErr(TagIDMappings, fmt.Errorf("%w: %d %s items declared, %d records remain", ErrFormat, count, tag, c.Remaining()))
	}
	return nil
}
