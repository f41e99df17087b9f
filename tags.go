package hwp

import "fmt"

// Tag is a record's 10-bit kind identifier.
type Tag uint16

const tagBegin Tag = 0x10

// DocInfo stream tags.
const (
	TagDocumentProperties Tag = tagBegin + iota
	TagIDMappings
	TagBinData
	TagFaceName
	TagBorderFill
	TagCharShape
	TagTabDef
	TagNumbering
	TagBullet
	TagParaShape
	TagStyle
	TagDocData
	TagDistributeDocData
	_
	TagCompatibleDocument
	TagLayoutCompatibility
	TagTrackChange

	TagMemoShape         Tag = tagBegin + 76
	TagForbiddenChar     Tag = tagBegin + 78
	TagTrackChangeItem   Tag = tagBegin + 80
	TagTrackChangeAuthor Tag = tagBegin + 81
)

// BodyText stream tags.
const (
	TagParaHeader Tag = tagBegin + 50 + iota
	TagParaText
	TagParaCharShape
	TagParaLineSeg
	TagParaRangeTag
	TagCtrlHeader
	TagListHeader
	TagPageDef
	TagFootnoteShape
	TagPageBorderFill
	TagShapeComponent
	TagTable
	TagShapeComponentLine
	TagShapeComponentRectangle
	TagShapeComponentEllipse
	TagShapeComponentArc
	TagShapeComponentPolygon
	TagShapeComponentCurve
	TagShapeComponentOLE
	TagShapeComponentPicture
	TagShapeComponentContainer
	TagCtrlData
	TagEqEdit
	_
	TagShapeComponentTextArt
	TagFormObject
	_ // TagMemoShape is shared with DocInfo.
	TagMemoList

	TagChartData             Tag = tagBegin + 79
	TagVideoData             Tag = tagBegin + 82
	TagShapeComponentUnknown Tag = tagBegin + 99
)

var tagNames = map[Tag]string{
	TagDocumentProperties:      "DOCUMENT_PROPERTIES",
	TagIDMappings:              "ID_MAPPINGS",
	TagBinData:                 "BIN_DATA",
	TagFaceName:                "FACE_NAME",
	TagBorderFill:              "BORDER_FILL",
	TagCharShape:               "CHAR_SHAPE",
	TagTabDef:                  "TAB_DEF",
	TagNumbering:               "NUMBERING",
	TagBullet:                  "BULLET",
	TagParaShape:               "PARA_SHAPE",
	TagStyle:                   "STYLE",
	TagDocData:                 "DOC_DATA",
	TagDistributeDocData:       "DISTRIBUTE_DOC_DATA",
	TagCompatibleDocument:      "COMPATIBLE_DOCUMENT",
	TagLayoutCompatibility:     "LAYOUT_COMPATIBILITY",
	TagTrackChange:             "TRACKCHANGE",
	TagMemoShape:               "MEMO_SHAPE",
	TagForbiddenChar:           "FORBIDDEN_CHAR",
	TagTrackChangeItem:         "TRACK_CHANGE",
	TagTrackChangeAuthor:       "TRACK_CHANGE_AUTHOR",
	TagParaHeader:              "PARA_HEADER",
	TagParaText:                "PARA_TEXT",
	TagParaCharShape:           "PARA_CHAR_SHAPE",
	TagParaLineSeg:             "PARA_LINE_SEG",
	TagParaRangeTag:            "PARA_RANGE_TAG",
	TagCtrlHeader:              "CTRL_HEADER",
	TagListHeader:              "LIST_HEADER",
	TagPageDef:                 "PAGE_DEF",
	TagFootnoteShape:           "FOOTNOTE_SHAPE",
	TagPageBorderFill:          "PAGE_BORDER_FILL",
	TagShapeComponent:          "SHAPE_COMPONENT",
	TagTable:                   "TABLE",
	TagShapeComponentLine:      "SHAPE_COMPONENT_LINE",
	TagShapeComponentRectangle: "SHAPE_COMPONENT_RECTANGLE",
	TagShapeComponentEllipse:   "SHAPE_COMPONENT_ELLIPSE",
	TagShapeComponentArc:       "SHAPE_COMPONENT_ARC",
	TagShapeComponentPolygon:   "SHAPE_COMPONENT_POLYGON",
	TagShapeComponentCurve:     "SHAPE_COMPONENT_CURVE",
	TagShapeComponentOLE:       "SHAPE_COMPONENT_OLE",
	TagShapeComponentPicture:   "SHAPE_COMPONENT_PICTURE",
	TagShapeComponentContainer: "SHAPE_COMPONENT_CONTAINER",
	TagCtrlData:                "CTRL_DATA",
	TagEqEdit:                  "EQEDIT",
	TagShapeComponentTextArt:   "SHAPE_COMPONENT_TEXTART",
	TagFormObject:              "FORM_OBJECT",
	TagMemoList:                "MEMO_LIST",
	TagChartData:               "CHART_DATA",
	TagVideoData:               "VIDEO_DATA",
	TagShapeComponentUnknown:   "SHAPE_COMPONENT_UNKNOWN",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return fmt.Sprintf("%s(0x%03X)", name, uint16(t))
	}
	return fmt.Sprintf("0x%03X", uint16(t))
}
