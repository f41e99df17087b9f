// Package hwp decodes HWP 5.x documents, the native format of the Hangul
// word processor.
//
// An HWP file is a compound file (OLE2 structured storage) holding several
// streams:
//   - FileHeader: a 256-byte block with the signature, version and flags
//   - DocInfo: a record stream of document-wide tables (fonts, shapes, styles,
//     binary item descriptors)
//   - BodyText/SectionN: one record stream per section of body text
//   - ViewText/SectionN: the AES-encrypted body of a distributed document
//   - BinData/BINxxxx.ext: embedded images and other binary items
//
// DocInfo and section streams are raw-deflated when the header's Compressed
// flag is set. Every record stream is a flat sequence of tag/level/size
// records; nesting is implied by levels and rebuilt with [RecordCursor].
//
// # Basic Usage
//
//	f, _ := os.Open("input.hwp")
//	defer f.Close()
//	doc, err := hwp.Decode(f)
//	if err != nil {
//		return err
//	}
//	fmt.Println(doc.Text())
//
// Attachments can be re-encoded for export with any of the supported codecs:
//
//	for _, a := range doc.BinData {
//		name, data, err := a.Export(hwp.CompZSTD)
//		...
//	}
//
// # Lower-level access
//
// [OpenContainer], [ReadRecords], [RecordCursor] and [PayloadReader] are
// exported so callers can decode record kinds this package keeps opaque, such
// as the subtree of a table [Control].
//
// # Security Considerations
//
// Decoding is bounded by configurable [Limits]: file and stream sizes,
// inflated size, record counts, sections and attachments. Attachment names
// are validated before they are returned so they can be joined onto an output
// directory.
package hwp
