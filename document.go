package hwp

import (
	"bytes"
	"context"
	"crypto/aes"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Document is a decoded HWP 5.x file.
type Document struct {
	Header   FileHeader
	DocInfo  DocInfo
	BodyText Body
	// ViewText is the decrypted body of a distributed document, nil otherwise.
	ViewText *Body
	BinData  []Attachment
}

// Text returns the document's plain text, preferring ViewText when BodyText
// has no paragraphs, as is the case for distributed documents.
func (d *Document) Text() string {
	if d.ViewText != nil && paragraphCount(d.BodyText) == 0 {
		return d.ViewText.Text()
	}
	return d.BodyText.Text()
}

func paragraphCount(b Body) int {
	n := 0
	for _, s := range b.Sections {
		n += len(s.Paragraphs)
	}
	return n
}

// Decode reads an HWP document from r.
//
// The whole input is buffered, since the compound file container needs random
// access. The decoding process:
//  1. Opens the compound file and decodes the 256-byte FileHeader stream
//  2. Decodes the DocInfo stream, inflating it when the header says so
//  3. Decodes every BodyText/SectionN stream
//  4. For distributed documents, decrypts and decodes every ViewText/SectionN
//  5. Extracts the embedded BinData items DocInfo declares
//  6. Validates the result
//
// Use ReadOption functions to customize this behavior:
//   - WithReadLimits(l): set custom size limits
//   - WithLogger(l): report progress to l
//   - WithSectionConcurrency(n): decode up to n sections at once
//   - WithBinData(false): skip attachment extraction
//   - WithViewText(false): skip distributed body decryption
//
// The first failure aborts the decode. Errors wrap one of the package's
// sentinel errors and, where known, a *StreamError naming the stream and tag.
func Decode(r io.Reader, opts ...ReadOption) (*Document, error) {
	cfg := newReadConfig(opts)
	b, err := readAll(io.LimitReader(r, int64(cfg.limits.MaxFileSize)+1))
	if err != nil {
		return nil, err
	}
	return decodeBytes(b, cfg)
}

// DecodeBytes decodes an HWP document held in b.
func DecodeBytes(b []byte, opts ...ReadOption) (*Document, error) {
	return decodeBytes(b, newReadConfig(opts))
}

func decodeBytes(b []byte, cfg readConfig) (*Document, error) {
	log := cfg.logger
	c, err := OpenContainer(b, WithReadLimits(cfg.limits))
	if err != nil {
		return nil, err
	}

	raw, err := c.ReadStream(StreamFileHeader)
	if err != nil {
		return nil, streamErr(StreamFileHeader, err)
	}
	header, err := DecodeFileHeader(raw)
	if err != nil {
		return nil, streamErr(StreamFileHeader, err)
	}
	v := header.Version
	log.Debug("decoded file header",
		slog.String("version", v.String()),
		slog.Bool("compressed", header.Flags.Compressed),
		slog.Bool("distributed", header.Flags.Distributed))

	doc := &Document{Header: header}

	records, err := readRecordStream(c, StreamDocInfo, header.Flags.Compressed, cfg.limits)
	if err != nil {
		return nil, err
	}
	if doc.DocInfo, err = DecodeDocInfo(NewRecordCursor(records), v); err != nil {
		return nil, streamErr(StreamDocInfo, err)
	}

	if doc.BodyText, err = decodeBody(c, StorageBodyText, header, cfg); err != nil {
		return nil, err
	}
	if n := int(doc.DocInfo.Properties.SectionCount); n != len(doc.BodyText.Sections) {
		log.Warn("section count mismatch",
			slog.Int("declared", n),
			slog.Int("found", len(doc.BodyText.Sections)))
	}

	if header.Flags.Distributed && cfg.viewText {
		view, err := decodeBody(c, StorageViewText, header, cfg)
		if err != nil {
			return nil, err
		}
		doc.ViewText = &view
	}

	if cfg.binData {
		if doc.BinData, err = extractAttachments(c, doc.DocInfo.BinData, header, cfg); err != nil {
			return nil, err
		}
	}

	if err := validateDocument(doc, cfg.limits); err != nil {
		return nil, err
	}
	log.Debug("decoded document",
		slog.Int("sections", len(doc.BodyText.Sections)),
		slog.Int("attachments", len(doc.BinData)))
	return doc, nil
}

// readRecordStream reads, inflates when compressed and frames one record
// stream.
func readRecordStream(c *Container, path string, compressed bool, l Limits) ([]Record, error) {
	raw, err := c.ReadStream(path)
	if err != nil {
		return nil, streamErr(path, err)
	}
	data, err := inflateStream(raw, compressed, l.MaxInflatedSize)
	if err != nil {
		return nil, streamErr(path, err)
	}
	records, err := ReadRecords(data, l.MaxRecords)
	if err != nil {
		return nil, streamErr(path, err)
	}
	return records, nil
}

// decodeBody decodes storage/Section0..N-1. ViewText sections are decrypted
// first. Sections are decoded by up to cfg.concurrency workers and stored by
// index, so the result follows container order.
func decodeBody(c *Container, storage string, h FileHeader, cfg readConfig) (Body, error) {
	n := c.StorageLen(storage)
	if n > cfg.limits.MaxSections {
		return Body{}, fmt.Errorf("%w: %s has %d sections", ErrLimitExceeded, storage, n)
	}
	distributed := storage == StorageViewText
	sections := make([]Section, n)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.concurrency)
	for i := range sections {
		path := SectionStream(storage, i)
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			s, err := decodeSectionStream(c, path, distributed, h, cfg.limits)
			if err != nil {
				return err
			}
			sections[i] = s
			cfg.logger.Debug("decoded section",
				slog.String("stream", path),
				slog.Int("paragraphs", len(s.Paragraphs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Body{}, err
	}
	return Body{Sections: sections}, nil
}

func decodeSectionStream(c *Container, path string, distributed bool, h FileHeader, l Limits) (Section, error) {
	var records []Record
	if distributed {
		raw, err := c.ReadStream(path)
		if err != nil {
			return Section{}, streamErr(path, err)
		}
		plain, err := decryptDistributed(raw)
		if err != nil {
			return Section{}, streamErr(path, err)
		}
		data, err := inflateStream(plain, h.Flags.Compressed, l.MaxInflatedSize)
		if err != nil {
			return Section{}, streamErr(path, err)
		}
		if records, err = readRecordsPadded(data, l.MaxRecords, aes.BlockSize); err != nil {
			return Section{}, streamErr(path, err)
		}
	} else {
		var err error
		if records, err = readRecordStream(c, path, h.Flags.Compressed, l); err != nil {
			return Section{}, err
		}
	}
	s, err := DecodeSection(NewRecordCursor(records), h.Version)
	if err != nil {
		return Section{}, streamErr(path, err)
	}
	return s, nil
}

// extractAttachments reads and, where needed, inflates every embedded BinData
// item. Linked items have no stream and are skipped.
func extractAttachments(c *Container, items []BinData, h FileHeader, cfg readConfig) ([]Attachment, error) {
	var out []Attachment
	for _, item := range items {
		name, ok := item.StreamName()
		if !ok {
			continue
		}
		if len(out) >= cfg.limits.MaxAttachments {
			return nil, fmt.Errorf("%w: more than %d attachments", ErrLimitExceeded, cfg.limits.MaxAttachments)
		}
		path := StorageBinData + "/" + name
		raw, err := c.ReadStream(path)
		if err != nil {
			return nil, streamErr(path, err)
		}
		data, err := inflateStream(raw, item.Compressed(h), cfg.limits.MaxInflatedSize)
		if err != nil {
			return nil, streamErr(path, err)
		}
		cfg.logger.Debug("extracted attachment",
			slog.String("name", name),
			slog.Int("bytes", len(data)))
		out = append(out, Attachment{Name: name, ID: item.ID, Data: data})
	}
	return out, nil
}

// Summary is a short description of a decoded document.
type Summary struct {
	Version     string   `json:"version" yaml:"version"`
	Compressed  bool     `json:"compressed" yaml:"compressed"`
	Distributed bool     `json:"distributed" yaml:"distributed"`
	Sections    int      `json:"sections" yaml:"sections"`
	Paragraphs  int      `json:"paragraphs" yaml:"paragraphs"`
	ViewText    bool     `json:"view_text" yaml:"view_text"`
	Fonts       []string `json:"fonts,omitempty" yaml:"fonts,omitempty"`
	Attachments []string `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// Summarize describes d.
func (d *Document) Summarize() Summary {
	s := Summary{
		Version:     d.Header.Version.String(),
		Compressed:  d.Header.Flags.Compressed,
		Distributed: d.Header.Flags.Distributed,
		Sections:    len(d.BodyText.Sections),
		Paragraphs:  paragraphCount(d.BodyText),
		ViewText:    d.ViewText != nil,
	}
	seen := make(map[string]bool)
	for _, faces := range d.DocInfo.FaceNames {
		for _, f := range faces {
			if !seen[f.Name] {
				seen[f.Name] = true
				s.Fonts = append(s.Fonts, f.Name)
			}
		}
	}
	for _, a := range d.BinData {
		s.Attachments = append(s.Attachments, a.Name)
	}
	return s
}

// IsHWP reports whether b looks like an HWP 5.x compound file. It opens the
// container and checks the FileHeader signature only.
func IsHWP(b []byte) bool {
	c, err := OpenContainer(b)
	if err != nil {
		return false
	}
	raw, err := c.ReadStream(StreamFileHeader)
	if err != nil || len(raw) < signatureCheckSize {
		return false
	}
	return bytes.Equal(raw[:signatureCheckSize], []byte(Signature))
}
