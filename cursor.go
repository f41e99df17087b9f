package hwp

import "fmt"

// RecordCursor walks a flat record sequence in wire order and rebuilds the
// level-based tree on demand.
//
// Schemas should check PeekTag before calling Current whenever the next record
// is optional, and must call CollectChildren for any record whose subtree they
// do not decode, so that sibling iteration stays aligned.
type RecordCursor struct {
	records []Record
	pos     int
}

// NewRecordCursor returns a cursor positioned at the first record.
func NewRecordCursor(records []Record) *RecordCursor {
	return &RecordCursor{records: records}
}

// Current consumes and returns the next record.
func (c *RecordCursor) Current() (Record, error) {
	if c.pos >= len(c.records) {
		return Record{}, ErrCursorExhausted
	}
	rec := c.records[c.pos]
	c.pos++
	return rec, nil
}

// Expect consumes the next record and fails unless it carries tag.
func (c *RecordCursor) Expect(tag Tag) (Record, error) {
	rec, ok := c.Peek()
	if !ok {
		return Record{}, fmt.Errorf("%w: expected %s", ErrCursorExhausted, tag)
	}
	if rec.Tag != tag {
		return Record{}, tagErr(rec.Tag, fmt.Errorf("%w: expected %s", ErrFormat, tag))
	}
	c.pos++
	return rec, nil
}

// Peek returns the next record without consuming it.
func (c *RecordCursor) Peek() (Record, bool) {
	if c.pos >= len(c.records) {
		return Record{}, false
	}
	return c.records[c.pos], true
}

// PeekTag reports whether the next record has tag. It is false at the end of
// the stream.
func (c *RecordCursor) PeekTag(tag Tag) bool {
	rec, ok := c.Peek()
	return ok && rec.Tag == tag
}

// CollectChildren consumes and returns every following record whose level is
// greater than level, stopping at the first record that is not.
func (c *RecordCursor) CollectChildren(level uint16) []Record {
	start := c.pos
	for c.pos < len(c.records) && c.records[c.pos].Level > level {
		c.pos++
	}
	if start == c.pos {
		return nil
	}
	return c.records[start:c.pos:c.pos]
}

// HasNext reports whether any record is left.
func (c *RecordCursor) HasNext() bool { return c.pos < len(c.records) }

// Remaining is the number of records not yet consumed.
func (c *RecordCursor) Remaining() int { return len(c.records) - c.pos }
