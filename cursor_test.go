package hwp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levels(ls ...uint16) []Record {
	out := make([]Record, len(ls))
	for i, l := range ls {
		out[i] = Record{Tag: Tag(0x100 + i), Level: l}
	}
	return out
}

func TestCollectChildrenStopsAtSiblingLevel(t *testing.T) {
	const L = 2
	c := NewRecordCursor(levels(L+1, L+3, L+2, L+1, L))
	kids := c.CollectChildren(L)
	require.Len(t, kids, 4)
	for i, k := range kids {
		assert.Equal(t, Tag(0x100+i), k.Tag)
	}
	next, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, uint16(L), next.Level)
	assert.Equal(t, 1, c.Remaining())
}

func TestCollectChildrenNone(t *testing.T) {
	c := NewRecordCursor(levels(1, 0))
	assert.Nil(t, c.CollectChildren(1))
	assert.Equal(t, 2, c.Remaining())

	c = NewRecordCursor(nil)
	assert.Nil(t, c.CollectChildren(0))
}

func TestCollectChildrenToEnd(t *testing.T) {
	c := NewRecordCursor(levels(0, 1, 2, 1))
	_, err := c.Current()
	require.NoError(t, err)
	assert.Len(t, c.CollectChildren(0), 3)
	assert.False(t, c.HasNext())
}

func TestCursorCurrentAndPeek(t *testing.T) {
	c := NewRecordCursor([]Record{{Tag: TagParaHeader}, {Tag: TagParaText, Level: 1}})
	assert.True(t, c.PeekTag(TagParaHeader))
	assert.False(t, c.PeekTag(TagParaText))

	r, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, TagParaHeader, r.Tag)

	_, err = c.Expect(TagParaCharShape)
	assert.ErrorIs(t, err, ErrFormat)
	assert.True(t, c.PeekTag(TagParaText), "a failed Expect does not consume")

	_, err = c.Expect(TagParaText)
	require.NoError(t, err)

	assert.False(t, c.PeekTag(TagParaText), "PeekTag is false at end of stream")
	_, err = c.Current()
	assert.ErrorIs(t, err, ErrCursorExhausted)
	_, err = c.Expect(TagParaText)
	assert.ErrorIs(t, err, ErrCursorExhausted)
}
