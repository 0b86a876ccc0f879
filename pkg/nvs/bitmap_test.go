package nvs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeStateBitmap_LowPairFirst(t *testing.T) {
	bitmap := bytes.Repeat([]byte{0xff}, bitmapSize)
	// 0b11_00_10_11: slot 0 = Empty, slot 1 = Written, slot 2 = Erased,
	// slot 3 = Empty.
	bitmap[0] = 0xcb

	states := decodeStateBitmap(bitmap)

	assert.Equal(t, EntryEmpty, states[0])
	assert.Equal(t, EntryWritten, states[1])
	assert.Equal(t, EntryErased, states[2])
	assert.Equal(t, EntryEmpty, states[3])
	for i := 4; i < NumEntries; i++ {
		assert.Equal(t, EntryEmpty, states[i], "slot %d", i)
	}
}

func TestDecodeStateBitmap_SecondByte(t *testing.T) {
	bitmap := bytes.Repeat([]byte{0xff}, bitmapSize)
	bitmap[1] = 0xfe // low pair = 2: slot 4 written

	states := decodeStateBitmap(bitmap)

	assert.Equal(t, EntryWritten, states[4])
	assert.Equal(t, EntryEmpty, states[5])
}

func TestDecodeStateBitmap_InvalidPatternPassesThrough(t *testing.T) {
	bitmap := bytes.Repeat([]byte{0xff}, bitmapSize)
	bitmap[0] = 0xfd // low pair = 1, not a defined state

	states := decodeStateBitmap(bitmap)

	assert.Equal(t, EntryState(1), states[0])
	assert.False(t, states[0].valid())
}
