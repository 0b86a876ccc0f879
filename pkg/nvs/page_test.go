package nvs

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePage_RejectsWrongSize(t *testing.T) {
	_, err := DecodePage(make([]byte, 100))
	assert.ErrorIs(t, err, ErrPageSize)
}

func TestDecodePage_FullyErasedPage(t *testing.T) {
	page, err := DecodePage(bytes.Repeat([]byte{0xff}, PageSize))

	require.NoError(t, err)
	assert.Equal(t, PageEmpty, page.State)
	assert.Empty(t, page.Entries)
	assert.Empty(t, page.Warnings)
}

func TestDecodePage_SkipsNonDataStates(t *testing.T) {
	for _, state := range []PageState{PageCorrupted, PageErasing, PageEmpty} {
		t.Run(state.String(), func(t *testing.T) {
			b := newPageBuilder(state, 1)
			// Entry bytes on a skipped page must never be interpreted.
			b.addScalar(1, TypeUint8, "x", []byte{1}, EntryWritten)

			page, err := DecodePage(b.bytes())

			require.NoError(t, err)
			assert.Empty(t, page.Entries)
		})
	}
}

func TestDecodePage_UnknownStateWarns(t *testing.T) {
	b := newPageBuilder(PageState(0x12345678), 1)

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	require.Len(t, page.Warnings, 1)
	assert.Equal(t, WarnStructural, page.Warnings[0].Kind)
}

func TestDecodePage_DecodesEntries(t *testing.T) {
	b := newPageBuilder(PageActive, 7)
	b.addScalar(1, TypeUint8, "mode", []byte{3}, EntryWritten)
	b.addVarlen(1, TypeString, "ssid", []byte("home\x00"), EntryWritten)
	b.addScalar(1, TypeInt32, "offset", u32data(0xffffffff), EntryErased)

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	assert.Empty(t, page.Warnings)
	assert.Equal(t, PageActive, page.State)
	assert.Equal(t, uint32(7), page.SeqNum)
	require.Len(t, page.Entries, 3)
	assert.Equal(t, "mode", page.Entries[0].Key)
	assert.Equal(t, StringValue("home"), page.Entries[1].Value)
	assert.Equal(t, EntryErased, page.Entries[2].State)
}

func TestDecodePage_SpanAccountsForAllSlots(t *testing.T) {
	b := newPageBuilder(PageFull, 1)
	b.addScalar(1, TypeUint8, "a", []byte{1}, EntryWritten)
	b.addVarlen(1, TypeBlobData, "b", bytes.Repeat([]byte{0xab}, 100), EntryWritten)
	b.addScalar(1, TypeUint64, "c", u64data(5), EntryWritten)

	page, err := DecodePage(b.bytes())
	require.NoError(t, err)

	used := 0
	for _, e := range page.Entries {
		used += int(e.Span)
	}
	states := decodeStateBitmap(b.bytes()[32:64])
	empty := 0
	for _, s := range states {
		if s == EntryEmpty {
			empty++
		}
	}
	assert.Equal(t, NumEntries, used+empty)
}

func TestDecodePage_SpanningValueConsumesSlots(t *testing.T) {
	// A 100-byte blob spans 1 header slot + 4 payload slots. The payload
	// slots are marked written in the bitmap but must not be re-interpreted
	// as independent entries.
	b := newPageBuilder(PageActive, 1)
	b.addVarlen(1, TypeBlobData, "blob", bytes.Repeat([]byte{0x55}, 100), EntryWritten)

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, uint8(5), page.Entries[0].Span)
}

func TestDecodePage_InvalidBitmapStateSkipsOneSlot(t *testing.T) {
	b := newPageBuilder(PageActive, 1)
	b.addScalar(1, TypeUint8, "a", []byte{1}, EntryWritten)
	b.setState(1, EntryState(1))
	b.slot++
	b.addScalar(1, TypeUint8, "b", []byte{2}, EntryWritten)

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "b", page.Entries[1].Key)
	require.Len(t, page.Warnings, 1)
	assert.Equal(t, WarnStructural, page.Warnings[0].Kind)
	assert.Equal(t, 1, page.Warnings[0].Slot)
}

func TestDecodePage_ZeroSpanClampGuaranteesProgress(t *testing.T) {
	b := newPageBuilder(PageActive, 1)
	raw := makeSlot(1, TypeUint8, 0, 0xff, "stuck", []byte{1})
	b.putSlot(0, raw, EntryWritten)
	b.slot++
	b.addScalar(1, TypeUint8, "next", []byte{2}, EntryWritten)

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, uint8(1), page.Entries[0].Span)
	assert.Equal(t, "next", page.Entries[1].Key)
}

func TestDecodePage_SpanPastEndOfPageStopsDecoding(t *testing.T) {
	b := newPageBuilder(PageActive, 1)
	raw := makeSlot(1, TypeUint8, 200, 0xff, "wild", []byte{1})
	b.putSlot(0, raw, EntryWritten)
	b.slot++
	b.addScalar(1, TypeUint8, "after", []byte{2}, EntryWritten)

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	require.Len(t, page.Warnings, 1)
	assert.Contains(t, page.Warnings[0].Msg, "rest of page skipped")
}

func TestDecodePage_TruncatedPayloadStopsDecoding(t *testing.T) {
	b := newPageBuilder(PageActive, 1)
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:2], 5000) // larger than the page
	raw := makeSlot(1, TypeBlobData, 2, 0xff, "huge", data)
	b.putSlot(0, raw, EntryWritten)

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	require.Len(t, page.Warnings, 1)
	assert.Equal(t, WarnStructural, page.Warnings[0].Kind)
}

func TestDecodePage_HeaderCRCMismatchWarnsAndContinues(t *testing.T) {
	b := newPageBuilder(PageActive, 1)
	b.addScalar(1, TypeUint8, "k", []byte{1}, EntryWritten)
	b.bytes()[28] ^= 0xff // corrupt the stored header CRC

	page, err := DecodePage(b.bytes())

	require.NoError(t, err)
	require.Len(t, page.Warnings, 1)
	assert.Equal(t, WarnIntegrity, page.Warnings[0].Kind)
	assert.Len(t, page.Entries, 1)
}
