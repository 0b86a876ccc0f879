package nvs

// bitmapSize is the size in bytes of the entry state bitmap that follows
// the page header.
const bitmapSize = 32

// decodeStateBitmap unpacks the per-slot entry states from the 32-byte page
// bitmap. Each byte packs four 2-bit states, least-significant pair first.
// Invalid 2-bit patterns pass through unchanged; they are rejected when the
// slot is visited so that only the affected slot is skipped.
func decodeStateBitmap(bitmap []byte) [NumEntries]EntryState {
	var states [NumEntries]EntryState
	for i := range states {
		shift := uint(i%4) * 2
		states[i] = EntryState(bitmap[i/4] >> shift & 0x3)
	}
	return states
}
