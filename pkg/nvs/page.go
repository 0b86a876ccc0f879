package nvs

import (
	"encoding/binary"
	"fmt"
)

// Page is one decoded 4096-byte page. Entries is empty for every state
// other than active and full.
type Page struct {
	State    PageState
	SeqNum   uint32 // logical ordering key, not the physical offset
	Version  uint8
	CRC      uint32
	Entries  []Entry
	Warnings []Warning
}

// ErrPageSize reports a page slice that is not exactly PageSize bytes.
var ErrPageSize = fmt.Errorf("nvs: page must be exactly %d bytes", PageSize)

// DecodePage interprets one page: header, entry state bitmap, then up to
// 126 entry slots. Pages whose state is not active or full are structurally
// skipped — they decode to a page with no entries and no warnings.
//
// The slot cursor always advances by at least one slot per iteration, even
// when an entry reports a span of zero, so decoding terminates on any
// input.
func DecodePage(pageData []byte) (*Page, error) {
	if len(pageData) != PageSize {
		return nil, ErrPageSize
	}

	p := &Page{
		State:   PageState(binary.LittleEndian.Uint32(pageData[0:4])),
		SeqNum:  binary.LittleEndian.Uint32(pageData[4:8]),
		Version: pageData[8],
		CRC:     binary.LittleEndian.Uint32(pageData[28:32]),
	}

	if !p.State.known() {
		p.warn(WarnStructural, -1, fmt.Sprintf("unknown page state 0x%08x", uint32(p.State)))
		return p, nil
	}
	if p.State != PageActive && p.State != PageFull {
		return p, nil
	}

	if got := headerChecksum(pageData); got != p.CRC {
		p.warn(WarnIntegrity, -1, fmt.Sprintf("page header CRC mismatch: stored 0x%08x, computed 0x%08x", p.CRC, got))
	}

	states := decodeStateBitmap(pageData[32 : 32+bitmapSize])

	for slot := 0; slot < NumEntries; {
		state := states[slot]
		if state == EntryEmpty {
			slot++
			continue
		}
		if !state.valid() {
			p.warn(WarnStructural, slot, fmt.Sprintf("invalid bitmap state %d", uint8(state)))
			slot++
			continue
		}

		// Header and bitmap occupy the first two slot-sized blocks.
		off := (slot + 2) * EntrySize
		entry, warns, err := decodeEntry(pageData[off:off+EntrySize], pageData[off+EntrySize:], state)
		for _, w := range warns {
			p.warn(w.Kind, slot, w.Msg)
		}
		if err != nil {
			p.warn(WarnStructural, slot, fmt.Sprintf("entry %q: %v; rest of page skipped", entry.Key, err))
			break
		}

		span := int(entry.Span)
		if span < 1 {
			// Forward-progress clamp: a malformed span of zero must never
			// stall the cursor.
			p.warn(WarnStructural, slot, "entry span 0 clamped to 1")
			span = 1
			entry.Span = 1
		}
		if slot+span > NumEntries {
			p.warn(WarnStructural, slot, fmt.Sprintf("entry %q: span %d exceeds remaining %d slots; rest of page skipped", entry.Key, span, NumEntries-slot))
			break
		}

		p.Entries = append(p.Entries, entry)
		slot += span
	}

	return p, nil
}

func (p *Page) warn(kind WarningKind, slot int, msg string) {
	p.Warnings = append(p.Warnings, Warning{Kind: kind, Page: -1, Slot: slot, Msg: msg})
}
