package nvs

import "fmt"

const (
	// PageSize is the size in bytes of one NVS page, the unit of erase state.
	PageSize = 4096

	// EntrySize is the size in bytes of one entry slot within a page.
	EntrySize = 32

	// NumEntries is the number of entry slots per page. The page header and
	// the state bitmap occupy the space of the first two slots.
	NumEntries = 126
)

// PageState describes the lifecycle state of one page. The states are
// encoded as specific 32-bit sentinel values, not a dense range.
type PageState uint32

const (
	PageCorrupted PageState = 0x00000000
	PageErasing   PageState = 0xfffffff8
	PageFull      PageState = 0xfffffffc
	PageActive    PageState = 0xfffffffe
	PageEmpty     PageState = 0xffffffff
)

// String returns the state name, or a hex rendering for values outside the
// defined sentinel set.
func (s PageState) String() string {
	switch s {
	case PageCorrupted:
		return "Corrupted"
	case PageErasing:
		return "Erasing"
	case PageFull:
		return "Full"
	case PageActive:
		return "Active"
	case PageEmpty:
		return "Empty"
	}
	return fmt.Sprintf("unknown(0x%08x)", uint32(s))
}

// known reports whether s is one of the five defined sentinels.
func (s PageState) known() bool {
	switch s {
	case PageCorrupted, PageErasing, PageFull, PageActive, PageEmpty:
		return true
	}
	return false
}

// EntryState is the per-slot liveness state from the page bitmap. The
// bitmap packs one 2-bit state per slot; the value 1 is not a valid state
// and is rejected at the entry boundary.
type EntryState uint8

const (
	EntryErased  EntryState = 0
	EntryWritten EntryState = 2
	EntryEmpty   EntryState = 3
)

// String returns the state name used in rendered output.
func (s EntryState) String() string {
	switch s {
	case EntryErased:
		return "Erased"
	case EntryWritten:
		return "Written"
	case EntryEmpty:
		return "Empty"
	}
	return fmt.Sprintf("invalid(%d)", uint8(s))
}

func (s EntryState) valid() bool {
	return s == EntryErased || s == EntryWritten || s == EntryEmpty
}

// DataType is the closed set of value type tags stored in an entry header.
// Tags outside this set decode with a warning and an absent value.
type DataType uint8

const (
	TypeUint8     DataType = 0x01
	TypeUint16    DataType = 0x02
	TypeUint32    DataType = 0x04
	TypeUint64    DataType = 0x08
	TypeInt8      DataType = 0x11
	TypeInt16     DataType = 0x12
	TypeInt32     DataType = 0x14
	TypeInt64     DataType = 0x18
	TypeString    DataType = 0x21
	TypeBlobData  DataType = 0x42
	TypeBlobIndex DataType = 0x48
)

// String returns the tag name. The names match the type names the firmware
// uses, so rendered output lines up with other NVS tooling.
func (t DataType) String() string {
	switch t {
	case TypeUint8:
		return "uint8_t"
	case TypeUint16:
		return "uint16_t"
	case TypeUint32:
		return "uint32_t"
	case TypeUint64:
		return "uint64_t"
	case TypeInt8:
		return "int8_t"
	case TypeInt16:
		return "int16_t"
	case TypeInt32:
		return "int32_t"
	case TypeInt64:
		return "int64_t"
	case TypeString:
		return "string"
	case TypeBlobData:
		return "blob_data"
	case TypeBlobIndex:
		return "blob_index"
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(t))
}

// WarningKind classifies decode warnings.
type WarningKind int

const (
	// WarnStructural covers malformed structure: unknown type tags, invalid
	// bitmap states, truncated payloads, partial trailing pages, unresolved
	// namespace ids.
	WarnStructural WarningKind = iota

	// WarnIntegrity covers checksum mismatches on otherwise parseable data.
	WarnIntegrity
)

func (k WarningKind) String() string {
	if k == WarnIntegrity {
		return "integrity"
	}
	return "structural"
}

// Warning describes one non-fatal decode problem. Warnings are collected
// alongside the decoded records; they are never returned as errors because
// the scan must continue past corruption.
type Warning struct {
	Kind WarningKind
	Page int // physical page index, -1 if not page-scoped
	Slot int // slot index within the page, -1 if not slot-scoped
	Msg  string
}

func (w Warning) String() string {
	switch {
	case w.Slot >= 0:
		return fmt.Sprintf("page %d slot %d: %s", w.Page, w.Slot, w.Msg)
	case w.Page >= 0:
		return fmt.Sprintf("page %d: %s", w.Page, w.Msg)
	}
	return w.Msg
}

// Record is one decoded key-value pair in the final output stream.
type Record struct {
	State     EntryState
	Type      DataType
	Size      uint32
	Namespace string
	Key       string
	Value     Value
}
