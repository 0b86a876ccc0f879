package nvs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Entry is one decoded key-value pair occupying Span consecutive slots.
type Entry struct {
	Namespace  uint8 // namespace id; 0 means this entry defines a namespace
	Type       DataType
	Span       uint8 // slots consumed, including payload slots
	ChunkIndex uint8 // blob chunk ordinal, 0xff for non-chunked types
	CRC        uint32
	DataCRC    uint32 // payload checksum, strings and blob data only
	Size       uint32 // value size in bytes
	Key        string
	Value      Value
	State      EntryState
}

// errTruncatedPayload signals a string or blob payload that would extend
// past the end of its page. The page decoder converts it into a warning and
// stops walking that page, rather than reading into adjacent-page bytes.
var errTruncatedPayload = errors.New("payload extends past end of page")

// decodeEntry interprets one 32-byte slot and, for spanning values, the
// remaining bytes of the page that follow it.
//
// Failures are soft wherever the slot is still parseable: a metadata CRC
// mismatch or an unknown type tag yields a warning and a best-effort entry.
// Only a payload running past the page is returned as an error, since
// nothing after it on the page can be trusted.
func decodeEntry(slot, trailing []byte, state EntryState) (Entry, []Warning, error) {
	e := Entry{
		Namespace:  slot[0],
		Type:       DataType(slot[1]),
		Span:       slot[2],
		ChunkIndex: slot[3],
		CRC:        binary.LittleEndian.Uint32(slot[4:8]),
		Key:        string(bytes.TrimRight(slot[8:24], "\x00")),
		State:      state,
	}

	var warns []Warning
	if got := entryChecksum(slot); got != e.CRC {
		warns = append(warns, Warning{
			Kind: WarnIntegrity,
			Page: -1, Slot: -1,
			Msg: fmt.Sprintf("entry %q: CRC mismatch: stored 0x%08x, computed 0x%08x", e.Key, e.CRC, got),
		})
	}

	// Empty slots keep their header metadata for completeness but carry no
	// value.
	if state == EntryEmpty {
		return e, warns, nil
	}

	data := slot[24:32]

	switch e.Type {
	case TypeUint8:
		e.Size = 1
		e.Value = UintValue(data[0])
	case TypeUint16:
		e.Size = 2
		e.Value = UintValue(binary.LittleEndian.Uint16(data[0:2]))
	case TypeUint32:
		e.Size = 4
		e.Value = UintValue(binary.LittleEndian.Uint32(data[0:4]))
	case TypeUint64:
		e.Size = 8
		e.Value = UintValue(binary.LittleEndian.Uint64(data[0:8]))
	case TypeInt8:
		e.Size = 1
		e.Value = IntValue(int8(data[0]))
	case TypeInt16:
		e.Size = 2
		e.Value = IntValue(int16(binary.LittleEndian.Uint16(data[0:2])))
	case TypeInt32:
		e.Size = 4
		e.Value = IntValue(int32(binary.LittleEndian.Uint32(data[0:4])))
	case TypeInt64:
		e.Size = 8
		e.Value = IntValue(int64(binary.LittleEndian.Uint64(data[0:8])))

	case TypeString, TypeBlobData:
		size := binary.LittleEndian.Uint16(data[0:2])
		e.Size = uint32(size)
		e.DataCRC = binary.LittleEndian.Uint32(data[4:8])
		if int(size) > len(trailing) {
			return e, warns, errTruncatedPayload
		}
		payload := trailing[:size]
		if got := payloadChecksum(payload); got != e.DataCRC {
			warns = append(warns, Warning{
				Kind: WarnIntegrity,
				Page: -1, Slot: -1,
				Msg: fmt.Sprintf("entry %q: payload CRC mismatch: stored 0x%08x, computed 0x%08x", e.Key, e.DataCRC, got),
			})
		}
		if e.Type == TypeString {
			s := string(bytes.TrimRight(payload, "\x00"))
			if printable(s) {
				e.Value = StringValue(s)
			} else {
				// Fail soft to a lossless byte rendering.
				e.Value = BytesValue(payload)
			}
		} else {
			e.Value = BytesValue(payload)
		}
		if want := uint8(1 + (int(size)+EntrySize-1)/EntrySize); e.Span != want {
			warns = append(warns, Warning{
				Kind: WarnStructural,
				Page: -1, Slot: -1,
				Msg: fmt.Sprintf("entry %q: span %d does not match payload size %d (expected %d)", e.Key, e.Span, size, want),
			})
		}

	case TypeBlobIndex:
		e.Size = binary.LittleEndian.Uint32(data[0:4])
		e.Value = BlobIndexValue{
			Size:   e.Size,
			Chunks: binary.LittleEndian.Uint16(data[4:6]),
		}

	default:
		// Never guess a size for an unrecognized tag: under-skipping would
		// corrupt every subsequent offset on the page.
		warns = append(warns, Warning{
			Kind: WarnStructural,
			Page: -1, Slot: -1,
			Msg: fmt.Sprintf("entry %q: unknown data type 0x%02x", e.Key, slot[1]),
		})
		e.Size = 0
		e.Value = nil
		e.Span = 1
	}

	return e, warns, nil
}
