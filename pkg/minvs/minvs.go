// Package minvs decodes the flat key-value storage format found on
// Xiaomi/Yeelight ESP32 devices. Unlike the paged NVS layout, this variant
// is a single linear append log of variable-length entries with no paging,
// bitmaps or spanning values.
//
// Each entry starts with a 16-byte header:
//
//	[Magic(2)=0xaa55][State(2)][CRC32(4)][DataLen(2)][SeqNum(2)][KeyLen(1)][Pad(3)=0xff]
//
// followed by the key bytes and the value bytes. A state of 0xffff marks a
// written entry, 0xfffe an erased one. The scan stops at the first entry
// with a bad magic number or an all-ones sequence number.
package minvs

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

const (
	headerSize = 16
	magic      = 0xaa55
)

// EntryState marks an entry as written or erased.
type EntryState uint16

const (
	StateErased  EntryState = 0xfffe
	StateWritten EntryState = 0xffff
)

func (s EntryState) String() string {
	switch s {
	case StateErased:
		return "Erased"
	case StateWritten:
		return "Written"
	}
	return fmt.Sprintf("unknown(0x%04x)", uint16(s))
}

// Entry is one decoded key-value pair.
type Entry struct {
	SeqNum   uint16
	State    EntryState
	CRC      uint32
	DataSize uint16
	Key      string
	Value    string // rendered: the text itself, or b'<hex>' if not printable
	size     int    // total encoded size, header + key + value
}

// Warning describes a non-fatal decode problem.
type Warning struct {
	Offset int
	Msg    string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset 0x%x: %s", w.Offset, w.Msg)
}

// Options selects which entry states appear in the scan result.
type Options struct {
	IncludeWritten bool
	IncludeErased  bool
}

// DefaultOptions includes written entries and omits erased ones.
func DefaultOptions() Options {
	return Options{IncludeWritten: true}
}

// ScanResult is the output of one scan over a Mi partition image.
type ScanResult struct {
	Entries  []Entry
	Warnings []Warning
}

// Scan walks the linear entry log from the start of the partition image.
// Entries appear in log order. Malformed headers end the scan without
// error; whatever decoded up to that point is returned.
func Scan(partition []byte, opts Options) *ScanResult {
	res := &ScanResult{}

	offset := 0
	for offset+headerSize <= len(partition) {
		entry, warns, ok := decodeEntry(partition[offset:])
		for _, w := range warns {
			w.Offset += offset
			res.Warnings = append(res.Warnings, w)
		}
		if !ok {
			break
		}

		if (entry.State == StateWritten && opts.IncludeWritten) ||
			(entry.State == StateErased && opts.IncludeErased) {
			res.Entries = append(res.Entries, entry)
		}
		offset += entry.size
	}

	return res
}

// decodeEntry parses one entry at the start of data. ok is false when the
// bytes do not begin a valid entry, which marks the end of the log.
func decodeEntry(data []byte) (Entry, []Warning, bool) {
	if binary.LittleEndian.Uint16(data[0:2]) != magic {
		return Entry{}, nil, false
	}

	e := Entry{
		State:    EntryState(binary.LittleEndian.Uint16(data[2:4])),
		CRC:      binary.LittleEndian.Uint32(data[4:8]),
		DataSize: binary.LittleEndian.Uint16(data[8:10]),
		SeqNum:   binary.LittleEndian.Uint16(data[10:12]),
	}
	keyLen := int(data[12])

	// An all-ones sequence number is erased flash, not an entry.
	if e.SeqNum == 0xffff {
		return Entry{}, nil, false
	}

	var warns []Warning
	if data[13] != 0xff || data[14] != 0xff || data[15] != 0xff {
		warns = append(warns, Warning{
			Msg: fmt.Sprintf("unexpected header padding %02x %02x %02x, want ff ff ff", data[13], data[14], data[15]),
		})
	}

	total := headerSize + keyLen + int(e.DataSize)
	if total > len(data) {
		warns = append(warns, Warning{
			Msg: fmt.Sprintf("entry %d: length %d runs past end of partition", e.SeqNum, total),
		})
		return Entry{}, warns, false
	}

	e.Key = string(data[headerSize : headerSize+keyLen])
	raw := data[headerSize+keyLen : total]
	if s := string(raw); printable(s) {
		e.Value = s
	} else {
		e.Value = "b'" + hex.EncodeToString(raw) + "'"
	}
	e.size = total

	return e, warns, true
}

// Fields returns the entry rendered as the CSV columns
// seqNum, state, size, name, value.
func (e Entry) Fields() []string {
	return []string{
		strconv.Itoa(int(e.SeqNum)),
		e.State.String(),
		strconv.Itoa(int(e.DataSize)),
		e.Key,
		e.Value,
	}
}

func printable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
