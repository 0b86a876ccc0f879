package nvs

import (
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Value is the decoded payload of an entry. The concrete type depends on
// the entry's DataType; an entry with an unknown type tag or an empty slot
// state carries a nil Value.
type Value interface {
	// String renders the value for output: decimal for integer scalars,
	// the text itself for strings, b'<hex>' for raw bytes.
	String() string

	isValue()
}

// IntValue holds a signed integer scalar (int8_t through int64_t).
type IntValue int64

func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (IntValue) isValue()         {}

// UintValue holds an unsigned integer scalar (uint8_t through uint64_t).
type UintValue uint64

func (v UintValue) String() string { return strconv.FormatUint(uint64(v), 10) }
func (UintValue) isValue()         {}

// StringValue holds a string payload that decoded as printable UTF-8.
type StringValue string

func (v StringValue) String() string { return string(v) }
func (StringValue) isValue()         {}

// BytesValue holds raw payload bytes: blob data, or a string payload whose
// bytes were not printable text. It renders as b'<hex>' so that raw bytes
// stay distinguishable from text in the output and can be re-parsed
// losslessly.
type BytesValue []byte

func (v BytesValue) String() string { return "b'" + hex.EncodeToString(v) + "'" }
func (BytesValue) isValue()         {}

// BlobIndexValue summarizes a chunked blob: the aggregate byte size and the
// number of blob_data chunk entries holding the bytes.
type BlobIndexValue struct {
	Size   uint32
	Chunks uint16
}

// String renders the chunk count, matching the value column other NVS
// tooling emits for blob indexes; the byte size is reported through the
// record's Size field.
func (v BlobIndexValue) String() string { return strconv.FormatUint(uint64(v.Chunks), 10) }
func (BlobIndexValue) isValue()         {}

// printable reports whether s is valid UTF-8 made of printable runes.
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
