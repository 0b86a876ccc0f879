// Package parttable reads the ESP32 partition table from a full flash dump
// and slices out the partitions it describes.
//
// The table conventionally lives at flash offset 0x8000. Each 32-byte entry
// starts with the magic bytes 0xaa 0x50 and carries the partition type,
// subtype, address, size, label and flags. After the last entry an optional
// MD5 record (magic 0xeb 0xeb) holds a digest of the preceding table bytes.
package parttable

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
)

const (
	entrySize = 32

	entryMagic    = 0x50aa
	checksumMagic = 0xebeb

	// TableOffset is the conventional flash offset of the partition table.
	TableOffset = 0x8000

	// BootloaderOffset is the conventional flash offset of the second-stage
	// bootloader image.
	BootloaderOffset = 0x1000
)

// Type is the top-level partition type.
type Type uint8

const (
	TypeApp     Type = 0x00
	TypeData    Type = 0x01
	TypeUser    Type = 0x40 // 0x40–0xfe are user-defined
	TypeUnknown Type = 0xff
)

// Classify normalizes a raw type byte: user-defined values collapse to
// TypeUser, anything else outside the defined set to TypeUnknown.
func Classify(raw uint8) Type {
	switch {
	case raw == uint8(TypeApp):
		return TypeApp
	case raw == uint8(TypeData):
		return TypeData
	case raw >= uint8(TypeUser) && raw < uint8(TypeUnknown):
		return TypeUser
	}
	return TypeUnknown
}

func (t Type) String() string {
	switch t {
	case TypeApp:
		return "app"
	case TypeData:
		return "data"
	case TypeUser:
		return "user"
	}
	return "unknown"
}

// appSubTypes and dataSubTypes name the defined subtype values per type.
var appSubTypes = map[uint8]string{
	0x00: "factory",
	0x10: "ota_0", 0x11: "ota_1", 0x12: "ota_2", 0x13: "ota_3",
	0x14: "ota_4", 0x15: "ota_5", 0x16: "ota_6", 0x17: "ota_7",
	0x18: "ota_8", 0x19: "ota_9", 0x1a: "ota_10", 0x1b: "ota_11",
	0x1c: "ota_12", 0x1d: "ota_13", 0x1e: "ota_14", 0x1f: "ota_15",
}

var dataSubTypes = map[uint8]string{
	0x00: "ota",
	0x01: "phy",
	0x02: "nvs",
	0x03: "coredump",
	0x04: "nvs_keys",
	0x05: "efuse",
	0x06: "undefined",
	0x81: "fat",
	0x82: "spiffs",
	0x83: "littlefs",
}

// SubTypeNVS is the data subtype value marking an NVS partition.
const SubTypeNVS = 0x02

// Partition is one entry of the partition table.
type Partition struct {
	Type    Type
	SubType uint8
	Addr    uint32
	Size    uint32
	Label   string
	Flags   uint32
}

// SubTypeName returns the defined subtype name, or "unknown" for values
// outside the defined set.
func (p Partition) SubTypeName() string {
	switch p.Type {
	case TypeApp:
		if name, ok := appSubTypes[p.SubType]; ok {
			return name
		}
	case TypeData:
		if name, ok := dataSubTypes[p.SubType]; ok {
			return name
		}
	case TypeUser:
		return "user"
	}
	return "unknown"
}

// IsNVS reports whether the partition holds an NVS data region.
func (p Partition) IsNVS() bool {
	return p.Type == TypeData && p.SubType == SubTypeNVS
}

// Slice returns the partition's byte range within the flash image, or an
// error when the table entry points past the end of the dump.
func (p Partition) Slice(flash []byte) ([]byte, error) {
	end := int64(p.Addr) + int64(p.Size)
	if end > int64(len(flash)) {
		return nil, fmt.Errorf("partition %q: range 0x%x-0x%x exceeds flash image of %d bytes", p.Label, p.Addr, end, len(flash))
	}
	return flash[p.Addr:end], nil
}

// Table is the decoded partition table.
type Table struct {
	Partitions []Partition
	Warnings   []string
}

// Read decodes the partition table at offset within the flash image. It
// walks entries until the first one without the entry magic, then checks
// the optional MD5 record; a digest mismatch is a warning, not an error,
// since the entries themselves already parsed.
func Read(flash []byte, offset int) (*Table, error) {
	if offset < 0 || offset+entrySize > len(flash) {
		return nil, fmt.Errorf("partition table offset 0x%x out of range for %d-byte image", offset, len(flash))
	}

	t := &Table{}
	pos := offset
	for pos+entrySize <= len(flash) && binary.LittleEndian.Uint16(flash[pos:pos+2]) == entryMagic {
		entry := flash[pos : pos+entrySize]
		t.Partitions = append(t.Partitions, Partition{
			Type:    Classify(entry[2]),
			SubType: entry[3],
			Addr:    binary.LittleEndian.Uint32(entry[4:8]),
			Size:    binary.LittleEndian.Uint32(entry[8:12]),
			Label:   string(bytes.TrimRight(entry[12:28], "\x00")),
			Flags:   binary.LittleEndian.Uint32(entry[28:32]),
		})
		pos += entrySize
	}

	if len(t.Partitions) == 0 {
		return nil, fmt.Errorf("no partition table entries at offset 0x%x", offset)
	}

	if pos+entrySize <= len(flash) && binary.LittleEndian.Uint16(flash[pos:pos+2]) == checksumMagic {
		digest := md5.Sum(flash[offset:pos])
		if !bytes.Equal(digest[:], flash[pos+16:pos+32]) {
			t.Warnings = append(t.Warnings, fmt.Sprintf("partition table MD5 mismatch at offset 0x%x", offset))
		}
	}

	return t, nil
}
