// Package appimage parses ESP32 application images (bootloader and app
// partitions) and converts them to ELF files for analysis.
//
// An app image starts with an 8-byte header (magic 0xe9, segment count,
// flash mode and size/frequency, entry point) and a 16-byte extended
// header, followed by the load segments. After the last segment, an XOR
// checksum byte sits at the next 16-byte boundary minus one, optionally
// followed by a SHA-256 digest of everything before it.
package appimage

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const (
	magic = 0xe9

	headerSize    = 8
	extHeaderSize = 16

	// checksumSeed is the initial value the segment bytes are XORed into.
	checksumSeed = 0xef
)

// Segment is one loadable region of the image.
type Segment struct {
	Addr uint32
	Data []byte
}

// Image is a parsed app image.
type Image struct {
	Entry    uint32
	ChipID   uint16
	Segments []Segment
	Warnings []string
}

// Parse decodes an app image from the start of data. Integrity failures
// (checksum or hash mismatch) decode with a warning; a malformed header or
// truncated segment is an error because nothing useful can be carved out.
func Parse(data []byte) (*Image, error) {
	if len(data) < headerSize+extHeaderSize {
		return nil, fmt.Errorf("app image too short: %d bytes", len(data))
	}
	if data[0] != magic {
		return nil, fmt.Errorf("bad app image magic 0x%02x, want 0x%02x", data[0], magic)
	}

	numSegments := int(data[1])
	if numSegments == 0 {
		return nil, fmt.Errorf("app image has no segments")
	}

	img := &Image{
		Entry:  binary.LittleEndian.Uint32(data[4:8]),
		ChipID: binary.LittleEndian.Uint16(data[12:14]),
	}
	hasHash := data[23] != 0

	offset := headerSize + extHeaderSize
	for i := 0; i < numSegments; i++ {
		if offset+8 > len(data) {
			return nil, fmt.Errorf("segment %d header truncated at offset 0x%x", i, offset)
		}
		addr := binary.LittleEndian.Uint32(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8

		if offset+size > len(data) {
			return nil, fmt.Errorf("segment %d data truncated: %d bytes at offset 0x%x", i, size, offset)
		}
		if size > 0 {
			img.Segments = append(img.Segments, Segment{Addr: addr, Data: data[offset : offset+size]})
			offset += size
		}
	}

	// The checksum byte sits one before the next 16-byte boundary.
	offset += 15 - offset%16
	if offset >= len(data) {
		return nil, fmt.Errorf("app image truncated before checksum at offset 0x%x", offset)
	}
	if data[offset] != img.checksum() {
		img.Warnings = append(img.Warnings, fmt.Sprintf("segment checksum mismatch: stored 0x%02x, computed 0x%02x", data[offset], img.checksum()))
	}
	offset++

	if hasHash {
		if offset+sha256.Size > len(data) {
			img.Warnings = append(img.Warnings, "app image truncated before SHA-256 digest")
			return img, nil
		}
		digest := sha256.Sum256(data[:offset])
		stored := data[offset : offset+sha256.Size]
		for i := range digest {
			if digest[i] != stored[i] {
				img.Warnings = append(img.Warnings, "SHA-256 digest mismatch")
				break
			}
		}
	}

	return img, nil
}

// checksum XORs every segment byte into the seed value.
func (img *Image) checksum() byte {
	sum := byte(checksumSeed)
	for _, seg := range img.Segments {
		for _, b := range seg.Data {
			sum ^= b
		}
	}
	return sum
}
