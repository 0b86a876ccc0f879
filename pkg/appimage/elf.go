package appimage

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	elfHeaderSize = 0x34
	progEntrySize = 0x20

	machineXtensa = 0x5e
)

// WriteELF writes the image as a 32-bit little-endian Xtensa executable.
// The file contains only the ELF header, the program header table and the
// segment bytes; there is no section header table or string table, which is
// all a disassembler needs to load the carved code.
func (img *Image) WriteELF(w io.Writer) error {
	var header [elfHeaderSize]byte
	copy(header[0:4], "\x7fELF")
	header[4] = 1 // 32-bit
	header[5] = 1 // little-endian
	header[6] = 1 // ELF version
	binary.LittleEndian.PutUint16(header[16:18], 2) // ET_EXEC
	binary.LittleEndian.PutUint16(header[18:20], machineXtensa)
	binary.LittleEndian.PutUint32(header[20:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], img.Entry)
	binary.LittleEndian.PutUint32(header[28:32], elfHeaderSize) // program header offset
	binary.LittleEndian.PutUint32(header[36:40], 0x300)         // Xtensa-specific flags
	binary.LittleEndian.PutUint16(header[40:42], elfHeaderSize)
	binary.LittleEndian.PutUint16(header[42:44], progEntrySize)
	binary.LittleEndian.PutUint16(header[44:46], uint16(len(img.Segments)))
	binary.LittleEndian.PutUint16(header[46:48], 0x28) // section entry size, no sections follow

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing ELF header: %w", err)
	}

	// Segment bytes follow the ELF header and program header table.
	offset := uint32(elfHeaderSize + len(img.Segments)*progEntrySize)
	for _, seg := range img.Segments {
		var entry [progEntrySize]byte
		binary.LittleEndian.PutUint32(entry[0:4], 1) // PT_LOAD
		binary.LittleEndian.PutUint32(entry[4:8], offset)
		binary.LittleEndian.PutUint32(entry[8:12], seg.Addr)  // vaddr
		binary.LittleEndian.PutUint32(entry[12:16], seg.Addr) // paddr
		binary.LittleEndian.PutUint32(entry[16:20], uint32(len(seg.Data)))
		binary.LittleEndian.PutUint32(entry[20:24], uint32(len(seg.Data)))
		binary.LittleEndian.PutUint32(entry[24:28], 7) // rwx
		if _, err := w.Write(entry[:]); err != nil {
			return fmt.Errorf("writing program header: %w", err)
		}
		offset += uint32(len(seg.Data))
	}

	for _, seg := range img.Segments {
		if _, err := w.Write(seg.Data); err != nil {
			return fmt.Errorf("writing segment at 0x%x: %w", seg.Addr, err)
		}
	}

	return nil
}
