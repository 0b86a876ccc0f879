package nvs

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// pageBuilder assembles well-formed page images for tests. A fresh builder
// is a fully erased page image (all 0xff) with a valid header for the given
// state, which conveniently leaves every bitmap slot Empty.
type pageBuilder struct {
	data []byte
	slot int
}

func newPageBuilder(state PageState, seq uint32) *pageBuilder {
	data := bytes.Repeat([]byte{0xff}, PageSize)
	binary.LittleEndian.PutUint32(data[0:4], uint32(state))
	binary.LittleEndian.PutUint32(data[4:8], seq)
	data[8] = 0xfe // format version
	binary.LittleEndian.PutUint32(data[28:32], crc32.ChecksumIEEE(data[4:28]))
	return &pageBuilder{data: data}
}

func (b *pageBuilder) bytes() []byte { return b.data }

func (b *pageBuilder) setState(slot int, st EntryState) {
	shift := uint(slot%4) * 2
	b.data[32+slot/4] &^= 0x3 << shift
	b.data[32+slot/4] |= byte(st) << shift
}

// putSlot writes raw slot bytes and marks the slot's bitmap state.
func (b *pageBuilder) putSlot(slot int, raw []byte, st EntryState) {
	copy(b.data[(slot+2)*EntrySize:], raw)
	b.setState(slot, st)
}

// addScalar appends a fixed-width entry at the next free slot and returns
// its slot index.
func (b *pageBuilder) addScalar(ns uint8, typ DataType, key string, data []byte, st EntryState) int {
	slot := b.slot
	b.putSlot(slot, makeSlot(ns, typ, 1, 0xff, key, data), st)
	b.slot++
	return slot
}

// addVarlen appends a string or blob entry with its payload slots and
// returns the header slot index.
func (b *pageBuilder) addVarlen(ns uint8, typ DataType, key string, payload []byte, st EntryState) int {
	slot := b.slot
	span := 1 + (len(payload)+EntrySize-1)/EntrySize

	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:2], uint16(len(payload)))
	binary.LittleEndian.PutUint32(data[4:8], crc32.ChecksumIEEE(payload))
	b.putSlot(slot, makeSlot(ns, typ, uint8(span), 0xff, key, data), st)

	copy(b.data[(slot+3)*EntrySize:], payload)
	for i := 1; i < span; i++ {
		b.setState(slot+i, st)
	}
	b.slot += span
	return slot
}

// makeSlot builds one 32-byte entry slot with a correct metadata CRC.
func makeSlot(ns uint8, typ DataType, span, chunk uint8, key string, data []byte) []byte {
	slot := make([]byte, EntrySize)
	slot[0] = ns
	slot[1] = byte(typ)
	slot[2] = span
	slot[3] = chunk
	copy(slot[8:24], key)
	copy(slot[24:32], data)
	binary.LittleEndian.PutUint32(slot[4:8], entryChecksum(slot))
	return slot
}

func u16data(v uint16) []byte {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data, v)
	return data
}

func u32data(v uint32) []byte {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, v)
	return data
}

func u64data(v uint64) []byte {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, v)
	return data
}
