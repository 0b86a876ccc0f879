package nvs

import "hash/crc32"

// headerChecksum computes the page header CRC32 over the sequence number,
// version and reserved bytes. The state field and the stored CRC are
// excluded.
func headerChecksum(page []byte) uint32 {
	return crc32.ChecksumIEEE(page[4:28])
}

// entryChecksum computes the entry CRC32 over the slot bytes, skipping the
// stored CRC at offset 4.
func entryChecksum(slot []byte) uint32 {
	crc := crc32.ChecksumIEEE(slot[0:4])
	return crc32.Update(crc, crc32.IEEETable, slot[8:EntrySize])
}

// payloadChecksum computes the CRC32 of a string or blob payload, verified
// against the dataCrc stored in the entry header.
func payloadChecksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}
