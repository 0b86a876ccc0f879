// Package nvs decodes the ESP32 NVS (Non Volatile Storage) partition format
// from a raw flash dump.
//
// An NVS partition is organized into 4096-byte pages. Each page starts with a
// 32-byte header and a 32-byte entry state bitmap, followed by up to 126
// fixed-size 32-byte entries. String and blob values span multiple
// consecutive entries; their payload trails the header entry.
//
// # Page Format
//
// The page header layout is:
//
//	[State(4)][SequenceNumber(4)][Version(1)][Reserved(19)][CRC32(4)]
//
// State is one of five 32-bit sentinel values (corrupted, erasing, full,
// active, empty). Only active and full pages carry entries; every other
// state is skipped without error. The header CRC32 covers the sequence
// number, version and reserved bytes, not the state field.
//
// # Entry Format
//
// Each 32-byte entry slot is laid out as:
//
//	[Namespace(1)][Type(1)][Span(1)][ChunkIndex(1)][CRC32(4)][Key(16)][Data(8)]
//
// The entry CRC32 covers the slot bytes excluding the stored CRC itself.
// For strings and blob data the 8 data bytes hold the payload size and a
// separate payload CRC32; the payload occupies the following
// ceil(size/32) slots.
//
// # Error Handling
//
// The decoder never fails fatally on a malformed partition. Structural
// problems (unknown type tags, invalid bitmap states, truncated payloads,
// partial trailing pages) and integrity problems (CRC mismatches) are
// collected as Warnings on the ScanResult and decoding continues with a
// safe substitute. Flash dumps routinely mix live, stale and bit-rotted
// generations, so best-effort extraction wins over strict validation.
//
// # Usage
//
//	result := nvs.Scan(partitionBytes, nvs.DefaultOptions())
//	for _, rec := range result.Records {
//	    fmt.Printf("%s %s=%s\n", rec.Namespace, rec.Key, rec.Value)
//	}
//
// Scanning the same buffer twice yields identical output; the namespace
// table is scoped to one Scan call, so concurrent scans of different
// partitions never interfere.
package nvs
