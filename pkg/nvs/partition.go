package nvs

import (
	"fmt"
	"sort"
)

// Options selects which entry states appear in the scanned record stream.
type Options struct {
	IncludeWritten bool
	IncludeErased  bool
}

// DefaultOptions includes written entries and omits erased ones.
func DefaultOptions() Options {
	return Options{IncludeWritten: true}
}

// ScanResult is the output of one partition scan: the decoded records in
// logical order and every warning raised along the way.
type ScanResult struct {
	Records  []Record
	Warnings []Warning
}

// Scan decodes a full NVS partition image.
//
// The partition is split into 4096-byte pages; a trailing partial page is
// reported and dropped. Active and full pages are ordered by their logical
// sequence number (stable on ties, which are themselves surfaced as a
// warning) and their entries are flattened in slot order. The namespace
// table is threaded through that committed order, so a record's namespace
// name reflects every definition that precedes it logically; a reference
// with no preceding definition resolves to a placeholder with a warning.
//
// Scan never fails: a partition with no active or full pages yields an
// empty record stream.
func Scan(partition []byte, opts Options) *ScanResult {
	res := &ScanResult{}

	numPages := len(partition) / PageSize
	if rem := len(partition) % PageSize; rem != 0 {
		res.warn(Warning{
			Kind: WarnStructural,
			Page: numPages, Slot: -1,
			Msg: fmt.Sprintf("partition length %d is not a multiple of the page size; trailing %d bytes dropped", len(partition), rem),
		})
	}

	type scannedPage struct {
		index int // physical page index
		page  *Page
	}
	var pages []scannedPage

	for i := 0; i < numPages; i++ {
		page, err := DecodePage(partition[i*PageSize : (i+1)*PageSize])
		if err != nil {
			// Unreachable for full windows; kept for the contract.
			res.warn(Warning{Kind: WarnStructural, Page: i, Slot: -1, Msg: err.Error()})
			continue
		}
		for _, w := range page.Warnings {
			w.Page = i
			res.warn(w)
		}
		if page.State == PageActive || page.State == PageFull {
			pages = append(pages, scannedPage{index: i, page: page})
		}
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].page.SeqNum < pages[j].page.SeqNum
	})
	for i := 1; i < len(pages); i++ {
		if pages[i].page.SeqNum == pages[i-1].page.SeqNum {
			res.warn(Warning{
				Kind: WarnStructural,
				Page: pages[i].index, Slot: -1,
				Msg: fmt.Sprintf("duplicate page sequence number %d (also page %d); keeping physical order", pages[i].page.SeqNum, pages[i-1].index),
			})
		}
	}

	table := NewNamespaceTable()
	for _, sp := range pages {
		for _, entry := range sp.page.Entries {
			if entry.Namespace == 0 && entry.State != EntryEmpty {
				if id, ok := namespaceID(entry.Value); ok {
					table.Define(id, entry.Key)
				} else {
					res.warn(Warning{
						Kind: WarnStructural,
						Page: sp.index, Slot: -1,
						Msg: fmt.Sprintf("namespace entry %q has non-scalar type %s", entry.Key, entry.Type),
					})
				}
			}

			name, ok := table.Resolve(entry.Namespace)
			if !ok {
				name = Placeholder(entry.Namespace)
				res.warn(Warning{
					Kind: WarnStructural,
					Page: sp.index, Slot: -1,
					Msg: fmt.Sprintf("entry %q references undefined namespace id %d", entry.Key, entry.Namespace),
				})
			}

			if (entry.State == EntryWritten && !opts.IncludeWritten) ||
				(entry.State == EntryErased && !opts.IncludeErased) {
				continue
			}
			res.Records = append(res.Records, Record{
				State:     entry.State,
				Type:      entry.Type,
				Size:      entry.Size,
				Namespace: name,
				Key:       entry.Key,
				Value:     entry.Value,
			})
		}
	}

	return res
}

func (r *ScanResult) warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// namespaceID extracts the namespace id a defining entry binds, which is
// its integer scalar value.
func namespaceID(v Value) (uint8, bool) {
	switch v := v.(type) {
	case UintValue:
		return uint8(v), true
	case IntValue:
		return uint8(v), true
	}
	return 0, false
}
