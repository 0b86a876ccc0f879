// Package export renders decoded records as CSV, matching the column
// layout other NVS dump tooling produces so the output stays diffable.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/espcarve/espcarve/pkg/minvs"
	"github.com/espcarve/espcarve/pkg/nvs"
)

// nvsHeader is the column header for NVS record output.
var nvsHeader = []string{"status", "type", "size", "namespace", "name", "value"}

// miHeader is the column header for Mi flat-format output.
var miHeader = []string{"seqNum", "state", "size", "name", "value"}

// WriteNVS renders NVS records as CSV.
func WriteNVS(w io.Writer, records []nvs.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(nvsHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, rec := range records {
		value := ""
		if rec.Value != nil {
			value = rec.Value.String()
		}
		row := []string{
			rec.State.String(),
			rec.Type.String(),
			strconv.FormatUint(uint64(rec.Size), 10),
			rec.Namespace,
			rec.Key,
			value,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %q: %w", rec.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMi renders Mi flat-format entries as CSV.
func WriteMi(w io.Writer, entries []minvs.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(miHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(e.Fields()); err != nil {
			return fmt.Errorf("writing entry %q: %w", e.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
