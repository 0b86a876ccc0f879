package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/espcarve/espcarve/pkg/minvs"
	"github.com/espcarve/espcarve/pkg/nvs"
)

// RecordJSON is one decoded record in a decode response.
type RecordJSON struct {
	State     string `json:"state"`
	Type      string `json:"type"`
	Size      uint32 `json:"size"`
	Namespace string `json:"namespace,omitempty"`
	SeqNum    uint16 `json:"seq_num,omitempty"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// DecodeResponse is the JSON body returned by the decode endpoints.
type DecodeResponse struct {
	ScanID   string       `json:"scan_id"`
	Records  []RecordJSON `json:"records"`
	Warnings []string     `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDecodeNVS(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	scanID := ksuid.New().String()

	image, err := s.readImage(w, r)
	if err != nil {
		s.metrics.ObserveDecode("nvs", time.Since(start), 0, 0, err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res := nvs.Scan(image, s.requestOptions(r))
	s.metrics.ObserveDecode("nvs", time.Since(start), len(res.Records), len(res.Warnings), nil)

	resp := DecodeResponse{ScanID: scanID, Records: make([]RecordJSON, 0, len(res.Records))}
	for _, rec := range res.Records {
		value := ""
		if rec.Value != nil {
			value = rec.Value.String()
		}
		resp.Records = append(resp.Records, RecordJSON{
			State:     rec.State.String(),
			Type:      rec.Type.String(),
			Size:      rec.Size,
			Namespace: rec.Namespace,
			Key:       rec.Key,
			Value:     value,
		})
	}
	for _, warn := range res.Warnings {
		resp.Warnings = append(resp.Warnings, warn.String())
		s.log.Warn("nvs decode warning",
			zap.String("scan_id", scanID),
			zap.String("kind", warn.Kind.String()),
			zap.Int("page", warn.Page),
			zap.Int("slot", warn.Slot),
			zap.String("msg", warn.Msg))
	}

	s.log.Info("nvs partition decoded",
		zap.String("scan_id", scanID),
		zap.Int("image_bytes", len(image)),
		zap.Int("records", len(resp.Records)),
		zap.Int("warnings", len(resp.Warnings)))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecodeMi(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	scanID := ksuid.New().String()

	image, err := s.readImage(w, r)
	if err != nil {
		s.metrics.ObserveDecode("mi", time.Since(start), 0, 0, err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	opts := s.requestOptions(r)
	res := minvs.Scan(image, minvs.Options{
		IncludeWritten: opts.IncludeWritten,
		IncludeErased:  opts.IncludeErased,
	})
	s.metrics.ObserveDecode("mi", time.Since(start), len(res.Entries), len(res.Warnings), nil)

	resp := DecodeResponse{ScanID: scanID, Records: make([]RecordJSON, 0, len(res.Entries))}
	for _, e := range res.Entries {
		resp.Records = append(resp.Records, RecordJSON{
			State:  e.State.String(),
			SeqNum: e.SeqNum,
			Size:   uint32(e.DataSize),
			Key:    e.Key,
			Value:  e.Value,
		})
	}
	for _, warn := range res.Warnings {
		resp.Warnings = append(resp.Warnings, warn.String())
	}

	writeJSON(w, http.StatusOK, resp)
}

// readImage reads the raw partition image from the request body.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxImageBytes)
	defer body.Close()
	return io.ReadAll(body)
}

// requestOptions applies the written/erased query parameters on top of the
// server defaults.
func (s *Server) requestOptions(r *http.Request) nvs.Options {
	opts := s.config.Options
	if v := r.URL.Query().Get("written"); v != "" {
		opts.IncludeWritten = v == "1" || v == "true"
	}
	if v := r.URL.Query().Get("erased"); v != "" {
		opts.IncludeErased = v == "1" || v == "true"
	}
	return opts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
