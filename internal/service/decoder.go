// Package service wires the analysis pipeline to storage and transport: it
// decodes uploaded execution logs, derives and caches the viewer-facing
// views, and owns run lifecycle (ingest, list, delete, backfill).
package service

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/backtest-viewer/internal/models"
)

// logEnvelope matches engines that wrap the entry array in an object.
type logEnvelope struct {
	Entries []models.LogEntry `json:"entries"`
	Log     []models.LogEntry `json:"log"`
}

// DecodeLog parses a raw execution log upload. Engines serialize either a
// bare JSON array of entries or an envelope object with an "entries" (or
// "log") array; both are accepted. Structural failures come back wrapped in
// ErrMalformedLog so transport can map them to a 400; per-field oddities
// inside an entry are tolerated by the models' permissive decoding and never
// fail the upload.
func DecodeLog(raw []byte) ([]models.LogEntry, error) {
	if len(raw) == 0 {
		return nil, models.ErrEmptyLog
	}

	var entries []models.LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var envelope logEnvelope
		if envErr := json.Unmarshal(raw, &envelope); envErr != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedLog, err)
		}
		entries = envelope.Entries
		if len(entries) == 0 {
			entries = envelope.Log
		}
	}

	if len(entries) == 0 {
		return nil, models.ErrEmptyLog
	}

	for i, entry := range entries {
		if entry.Timestamp == 0 {
			return nil, fmt.Errorf("%w: entry %d has no timestamp", models.ErrMalformedLog, i)
		}
	}

	return entries, nil
}
