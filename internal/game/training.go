package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TrainingRecord pairs an offender position with where its defender stood.
type TrainingRecord struct {
	OffenseX float64 `json:"offenseX"`
	OffenseY float64 `json:"offenseY"`
	DefenseX float64 `json:"defenseX"`
	DefenseY float64 `json:"defenseY"`
}

// TrainingSet accumulates records captured from a live simulation.
type TrainingSet struct {
	Records []TrainingRecord
}

// Capture records the primary offender and downfield defender of st. ok is
// false when either is missing.
func (ts *TrainingSet) Capture(st *State) (TrainingRecord, bool) {
	off := st.Offender("")
	def := st.DownfieldDefender("")
	if off == nil || def == nil {
		return TrainingRecord{}, false
	}
	r := TrainingRecord{OffenseX: off.X, OffenseY: off.Y, DefenseX: def.X, DefenseY: def.Y}
	ts.Records = append(ts.Records, r)
	return r, true
}

// Len is the number of records.
func (ts *TrainingSet) Len() int { return len(ts.Records) }

// ExportJSON encodes the records as a JSON array (never null).
func (ts *TrainingSet) ExportJSON() ([]byte, error) {
	records := ts.Records
	if records == nil {
		records = []TrainingRecord{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// ImportJSON replaces the records with a decoded array. On any error the set
// is left unchanged.
func (ts *TrainingSet) ImportJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return fmt.Errorf("%w: expected a JSON array", ErrInvalidTrainingData)
	}
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTrainingData, err)
	}
	records := make([]TrainingRecord, 0, len(raw))
	for i, obj := range raw {
		var r TrainingRecord
		for _, f := range []struct {
			key string
			dst *float64
		}{
			{"offenseX", &r.OffenseX},
			{"offenseY", &r.OffenseY},
			{"defenseX", &r.DefenseX},
			{"defenseY", &r.DefenseY},
		} {
			v, ok := obj[f.key]
			if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return fmt.Errorf("%w: record %d missing %s", ErrInvalidTrainingData, i, f.key)
			}
			if err := json.Unmarshal(v, f.dst); err != nil {
				return fmt.Errorf("%w: record %d %s: %w", ErrInvalidTrainingData, i, f.key, err)
			}
		}
		records = append(records, r)
	}
	ts.Records = records
	return nil
}
