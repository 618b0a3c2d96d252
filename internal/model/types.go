package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// EvaluationRecord is one crisp evaluation of a named profile.
type EvaluationRecord struct {
	VersionedRecord
	ID        string             `json:"id"`
	Profile   string             `json:"profile"`
	Inputs    map[string]float64 `json:"inputs"`
	Output    float64            `json:"output"`
	Label     string             `json:"label"`
	Degree    float64            `json:"degree"`
	Fired     bool               `json:"fired"`
	CreatedAt time.Time          `json:"created_at"`
}

// Clone returns a copy that shares no maps with r.
func (r EvaluationRecord) Clone() EvaluationRecord {
	out := r
	if r.Inputs != nil {
		out.Inputs = make(map[string]float64, len(r.Inputs))
		for k, v := range r.Inputs {
			out.Inputs[k] = v
		}
	}
	return out
}
