// Package tasks supplies the game content (taboo words, conjugation drills,
// conversation prompts and so on) that a room plays through.
//
// Records are opaque to the rest of the server: a room only shuffles,
// slices and relays them. The typed payloads in payload.go exist so that
// admin edits and the built-in seed set are checked against the shape each
// category expects.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// DefaultLevel is assigned to records that do not name a level.
const DefaultLevel = "A2"

var (
	ErrUnknownCategory = errors.New("unknown task category")
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidRecord   = errors.New("invalid task record")
	ErrUnavailable     = errors.New("task store unavailable")
)

// Record is a single unit of game content.
type Record struct {
	ID       string
	Category string
	Level    string
	Fields   map[string]any
}

// MarshalJSON flattens the record into a single object, the way clients
// receive it: {"id": ..., "nivel": ..., <fields>}.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	maps.Copy(out, r.Fields)
	if r.ID != "" {
		out["id"] = r.ID
	}
	if r.Level != "" {
		out["nivel"] = r.Level
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	id, _ := fields["id"].(string)
	level, _ := fields["nivel"].(string)
	delete(fields, "id")
	delete(fields, "nivel")

	r.ID = id
	r.Level = level
	r.Fields = fields

	return nil
}

func (r Record) clone() Record {
	r.Fields = maps.Clone(r.Fields)
	return r
}

// Decode checks raw against the payload shape of category and converts it
// into a Record without an ID.
func Decode(category string, raw json.RawMessage) (Record, error) {
	p, err := newPayload(category)
	if err != nil {
		return Record{}, err
	}

	if err := json.Unmarshal(raw, p); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if err := p.Validate(); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return FromPayload(p), nil
}

// FromPayload converts a typed payload into its opaque Record form.
func FromPayload(p Payload) Record {
	fields := make(map[string]any)

	data, err := json.Marshal(p)
	if err == nil {
		_ = json.Unmarshal(data, &fields)
	}

	level, _ := fields["nivel"].(string)
	if level == "" {
		level = DefaultLevel
	}
	delete(fields, "nivel")
	delete(fields, "id")

	return Record{
		Category: p.Category(),
		Level:    level,
		Fields:   fields,
	}
}

// Merge applies a JSON merge-style patch to rec and re-validates the result.
// A null value removes the field. The ID and category never change.
func Merge(rec Record, patch json.RawMessage) (Record, error) {
	var changes map[string]any
	if err := json.Unmarshal(patch, &changes); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	merged := maps.Clone(rec.Fields)
	if merged == nil {
		merged = make(map[string]any)
	}
	merged["nivel"] = rec.Level

	for k, v := range changes {
		if k == "id" {
			continue
		}
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	out, err := Decode(rec.Category, raw)
	if err != nil {
		return Record{}, err
	}
	out.ID = rec.ID

	return out, nil
}
