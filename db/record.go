package db

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/suxatcode/learn-graph-layout/layout"
)

// Record is a persisted layout: free-form metadata plus one position per
// vertex. Vertex ids are stored in their fmt.Sprint form, so they always come
// back as strings, whatever type they had when the layout was computed.
type Record struct {
	Meta map[string]interface{}     `json:"meta"`
	Pos  map[string]layout.Position `json:"pos"`
}

// Well-known metadata keys.
const (
	MetaName        = "name"
	MetaVertexCount = "n"
	MetaWidth       = "W"
	MetaHeight      = "H"
	MetaSeed        = "seed"
	MetaFingerprint = "fingerprint"
)

// FormatError is returned when a persisted layout cannot be decoded.
type FormatError struct {
	Source string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed layout '%s': %v", e.Source, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func NewRecord[ID comparable](pos map[ID]layout.Position, meta map[string]interface{}) *Record {
	r := &Record{
		Meta: make(map[string]interface{}, len(meta)),
		Pos:  make(map[string]layout.Position, len(pos)),
	}
	for k, v := range meta {
		r.Meta[k] = v
	}
	for id, p := range pos {
		r.Pos[fmt.Sprint(id)] = p
	}
	return r
}

// MetaString returns the metadata value of key, if it is a string.
func (r *Record) MetaString(key string) string {
	if s, ok := r.Meta[key].(string); ok {
		return s
	}
	return ""
}

func EncodeRecord(r *Record) ([]byte, error) {
	out := Record{Meta: r.Meta, Pos: r.Pos}
	if out.Meta == nil {
		out.Meta = map[string]interface{}{}
	}
	if out.Pos == nil {
		out.Pos = map[string]layout.Position{}
	}
	return json.MarshalIndent(&out, "", "  ")
}

// DecodeRecord parses a layout document. source names the document in
// errors. A missing "pos" object or a coordinate that is not a pair of numbers
// results in a *FormatError.
func DecodeRecord(source string, data []byte) (*Record, error) {
	doc := struct {
		Meta map[string]interface{}    `json:"meta"`
		Pos  map[string]json.RawMessage `json:"pos"`
	}{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Source: source, Err: errors.Wrap(err, "invalid json")}
	}
	if doc.Pos == nil {
		return nil, &FormatError{Source: source, Err: errors.New("missing 'pos' object")}
	}
	r := &Record{
		Meta: doc.Meta,
		Pos:  make(map[string]layout.Position, len(doc.Pos)),
	}
	if r.Meta == nil {
		r.Meta = map[string]interface{}{}
	}
	for id, raw := range doc.Pos {
		p := layout.Position{}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &FormatError{Source: source, Err: errors.Wrapf(err, "pos['%s']", id)}
		}
		r.Pos[id] = p
	}
	return r, nil
}
