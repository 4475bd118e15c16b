package capsule

import (
	"encoding/json"
	stderrors "errors"
)

// Schema is the schema tag embedded in persisted and exported payloads.
const Schema = "pocket-classroom/v1"

// Envelope is the wire format for stored records and for export/import:
// {"schema": "pocket-classroom/v1", "capsule": <Record>}.
type Envelope struct {
	Schema  string  `json:"schema"`
	Capsule *Record `json:"capsule"`
}

// NewEnvelope wraps a record with the current schema tag.
func NewEnvelope(r *Record) Envelope {
	return Envelope{Schema: Schema, Capsule: r}
}

// MarshalExport serializes r as a pretty-printed export payload (two-space indent).
func MarshalExport(r *Record) ([]byte, error) {
	return json.MarshalIndent(NewEnvelope(r), "", "  ")
}

// DecodeEnvelope parses a payload into an Envelope.
// A payload that is not a JSON object, or whose fields have the wrong types, is an error.
// Known keys must be spelled exactly and appear once; otherwise a *KeyError is returned.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if err := checkKeys(data); err != nil {
		return nil, err
	}
	return &env, nil
}

// DecodeFailure turns a DecodeEnvelope error into an import reject reason.
func DecodeFailure(err error) string {
	var keyErr *KeyError
	if stderrors.As(err, &keyErr) {
		return keyErr.Error()
	}
	return "payload is not valid JSON"
}

// ValidateEnvelope reports whether env is importable: the schema tag matches,
// the capsule has a non-empty title, and at least one of notes, flashcards
// or quiz is non-empty.
func ValidateEnvelope(env *Envelope) bool {
	return RejectReason(env) == ""
}

// RejectReason explains why env is not importable, or returns "" when it is.
func RejectReason(env *Envelope) string {
	switch {
	case env == nil:
		return "payload is empty"
	case env.Schema != Schema:
		return "schema must be " + Schema
	case env.Capsule == nil:
		return "capsule is missing"
	case env.Capsule.Meta.Title == "":
		return "capsule.meta.title is required"
	case !env.Capsule.HasContent():
		return "capsule needs notes, flashcards or quiz"
	}
	return ""
}

// ValidateImported decodes data and applies ValidateEnvelope.
// Undecodable input is reported as invalid rather than as an error.
func ValidateImported(data []byte) bool {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return false
	}
	return ValidateEnvelope(env)
}
