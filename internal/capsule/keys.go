package capsule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// KeyError reports an envelope key that encoding/json would accept but the
// wire format does not: a known key spelled with different case, or a known
// key given more than once.
type KeyError struct {
	Path string
	Key  string
	Want string // canonical spelling; empty for a repeated key
}

func (e *KeyError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("%s: key %q appears more than once", e.Path, e.Key)
	}
	return fmt.Sprintf("%s: key %q must be spelled %q", e.Path, e.Key, e.Want)
}

// keyShape lists the keys known at one object level. elem applies to array elements.
type keyShape struct {
	fields map[string]*keyShape
	elem   *keyShape
}

var (
	flashcardShape = &keyShape{fields: map[string]*keyShape{"front": nil, "back": nil}}
	questionShape  = &keyShape{fields: map[string]*keyShape{
		"question": nil, "choices": nil, "answer": nil, "explanation": nil,
	}}
	recordShape = &keyShape{fields: map[string]*keyShape{
		"meta": {fields: map[string]*keyShape{
			"title": nil, "subject": nil, "level": nil, "description": nil,
		}},
		"notes":      nil,
		"flashcards": {elem: flashcardShape},
		"quiz":       {elem: questionShape},
		"createdAt":  nil,
		"updatedAt":  nil,
	}}
	envelopeShape = &keyShape{fields: map[string]*keyShape{
		"schema":  nil,
		"capsule": recordShape,
	}}
)

// checkKeys walks data and returns a *KeyError for the first known key that is
// miscased or repeated. Unknown keys are ignored. data must already be valid JSON.
func checkKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	return walkKeys(dec, envelopeShape, "$")
}

func walkKeys(dec *json.Decoder, shape *keyShape, path string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		seen := make(map[string]bool)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := tok.(string)
			child, err := matchKey(shape, key, path, seen)
			if err != nil {
				return err
			}
			if err := walkKeys(dec, child, path+"."+key); err != nil {
				return err
			}
		}
	case '[':
		var elem *keyShape
		if shape != nil {
			elem = shape.elem
		}
		for i := 0; dec.More(); i++ {
			if err := walkKeys(dec, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}

	// closing delimiter
	_, err = dec.Token()
	return err
}

// matchKey resolves key against shape, recording it in seen.
func matchKey(shape *keyShape, key, path string, seen map[string]bool) (*keyShape, error) {
	if shape == nil || shape.fields == nil {
		return nil, nil
	}
	if child, ok := shape.fields[key]; ok {
		if seen[key] {
			return nil, &KeyError{Path: path, Key: key}
		}
		seen[key] = true
		return child, nil
	}
	for name := range shape.fields {
		if strings.EqualFold(name, key) {
			return nil, &KeyError{Path: path, Key: key, Want: name}
		}
	}
	return nil, nil
}
