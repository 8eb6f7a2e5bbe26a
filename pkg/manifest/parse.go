package manifest

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/matzehuels/outdated/pkg/errors"
)

// Parse decodes the manifest carried by f.
//
// It fails with EMPTY_INPUT when f has no contents, STREAMING_UNSUPPORTED
// when the contents are streamed, and INVALID_MANIFEST when the bytes are
// not a single JSON object or a dependency group is not an object.
func Parse(f *File) (*Manifest, error) {
	if f.IsNull() {
		path := ""
		if f != nil {
			path = f.Path
		}
		return nil, errors.New(errors.ErrCodeEmptyInput, "empty manifest: %s", path)
	}
	if f.IsStream() {
		return nil, errors.New(errors.ErrCodeStreamingUnsupported, "streams are not supported: %s", f.Path)
	}

	m := &Manifest{
		Path:   f.Path,
		fields: make(map[string]json.RawMessage),
		groups: make(map[Group]*Section),
	}
	if err := decodeObject(f.Contents, func(key string, raw json.RawMessage) {
		if _, seen := m.fields[key]; !seen {
			m.keys = append(m.keys, key)
		}
		m.fields[key] = raw
	}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid manifest: %s", f.Path)
	}

	for _, g := range Groups {
		s := newSection()
		m.groups[g] = s
		raw, ok := m.fields[string(g)]
		if !ok || isNull(raw) {
			continue
		}
		if err := decodeObject(raw, s.put); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid manifest: %s: %s", f.Path, g)
		}
	}
	return m, nil
}

type objectError string

func (e objectError) Error() string { return string(e) }

const (
	errNotObject    = objectError("value is not a JSON object")
	errTrailingData = objectError("unexpected data after JSON object")
)

// decodeObject walks the members of the JSON object in data in document
// order, handing each key and raw value to fn.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage)) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		fn(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return errTrailingData
		}
		return err
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
