package manifest

import (
	"bytes"
	"encoding/json"
	"io"
	"slices"

	"github.com/matzehuels/outdated/pkg/errors"
)

// Group names a dependency section of a package.json manifest.
type Group string

const (
	Dependencies         Group = "dependencies"
	DevDependencies      Group = "devDependencies"
	OptionalDependencies Group = "optionalDependencies"
)

// Groups lists the dependency groups in report order.
var Groups = []Group{Dependencies, DevDependencies, OptionalDependencies}

// File is a manifest handed to the pipeline. Exactly one of Contents or
// Stream is expected to be set; a File with neither is a null file.
type File struct {
	Path     string    // Identifies the manifest in errors and report titles
	Contents []byte    // Fully buffered document
	Stream   io.Reader // Unbuffered source (not supported by the parser)
}

// IsNull reports whether the file carries no contents at all.
func (f *File) IsNull() bool {
	return f == nil || (f.Contents == nil && f.Stream == nil)
}

// IsStream reports whether the file contents are streamed.
func (f *File) IsStream() bool {
	return f != nil && f.Stream != nil
}

// Dependency is one declared package in a group. Raw holds the JSON value
// exactly as declared; it is usually a string constraint.
type Dependency struct {
	Name string
	Raw  json.RawMessage
}

// Constraint returns the declared version constraint. ok is false when the
// declared value is not a JSON string.
func (d Dependency) Constraint() (c string, ok bool) {
	if err := json.Unmarshal(d.Raw, &c); err != nil {
		return "", false
	}
	return c, true
}

// Section is an ordered name → constraint mapping.
type Section struct {
	entries []Dependency
	index   map[string]int
}

func newSection() *Section {
	return &Section{index: make(map[string]int)}
}

// Len returns the number of declared packages.
func (s *Section) Len() int { return len(s.entries) }

// Entries returns the declared packages in document order.
func (s *Section) Entries() []Dependency { return slices.Clone(s.entries) }

// Get returns the declared package with the given name.
func (s *Section) Get(name string) (Dependency, bool) {
	i, ok := s.index[name]
	if !ok {
		return Dependency{}, false
	}
	return s.entries[i], true
}

// Set replaces the constraint of name, appending the package if it is not
// declared yet.
func (s *Section) Set(name, constraint string) {
	raw, _ := encodeString(constraint)
	if i, ok := s.index[name]; ok {
		s.entries[i].Raw = raw
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, Dependency{Name: name, Raw: raw})
}

func (s *Section) put(name string, raw json.RawMessage) {
	if i, ok := s.index[name]; ok {
		s.entries[i].Raw = raw
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, Dependency{Name: name, Raw: raw})
}

// Manifest is a decoded package.json document. The dependency groups are
// exposed as ordered sections; every other field is kept verbatim so the
// document can be serialized again without reordering or losing keys.
type Manifest struct {
	Path   string
	keys   []string
	fields map[string]json.RawMessage
	groups map[Group]*Section
}

// Group returns the section for g. Absent groups are empty, never nil.
// Parse creates all three groups up front, so concurrent readers of a
// parsed manifest never write to it.
func (m *Manifest) Group(g Group) *Section {
	if s, ok := m.groups[g]; ok {
		return s
	}
	s := newSection()
	m.groups[g] = s
	return s
}

// Name returns the package name declared by the manifest, if any.
func (m *Manifest) Name() string {
	var name string
	if raw, ok := m.fields["name"]; ok {
		_ = json.Unmarshal(raw, &name)
	}
	return name
}

// Marshal serializes the manifest as JSON indented with two spaces and
// without a trailing newline. HTML characters are not escaped so range
// operators like ">=" survive untouched.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	keys := m.keys
	for _, g := range Groups {
		if s, ok := m.groups[g]; ok && s.Len() > 0 && !slices.Contains(keys, string(g)) {
			keys = append(slices.Clone(keys), string(g))
		}
	}
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encodeString(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		if s, ok := m.groups[Group(key)]; ok && (s.Len() > 0 || !isNull(m.fields[key])) {
			if err := writeSection(&buf, s); err != nil {
				return nil, err
			}
			continue
		}
		buf.Write(m.fields[key])
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize manifest %s", m.Path)
	}
	return out.Bytes(), nil
}

func writeSection(buf *bytes.Buffer, s *Section) error {
	buf.WriteByte('{')
	for i, dep := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encodeString(dep.Name)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(dep.Raw)
	}
	buf.WriteByte('}')
	return nil
}

func encodeString(s string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
