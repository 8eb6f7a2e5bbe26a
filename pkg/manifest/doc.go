// Package manifest decodes and serializes package.json manifests.
//
// # Parsing
//
// [Parse] accepts a [File], the unit handed to the checker pipeline, and
// requires the whole document in memory:
//
//	m, err := manifest.Parse(&manifest.File{Path: "package.json", Contents: data})
//	if err != nil {
//	    return err // EMPTY_INPUT, STREAMING_UNSUPPORTED or INVALID_MANIFEST
//	}
//
// # Dependency Groups
//
// The three groups checked against the registry are exposed as ordered
// [Section] values via [Manifest.Group]. Groups missing from the document
// read as empty sections.
//
// # Serialization
//
// [Manifest.Marshal] writes the document back with two-space indentation.
// Fields other than the dependency groups are copied verbatim and the
// original key order is kept, so a rewrite only changes constraint strings.
package manifest
