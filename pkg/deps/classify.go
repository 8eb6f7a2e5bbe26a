package deps

import (
	"context"

	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/manifest"
)

// Mode selects which records a [Classifier] keeps.
type Mode int

const (
	// ModeOutdated keeps only packages whose constraint excludes the target version.
	ModeOutdated Mode = iota
	// ModeAll keeps every queried package.
	ModeAll
)

func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "outdated"
}

// Classifier queries all three dependency groups of a manifest and filters
// the results.
type Classifier struct {
	client Client
	base   QueryOptions
}

// NewClassifier returns a Classifier querying client with per-group copies of base.
func NewClassifier(client Client, base QueryOptions) *Classifier {
	return &Classifier{client: client, base: base}
}

type outcome struct {
	group   manifest.Group
	records map[string]Record
	err     error
}

// Classify runs the runtime, dev and optional queries concurrently and
// returns a Report holding all three groups.
//
// The first failing query fails the whole classification; results of the
// other queries are discarded and ctx passed to them is cancelled.
func (c *Classifier) Classify(ctx context.Context, m *manifest.Manifest, mode Mode) (Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome, len(manifest.Groups))
	for _, g := range manifest.Groups {
		opts := c.base.ForGroup(g)
		go func() {
			recs, err := c.client.Query(ctx, m, opts)
			results <- outcome{group: g, records: recs, err: err}
		}()
	}

	report := NewReport()
	for range manifest.Groups {
		var o outcome
		select {
		case o = <-results:
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeClassificationFailed, ctx.Err(), "classification cancelled")
		}
		if o.err != nil {
			return nil, errors.Wrap(errors.ErrCodeClassificationFailed, o.err, "query %s", o.group)
		}
		c.collect(report[o.group], o.records, mode)
	}
	return report, nil
}

func (c *Classifier) collect(dst, recs map[string]Record, mode Mode) {
	for name, rec := range recs {
		if c.base.Ignored(name) {
			continue
		}
		if mode == ModeOutdated && !IsOutdated(rec, c.base.Stable, c.base.Loose) {
			continue
		}
		dst[name] = rec
	}
}
