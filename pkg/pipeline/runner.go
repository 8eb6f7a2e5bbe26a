package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/outdated/pkg/deps"
	"github.com/matzehuels/outdated/pkg/deps/javascript"
	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/manifest"
	"github.com/matzehuels/outdated/pkg/observability"
	"github.com/matzehuels/outdated/pkg/report"
	"github.com/matzehuels/outdated/pkg/update"
)

// Checker runs the outdated-dependency pipeline for one manifest at a time.
//
// The Checker holds only immutable configuration, so multiple goroutines
// can safely check different manifests with the same Checker.
type Checker struct {
	opts       Options
	classifier *deps.Classifier
	reporter   report.Reporter
	logger     *log.Logger
}

// New creates a Checker querying client.
func New(client deps.Client, opts Options) (*Checker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()
	opts.Ignore = append([]string(nil), opts.Ignore...)

	return &Checker{
		opts:       opts,
		classifier: deps.NewClassifier(client, opts.QueryOptions()),
		reporter:   opts.Reporter.resolve(opts.Stdout),
		logger:     opts.Logger,
	}, nil
}

// NewNPM creates a Checker backed by the npm registry, or by opts.Registry
// when set.
func NewNPM(opts Options) (*Checker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()

	client, err := javascript.NewClient(opts.Registry)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "registry")
	}
	logger := opts.Logger
	client.WithLogger(func(format string, args ...any) { logger.Warnf(format, args...) })
	return New(client, opts)
}

// run tracks the state of a single check.
type run struct {
	id     string
	path   string
	state  State
	logger *log.Logger
}

func (r *run) enter(s State) {
	r.logger.Debug("state", "from", r.state, "to", s)
	r.state = s
}

func (r *run) fail(err error) error {
	r.logger.Debug("state", "from", r.state, "to", StateFailed, "err", err)
	r.state = StateFailed
	return err
}

// Check parses f, classifies its outdated dependencies, optionally rewrites
// it, reports the result and applies the outdated-count gate.
//
// Parse errors are returned unchanged. Registry failures are returned as
// CLASSIFICATION_FAILED naming the manifest. When the gate trips, the error
// is a *errors.TooManyOutdatedError and no Result is returned.
func (c *Checker) Check(ctx context.Context, f *manifest.File) (*Result, error) {
	r := c.newRun(f)

	m, err := c.parse(ctx, r, f)
	if err != nil {
		return nil, r.fail(err)
	}

	rep, err := c.classify(ctx, r, m, deps.ModeOutdated)
	if err != nil {
		return nil, r.fail(err)
	}

	result := &Result{
		Path:     r.path,
		Contents: f.Contents,
		Report:   rep,
		Outdated: rep.Count(),
		RunID:    r.id,
	}

	if prefix, ok := c.opts.Update.Prefix(); ok {
		out, err := c.rewrite(ctx, r, m, rep, prefix)
		if err != nil {
			return nil, r.fail(err)
		}
		result.Contents = out
		result.Updated = true
	}

	if err := c.report(ctx, r, rep); err != nil {
		return nil, r.fail(err)
	}

	if limit := c.opts.ErrorDepCount; limit > 0 && result.Outdated >= limit {
		return nil, r.fail(&errors.TooManyOutdatedError{Count: result.Outdated, Threshold: limit})
	}

	r.enter(StateDone)
	c.logger.Info("checked manifest", "path", r.path, "outdated", result.Outdated, "updated", result.Updated)
	return result, nil
}

// List parses f and classifies every declared dependency, outdated or not.
// Nothing is rewritten, reported or gated.
func (c *Checker) List(ctx context.Context, f *manifest.File) (deps.Report, error) {
	r := c.newRun(f)

	m, err := c.parse(ctx, r, f)
	if err != nil {
		return nil, r.fail(err)
	}
	rep, err := c.classify(ctx, r, m, deps.ModeAll)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StateDone)
	return rep, nil
}

func (c *Checker) newRun(f *manifest.File) *run {
	id := uuid.NewString()
	var path string
	if f != nil {
		path = f.Path
	}
	return &run{
		id:     id,
		path:   path,
		state:  StateStart,
		logger: c.logger.With("run", id[:8], "path", path),
	}
}

func (c *Checker) parse(ctx context.Context, r *run, f *manifest.File) (*manifest.Manifest, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, r.path)
	start := time.Now()

	m, err := manifest.Parse(f)
	count := 0
	if err == nil {
		for _, g := range manifest.Groups {
			count += m.Group(g).Len()
		}
	}
	hooks.OnParseComplete(ctx, r.path, count, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.enter(StateParsed)
	return m, nil
}

func (c *Checker) classify(ctx context.Context, r *run, m *manifest.Manifest, mode deps.Mode) (deps.Report, error) {
	hooks := observability.Pipeline()
	hooks.OnClassifyStart(ctx, r.path)
	start := time.Now()

	rep, err := c.classifier.Classify(ctx, m, mode)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeClassificationFailed, err, "outdated: %s", r.path)
		hooks.OnClassifyComplete(ctx, r.path, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnClassifyComplete(ctx, r.path, rep.Count(), time.Since(start), nil)

	r.logger.Debug("classified", "mode", mode, "packages", rep.Count(), "duration", time.Since(start))
	r.enter(StateClassified)
	return rep, nil
}

func (c *Checker) rewrite(ctx context.Context, r *run, m *manifest.Manifest, rep deps.Report, prefix string) ([]byte, error) {
	out, err := c.serialize(m, rep, prefix)
	observability.Pipeline().OnRewrite(ctx, r.path, rep.Count(), err)
	if err != nil {
		return nil, err
	}
	r.enter(StateRewritten)
	return out, nil
}

func (c *Checker) serialize(m *manifest.Manifest, rep deps.Report, prefix string) ([]byte, error) {
	if _, err := update.Rewrite(m, rep, prefix, c.opts.Unstable); err != nil {
		return nil, err
	}
	return m.Marshal()
}

func (c *Checker) report(ctx context.Context, r *run, rep deps.Report) error {
	if c.reporter == nil {
		r.enter(StateReported)
		return nil
	}
	err := c.reporter.Report(r.path, rep)
	observability.Pipeline().OnReport(ctx, r.path, err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "report %s", r.path)
	}
	r.enter(StateReported)
	return nil
}
