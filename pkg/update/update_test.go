package update

import (
	"context"
	"testing"

	"github.com/matzehuels/outdated/pkg/deps"
	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/manifest"
)

func parse(t *testing.T, content string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse(&manifest.File{Path: "package.json", Contents: []byte(content)})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return m
}

func constraint(t *testing.T, m *manifest.Manifest, g manifest.Group, name string) string {
	t.Helper()
	dep, ok := m.Group(g).Get(name)
	if !ok {
		t.Fatalf("%s missing from %s", name, g)
	}
	c, _ := dep.Constraint()
	return c
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		unstable bool
		want     string
	}{
		{"caret stable", "^", false, "^2.0.0"},
		{"tilde stable", "~", false, "~2.0.0"},
		{"exact stable", "", false, "2.0.0"},
		{"caret unstable", "^", true, "^3.0.0-beta.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, `{"dependencies": {"p": "^1.0.0", "q": "^1.0.0"}}`)
			r := deps.NewReport()
			r[manifest.Dependencies]["p"] = deps.Record{Required: "^1.0.0", Stable: "2.0.0", Latest: "3.0.0-beta.1"}

			got, err := Rewrite(m, r, tt.prefix, tt.unstable)
			if err != nil {
				t.Fatalf("Rewrite() error: %v", err)
			}
			if got != m {
				t.Error("Rewrite() should return the manifest it was given")
			}
			if c := constraint(t, m, manifest.Dependencies, "p"); c != tt.want {
				t.Errorf("p = %q, want %q", c, tt.want)
			}
			if c := constraint(t, m, manifest.Dependencies, "q"); c != "^1.0.0" {
				t.Errorf("q = %q, want untouched %q", c, "^1.0.0")
			}
		})
	}
}

func TestRewrite_AllGroups(t *testing.T) {
	m := parse(t, `{"devDependencies": {"jest": "^28.0.0"}, "optionalDependencies": {"fsevents": "^1.0.0"}}`)
	r := deps.NewReport()
	r[manifest.DevDependencies]["jest"] = deps.Record{Required: "^28.0.0", Stable: "29.7.0", Latest: "29.7.0"}
	r[manifest.OptionalDependencies]["fsevents"] = deps.Record{Required: "^1.0.0", Stable: "2.3.3", Latest: "2.3.3"}

	if _, err := Rewrite(m, r, DefaultPrefix, false); err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	if c := constraint(t, m, manifest.DevDependencies, "jest"); c != "^29.7.0" {
		t.Errorf("jest = %q, want %q", c, "^29.7.0")
	}
	if c := constraint(t, m, manifest.OptionalDependencies, "fsevents"); c != "^2.3.3" {
		t.Errorf("fsevents = %q, want %q", c, "^2.3.3")
	}
}

func TestRewrite_MissingVersion(t *testing.T) {
	m := parse(t, `{"dependencies": {"a": "^1.0.0", "p": "^1.0.0"}}`)
	r := deps.NewReport()
	r[manifest.Dependencies]["a"] = deps.Record{Required: "^1.0.0", Stable: "2.0.0", Latest: "2.0.0"}
	r[manifest.Dependencies]["p"] = deps.Record{Required: "^1.0.0", Latest: "2.0.0-rc.1"}

	_, err := Rewrite(m, r, "^", false)
	if !errors.Is(err, errors.ErrCodeMissingVersion) {
		t.Fatalf("Rewrite() error = %v, want MISSING_VERSION", err)
	}
	if c := constraint(t, m, manifest.Dependencies, "a"); c != "^1.0.0" {
		t.Errorf("a = %q, manifest should be untouched on error", c)
	}
}

func TestRewrite_EmptyReport(t *testing.T) {
	const doc = `{"name":"x","dependencies":{"p":"^1.0.0"}}`
	m := parse(t, doc)

	if _, err := Rewrite(m, deps.NewReport(), "^", false); err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	out, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := "{\n  \"name\": \"x\",\n  \"dependencies\": {\n    \"p\": \"^1.0.0\"\n  }\n}"
	if string(out) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", out, want)
	}
}

// prereleaseFetcher publishes a beta above the version tagged "latest".
type prereleaseFetcher struct{}

func (prereleaseFetcher) Fetch(_ context.Context, name string) (*deps.Package, error) {
	return &deps.Package{
		Name:     name,
		Versions: []string{"4.17.0", "4.18.2", "5.0.0-beta.1"},
		DistTags: map[string]string{"latest": "4.18.2", "next": "5.0.0-beta.1"},
	}, nil
}

func TestRewrite_UnstableFromRegistry(t *testing.T) {
	m := parse(t, `{"dependencies": {"express": "^4.18.2"}}`)
	base := deps.QueryOptions{Loose: true, Stable: false}

	report, err := deps.NewClassifier(deps.NewRegistry("npm", prereleaseFetcher{}), base).
		Classify(context.Background(), m, deps.ModeOutdated)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if _, err := Rewrite(m, report, "^", true); err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	if got := constraint(t, m, manifest.Dependencies, "express"); got != "^5.0.0-beta.1" {
		t.Errorf("express = %q, want ^5.0.0-beta.1", got)
	}
}
