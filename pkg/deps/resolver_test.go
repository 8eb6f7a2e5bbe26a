package deps

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/matzehuels/outdated/pkg/manifest"
)

type fakeFetcher struct {
	mu       sync.Mutex
	packages map[string]*Package
	fail     map[string]error
	calls    []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, name string) (*Package, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	if p, ok := f.packages[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (f *fakeFetcher) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func mustParse(t *testing.T, content string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse(&manifest.File{Path: "package.json", Contents: []byte(content)})
	if err != nil {
		t.Fatalf("manifest.Parse() error: %v", err)
	}
	return m
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		packages: map[string]*Package{
			"express": {
				Name:     "express",
				Versions: []string{"4.17.0", "4.18.2", "5.0.0-beta.1"},
				DistTags: map[string]string{"latest": "4.18.2", "next": "5.0.0-beta.1"},
			},
			"jest": {
				Name:     "jest",
				Versions: []string{"28.0.0", "29.7.0"},
			},
		},
	}
}

func TestRegistryQuery(t *testing.T) {
	m := mustParse(t, `{
  "dependencies": {"express": "^4.17.0"},
  "devDependencies": {"jest": "^28.0.0"}
}`)
	reg := NewRegistry("npm", newFetcher())

	recs, err := reg.Query(context.Background(), m, QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	want := Record{Required: "^4.17.0", Stable: "4.18.2", Latest: "5.0.0-beta.1"}
	if got := recs["express"]; got != want {
		t.Errorf("express = %+v, want %+v", got, want)
	}
	if _, ok := recs["jest"]; ok {
		t.Error("runtime query returned a dev dependency")
	}

	recs, err = reg.Query(context.Background(), m, QueryOptions{Dev: true})
	if err != nil {
		t.Fatalf("Query(dev) error: %v", err)
	}
	want = Record{Required: "^28.0.0", Stable: "29.7.0", Latest: "29.7.0"}
	if got := recs["jest"]; got != want {
		t.Errorf("jest = %+v, want %+v", got, want)
	}
}

func TestRegistryQuery_Ignore(t *testing.T) {
	m := mustParse(t, `{"dependencies": {"express": "^4.17.0", "private-pkg": "^1.0.0"}}`)
	f := newFetcher()

	recs, err := NewRegistry("npm", f).Query(context.Background(), m, QueryOptions{
		Ignore: []string{"private-pkg"},
		Errors: ErrorPolicy{NotFound: true},
	})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if _, ok := recs["private-pkg"]; ok {
		t.Error("ignored package in result")
	}
	if f.called("private-pkg") {
		t.Error("ignored package was fetched")
	}
}

func TestRegistryQuery_Policies(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		policy   ErrorPolicy
		wantKind ErrorKind
		wantErr  bool
	}{
		{"missing skipped", `{"dependencies": {"nope": "^1.0.0"}}`, ErrorPolicy{}, 0, false},
		{"missing fatal", `{"dependencies": {"nope": "^1.0.0"}}`, ErrorPolicy{NotFound: true}, KindNotFound, true},
		{"dep type skipped", `{"dependencies": {"odd": {"version": "1"}}}`, ErrorPolicy{}, 0, false},
		{"dep type fatal", `{"dependencies": {"odd": {"version": "1"}}}`, ErrorPolicy{DepType: true}, KindDepType, true},
		{"scm skipped", `{"dependencies": {"lib": "git+https://github.com/a/lib.git"}}`, ErrorPolicy{}, 0, false},
		{"scm fatal", `{"dependencies": {"lib": "git+https://github.com/a/lib.git"}}`, ErrorPolicy{SCM: true}, KindSCM, true},
		{"scm shorthand fatal", `{"dependencies": {"lib": "user/lib#v1"}}`, ErrorPolicy{SCM: true}, KindSCM, true},
		{"local always skipped", `{"dependencies": {"lib": "file:../lib"}}`, ErrorPolicy{NotFound: true, SCM: true}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustParse(t, tt.manifest)
			recs, err := NewRegistry("npm", newFetcher()).Query(context.Background(), m, QueryOptions{Errors: tt.policy})

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Query() error: %v", err)
				}
				if len(recs) != 0 {
					t.Errorf("Query() = %v, want no records", recs)
				}
				return
			}

			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("Query() error = %v, want *QueryError", err)
			}
			if qe.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", qe.Kind, tt.wantKind)
			}
		})
	}
}

func TestRegistryQuery_TransportError(t *testing.T) {
	m := mustParse(t, `{"optionalDependencies": {"express": "^4.0.0"}}`)
	f := newFetcher()
	f.fail = map[string]error{"express": errors.New("connection reset")}

	_, err := NewRegistry("npm", f).Query(context.Background(), m, QueryOptions{Optional: true})

	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("Query() error = %v, want *QueryError", err)
	}
	if qe.Kind != KindTransport || qe.Group != manifest.OptionalDependencies {
		t.Errorf("QueryError = %+v, want transport error in optionalDependencies", qe)
	}
}

func TestRegistryQuery_LogsSkips(t *testing.T) {
	m := mustParse(t, `{"dependencies": {"nope": "^1.0.0"}}`)

	var logged []string
	reg := NewRegistry("npm", newFetcher()).WithLogger(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})
	if _, err := reg.Query(context.Background(), m, QueryOptions{}); err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(logged) != 1 {
		t.Errorf("logged %d messages, want 1: %v", len(logged), logged)
	}
}

func TestIsSCM(t *testing.T) {
	tests := []struct {
		constraint string
		want       bool
	}{
		{"^1.0.0", false},
		{">=1.0.0 <2", false},
		{"git://github.com/a/b.git", true},
		{"git+ssh://git@github.com/a/b.git", true},
		{"git@github.com:a/b.git", true},
		{"github:a/b", true},
		{"a/b", true},
		{"a/b#semver:^1.0.0", true},
		{"https://github.com/a/b.git#v1", true},
		{"https://example.com/b-1.0.0.tgz", false},
		{"file:../b", false},
		{"npm:@scope/b@^1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			if got := IsSCM(tt.constraint); got != tt.want {
				t.Errorf("IsSCM(%q) = %v, want %v", tt.constraint, got, tt.want)
			}
		})
	}
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		constraint string
		want       bool
	}{
		{"^1.0.0", false},
		{"file:../b", true},
		{"link:../b", true},
		{"workspace:*", true},
		{"./vendor/b", true},
		{"https://example.com/b-1.0.0.tgz", true},
		{"https://github.com/a/b.git", false},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			if got := IsLocal(tt.constraint); got != tt.want {
				t.Errorf("IsLocal(%q) = %v, want %v", tt.constraint, got, tt.want)
			}
		})
	}
}
