package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/outdated/pkg/errors"
)

const testManifest = `{
  "name": "app",
  "dependencies": {
    "express": "^3.0.0",
    "lodash": "^4.17.0"
  }
}
`

func fakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()

	docs := map[string]any{
		"express": map[string]any{
			"name":      "express",
			"dist-tags": map[string]string{"latest": "4.18.2"},
			"versions": map[string]any{
				"3.21.2": map[string]any{},
				"4.18.2": map[string]any{},
			},
		},
		"lodash": map[string]any{
			"name":      "lodash",
			"dist-tags": map[string]string{"latest": "4.17.21"},
			"versions":  map[string]any{"4.17.21": map[string]any{}},
		},
	}

	r := chi.NewRouter()
	r.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
		name, _ := url.PathUnescape(chi.URLParam(req, "name"))
		doc, ok := docs[name]
		if !ok {
			http.Error(w, `{"error":"Not found"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(doc)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// writeTestManifest creates a package.json in a fresh directory and returns its path.
func writeTestManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithStatus(t, io.Discard, args...)
}

// executeWithStatus is execute with logs and status lines sent to status.
func executeWithStatus(t *testing.T, status io.Writer, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(status, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckCommand_Report(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, testManifest)

	out, err := execute(t, "check", path, "--registry", srv.URL)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	for _, want := range []string{path, "express", "^3.0.0", "4.18.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "lodash") {
		t.Error("satisfied package lodash should not be reported")
	}
	if readFile(t, path) != testManifest {
		t.Error("manifest changed without --update")
	}
}

func TestCheckCommand_Directory(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, testManifest)

	out, err := execute(t, "check", filepath.Dir(path), "--registry", srv.URL)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(out, "express") {
		t.Errorf("output %q missing express", out)
	}
}

func TestCheckCommand_Update(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, testManifest)

	if _, err := execute(t, "check", path, "--registry", srv.URL, "--update", "--reporter=false"); err != nil {
		t.Fatalf("check error: %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, `"express": "^4.18.2"`) {
		t.Errorf("manifest not rewritten:\n%s", got)
	}
	if !strings.Contains(got, `"lodash": "^4.17.0"`) {
		t.Errorf("satisfied constraint changed:\n%s", got)
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Error("trailing newline was dropped")
	}
}

func TestCheckCommand_DryRun(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, testManifest)

	out, err := execute(t, "check", path, "--registry", srv.URL, "--update=~", "--dry-run", "--reporter=false")
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(out, `"express": "~4.18.2"`) {
		t.Errorf("dry run output:\n%s", out)
	}
	if readFile(t, path) != testManifest {
		t.Error("dry run wrote the manifest")
	}
}

func TestCheckCommand_Threshold(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, testManifest)

	out, err := execute(t, "check", path, "--registry", srv.URL, "--error-dep-count", "1")

	var tooMany *apperrors.TooManyOutdatedError
	if !errors.As(err, &tooMany) {
		t.Fatalf("check error = %v, want TooManyOutdatedError", err)
	}
	if err.Error() != "1 outdated dependencies" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !strings.Contains(out, "express") {
		t.Error("report should be printed before the threshold fails")
	}
}

func TestCheckCommand_NotFound(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, `{"dependencies": {"no-such-package": "^1.0.0"}}`)

	if _, err := execute(t, "check", path, "--registry", srv.URL); err != nil {
		t.Fatalf("unknown packages should be skipped by default: %v", err)
	}

	_, err := execute(t, "check", path, "--registry", srv.URL, "--error-404")
	if !apperrors.Has(err, apperrors.ErrCodeClassificationFailed) {
		t.Fatalf("check error = %v, want CLASSIFICATION_FAILED", err)
	}
}

func TestCheckCommand_AggregatesFailures(t *testing.T) {
	srv := fakeRegistry(t)
	dir := t.TempDir()
	good := writeTestManifest(t, testManifest)

	out, err := execute(t, "check",
		filepath.Join(dir, "missing.json"),
		good,
		filepath.Join(dir, "also-missing.json"),
		"--registry", srv.URL)
	if err == nil {
		t.Fatal("check error = nil, want aggregated failure")
	}
	if !strings.Contains(err.Error(), "2 manifests failed") {
		t.Errorf("error = %q", err.Error())
	}
	if !strings.Contains(out, "express") {
		t.Error("valid manifest should still be checked")
	}
}

func TestCheckCommand_InvalidOptions(t *testing.T) {
	path := writeTestManifest(t, testManifest)

	_, err := execute(t, "check", path, "--registry", "not a url")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("check error = %v, want INVALID_INPUT", err)
	}
}

func TestCheckCommand_ConfigFile(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, testManifest)
	config := filepath.Join(t.TempDir(), "outdated.toml")
	body := "registry = \"" + srv.URL + "\"\nupdate = \"~\"\nreporter = false\n"
	if err := os.WriteFile(config, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "check", path, "--config", config)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if out != "" {
		t.Errorf("reporter disabled by config, got %q", out)
	}
	if got := readFile(t, path); !strings.Contains(got, `"express": "~4.18.2"`) {
		t.Errorf("config update prefix not applied:\n%s", got)
	}

	// Flags win over the file.
	path = writeTestManifest(t, testManifest)
	if _, err := execute(t, "check", path, "--config", config, "--update=^"); err != nil {
		t.Fatalf("check error: %v", err)
	}
	if got := readFile(t, path); !strings.Contains(got, `"express": "^4.18.2"`) {
		t.Errorf("flag did not override config:\n%s", got)
	}
}

func TestListCommand(t *testing.T) {
	srv := fakeRegistry(t)
	path := writeTestManifest(t, testManifest)

	out, err := execute(t, "list", path, "--registry", srv.URL)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	for _, want := range []string{"express", "lodash", "4.17.21"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	out, err = execute(t, "list", path, "--registry", srv.URL, "--ignore", "lodash")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if strings.Contains(out, "lodash") {
		t.Error("ignored package listed")
	}
}

func TestCheckCommand_ExitClassification(t *testing.T) {
	srv := fakeRegistry(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	tests := []struct {
		name  string
		paths []string
		want  bool
	}{
		{"single threshold", []string{writeTestManifest(t, testManifest)}, true},
		{"all threshold", []string{writeTestManifest(t, testManifest), writeTestManifest(t, testManifest)}, true},
		{"threshold and read failure", []string{writeTestManifest(t, testManifest), missing}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"check"}, tt.paths...)
			args = append(args, "--registry", srv.URL, "--error-dep-count", "1", "--reporter=false")
			_, err := execute(t, args...)
			if err == nil {
				t.Fatal("check error = nil")
			}
			if got := IsPolicyFailure(err); got != tt.want {
				t.Errorf("IsPolicyFailure(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestIsPolicyFailure(t *testing.T) {
	tooMany := &apperrors.TooManyOutdatedError{Count: 3, Threshold: 1}
	other := apperrors.New(apperrors.ErrCodeInvalidInput, "read a")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"threshold", tooMany, true},
		{"other", other, false},
		{"aggregated thresholds", multierror.Append(nil, tooMany, tooMany), true},
		{"mixed", multierror.Append(nil, tooMany, other), false},
		{"empty aggregate", &multierror.Error{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPolicyFailure(tt.err); got != tt.want {
				t.Errorf("IsPolicyFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListCommand_Status(t *testing.T) {
	srv := fakeRegistry(t)
	good := writeTestManifest(t, testManifest)
	bad := writeTestManifest(t, `{"dependencies": `)

	var status bytes.Buffer
	_, err := executeWithStatus(t, &status, "list", good, bad, "--registry", srv.URL)
	if err == nil {
		t.Fatal("list error = nil, want invalid manifest failure")
	}
	for _, want := range []string{
		iconSuccess + " Queried 2 dependencies of " + good,
		iconError + " Failed to query " + bad,
	} {
		if !strings.Contains(status.String(), want) {
			t.Errorf("status output %q missing %q", status.String(), want)
		}
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, "outdated") {
		t.Error("bash completion should be written to stdout")
	}

	for _, cmd := range []string{"check", "list"} {
		out, err := execute(t, cobra.ShellCompRequestCmd, cmd, "")
		if err != nil {
			t.Fatalf("%s completion error: %v", cmd, err)
		}
		want := fmt.Sprintf("json\n:%d\n", cobra.ShellCompDirectiveFilterFileExt)
		if !strings.HasPrefix(out, want) {
			t.Errorf("%s completions = %q, want prefix %q", cmd, out, want)
		}
	}
}

func TestManifestPaths(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"none", nil, []string{"package.json"}},
		{"file", []string{"a/package.json"}, []string{"a/package.json"}},
		{"directory", []string{dir}, []string{filepath.Join(dir, "package.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := manifestPaths(tt.args)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("manifestPaths(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestErrorOrNil(t *testing.T) {
	if err := errorOrNil(nil); err != nil {
		t.Errorf("errorOrNil(nil) = %v", err)
	}

	single := apperrors.New(apperrors.ErrCodeInvalidInput, "read a")
	if err := errorOrNil(multierror.Append(nil, single)); err != single {
		t.Errorf("single failure = %v, want it unwrapped", err)
	}

	err := errorOrNil(multierror.Append(nil, single, context.Canceled))
	if !errors.Is(err, context.Canceled) {
		t.Error("aggregated error should match context.Canceled")
	}
	if !strings.HasPrefix(err.Error(), "2 manifests failed:\n  * read a") {
		t.Errorf("Error() = %q", err.Error())
	}
}
