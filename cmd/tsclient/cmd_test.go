//go:build !windows

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

var (
	mockBuildOnce  sync.Once
	mockBinaryPath string
	errMockBuild   error
)

func buildMockBinary() {
	dir, err := os.MkdirTemp("", "mock-tsserver-*")
	if err != nil {
		errMockBuild = fmt.Errorf("tmpdir: %w", err)
		return
	}
	mockBinaryPath = filepath.Join(dir, "mock-tsserver")
	cmd := exec.Command("go", "build", "-o", mockBinaryPath, "../../tsserver/testdata/mock-tsserver/main.go")
	if out, err := cmd.CombinedOutput(); err != nil {
		errMockBuild = fmt.Errorf("build mock: %w: %s", err, out)
		os.RemoveAll(dir)
	}
}

func mustBuild(t *testing.T) {
	t.Helper()
	mockBuildOnce.Do(buildMockBinary)
	if errMockBuild != nil {
		t.Fatalf("mock binary build failed: %v", errMockBuild)
	}
}

// run executes the CLI with a config pointing at the mock server and
// returns stdout and the resolved options.
func run(t *testing.T, args ...string) (string, *options, error) {
	t.Helper()
	mustBuild(t)

	prevOut, prevLevel, prevFormatter := logrus.StandardLogger().Out, logrus.GetLevel(), logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tsclient.yaml")
	cfg := fmt.Sprintf("server:\n  path: %s\n  dir: %s\nlog:\n  level: error\n", mockBinaryPath, dir)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	opts := &options{}
	root := newRootCommand(&out, io.Discard, opts)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), opts, err
}

func TestQuickInfo(t *testing.T) {
	out, _, err := run(t, "quickinfo", "a.ts", "1", "7")
	if err != nil {
		t.Fatalf("quickinfo: %v", err)
	}
	var body struct {
		DisplayString string `json:"displayString"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if body.DisplayString != "const x: number" {
		t.Errorf("displayString = %q", body.DisplayString)
	}
}

func TestQuickInfo_BadPosition(t *testing.T) {
	if _, _, err := run(t, "quickinfo", "a.ts", "zero", "7"); err == nil || !strings.Contains(err.Error(), "invalid line") {
		t.Errorf("err = %v, want invalid line", err)
	}
	if _, _, err := run(t, "quickinfo", "a.ts"); err == nil {
		t.Error("expected argument count error")
	}
}

func TestRequest_Echo(t *testing.T) {
	out, _, err := run(t, "request", "echo", `{"file":"/p/a.ts","line":3}`)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	want := "{\n  \"file\": \"/p/a.ts\",\n  \"line\": 3\n}\n"
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestRequest_ApplicationError(t *testing.T) {
	_, _, err := run(t, "request", "fail")
	if err == nil || !strings.Contains(err.Error(), "mock failure") {
		t.Errorf("err = %v, want mock failure", err)
	}
}

func TestRequest_InvalidJSON(t *testing.T) {
	if _, _, err := run(t, "request", "echo", "{broken"); err == nil {
		t.Error("expected invalid JSON error")
	}
}

func TestDiagnostics(t *testing.T) {
	out, _, err := run(t, "diagnostics", "a.ts", "b.ts")
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	var diags []json.RawMessage
	if err := json.Unmarshal([]byte(out), &diags); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if len(diags) != 6 {
		t.Errorf("got %d diagnostics, want 6", len(diags))
	}
}

func TestFlagOverrides(t *testing.T) {
	_, opts, err := run(t,
		"--server-args", `--locale "en us" --disableAutomaticTypingAcquisition`,
		"--log-format", "json",
		"request", "echo",
	)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if diff := cmp.Diff([]string{"--locale", "en us", "--disableAutomaticTypingAcquisition"}, opts.cfg.Server.Args); diff != "" {
		t.Errorf("server args (-want +got):\n%s", diff)
	}
	if opts.cfg.Log.Format != "json" {
		t.Errorf("log format = %q", opts.cfg.Log.Format)
	}
}

func TestFlagOverrides_Errors(t *testing.T) {
	if _, _, err := run(t, "--server-args", `"unterminated`, "request", "echo"); err == nil {
		t.Error("expected shell quoting error")
	}
	if _, _, err := run(t, "--log-format", "xml", "request", "echo"); err == nil {
		t.Error("expected log format error")
	}
	if _, _, err := run(t, "--server", "definitely-not-a-tsserver-binary", "request", "echo"); err == nil {
		t.Error("expected launch error")
	}
}
