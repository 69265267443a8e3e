package pyenv

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakePython writes a shell script that mimics the small slice of python
// behavior pyenv relies on: --version banners and "-m venv <dir>" creating
// a bin directory with python and pip stand-ins.
func fakePython(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter scripts require a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "python3")
	body := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "Python 3.12.1"
  exit 0
fi
if [ "$1" = "-m" ] && [ "$2" = "venv" ]; then
  for arg; do venvdir="$arg"; done
  mkdir -p "$venvdir/bin"
  cp "$0" "$venvdir/bin/python"
  cat > "$venvdir/bin/pip" <<'PIP'
#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "pip 24.0 from /fake (python 3.12)"
  exit 0
fi
if [ "$1" = "freeze" ]; then
  echo "requests==2.31.0"
  echo "fastmcp @ file:///tmp/build/fastmcp"
  exit 0
fi
exit 0
PIP
  chmod +x "$venvdir/bin/pip"
  exit 0
fi
exit 0
`
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	return script
}

func TestEnsureVenvCreatesWhenAbsent(t *testing.T) {
	base, err := NewEnvironmentFromExecutable(fakePython(t))
	if err != nil {
		t.Fatalf("Failed to probe fake python: %v", err)
	}

	venvPath := filepath.Join(t.TempDir(), ".venv")
	env, err := EnsureVenv(base, venvPath, nil, nil)
	if err != nil {
		t.Fatalf("EnsureVenv failed: %v", err)
	}

	if !env.IsNew {
		t.Error("Expected IsNew for a freshly created venv")
	}
	if env.PythonVersion.Major != 3 || env.PythonVersion.Minor != 12 {
		t.Errorf("Unexpected venv python version: %s", env.PythonVersion.String())
	}
	if env.PipVersion.Major != 24 {
		t.Errorf("Unexpected venv pip version: %s", env.PipVersion.String())
	}
	if _, err := os.Stat(env.PythonPath); err != nil {
		t.Errorf("Expected venv python at %s: %v", env.PythonPath, err)
	}
}

func TestEnsureVenvReusesExisting(t *testing.T) {
	base, err := NewEnvironmentFromExecutable(fakePython(t))
	if err != nil {
		t.Fatalf("Failed to probe fake python: %v", err)
	}

	venvPath := filepath.Join(t.TempDir(), ".venv")
	if _, err := EnsureVenv(base, venvPath, nil, nil); err != nil {
		t.Fatalf("First EnsureVenv failed: %v", err)
	}

	// Drop a sentinel; a reuse must leave the directory untouched.
	sentinel := filepath.Join(venvPath, "sentinel")
	if err := os.WriteFile(sentinel, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	var messages []string
	env, err := EnsureVenv(base, venvPath, nil, func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("Second EnsureVenv failed: %v", err)
	}

	if env.IsNew {
		t.Error("Expected IsNew to be false for an existing venv")
	}
	if _, err := os.Stat(sentinel); err != nil {
		t.Errorf("Sentinel file was disturbed: %v", err)
	}
	reused := false
	for _, m := range messages {
		if strings.Contains(m, "Reusing") {
			reused = true
		}
	}
	if !reused {
		t.Errorf("Expected a reuse progress message, got %v", messages)
	}
}

func TestEnsureVenvNilBase(t *testing.T) {
	if _, err := EnsureVenv(nil, "/tmp/whatever", nil, nil); err == nil {
		t.Error("Expected error for nil base environment")
	}
}

func TestFindSystemPythonExplicitMissing(t *testing.T) {
	if _, err := FindSystemPython(filepath.Join(t.TempDir(), "no-such-python")); err == nil {
		t.Error("Expected error for missing explicit interpreter")
	}
}

func TestFreeze(t *testing.T) {
	base, err := NewEnvironmentFromExecutable(fakePython(t))
	if err != nil {
		t.Fatalf("Failed to probe fake python: %v", err)
	}

	venvPath := filepath.Join(t.TempDir(), ".venv")
	env, err := EnsureVenv(base, venvPath, nil, nil)
	if err != nil {
		t.Fatalf("EnsureVenv failed: %v", err)
	}

	specPath := filepath.Join(t.TempDir(), "env.json")
	if err := env.Freeze(specPath); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "requests==2.31.0") {
		t.Errorf("Expected pinned package in spec, got: %s", out)
	}
	if strings.Contains(out, "file:///") {
		t.Errorf("Expected file URLs to be cleaned, got: %s", out)
	}
	if !strings.Contains(out, `"python_version": "3.12"`) {
		t.Errorf("Expected python version in spec, got: %s", out)
	}
}
