package pyenv

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Environment describes a usable Python installation: either a system
// interpreter discovered on PATH or a virtual environment on disk.
type Environment struct {
	// Name identifies the environment ("system" or the venv directory name).
	Name string

	// Root is the environment root directory. For a system interpreter this
	// is the installation prefix; for a venv it is the venv directory.
	Root string

	// BinPath is the directory holding the interpreter executable
	// (bin on Unix, Scripts on Windows for a venv).
	BinPath string

	// PythonPath is the full path to the Python executable.
	PythonPath string

	// PipPath is the full path to the pip executable.
	PipPath string

	// PythonVersion is the detected interpreter version.
	PythonVersion Version

	// PipVersion is the detected pip version, zero if pip was not probed.
	PipVersion Version

	// IsNew is true when EnsureVenv created the environment on this run,
	// false when an existing directory was reused.
	IsNew bool
}

// ProgressFunc receives human-readable progress messages during long
// operations (venv creation, dependency installation). May be nil.
type ProgressFunc func(message string)

// VenvOptions configures virtual environment creation. The zero value gives
// the venv module's defaults.
type VenvOptions struct {
	// SystemSitePackages exposes the base interpreter's site-packages.
	SystemSitePackages bool

	// Prompt sets a custom venv prompt prefix.
	Prompt string

	// UpgradeDeps upgrades pip and setuptools after creation.
	UpgradeDeps bool
}

// FindSystemPython locates a base Python interpreter.
//
// When explicitPath is non-empty it is used as-is. Otherwise the search is
// platform specific: python3 then python on Unix; on Windows the py launcher
// is preferred and Microsoft Store placeholder executables are filtered out.
func FindSystemPython(explicitPath string) (*Environment, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, fmt.Errorf("configured python %s not usable: %v", explicitPath, err)
		}
		return NewEnvironmentFromExecutable(explicitPath)
	}

	pythonPath, err := probeInterpreter()
	if err != nil {
		return nil, err
	}
	return NewEnvironmentFromExecutable(pythonPath)
}

// probeInterpreter searches PATH for a Python executable.
func probeInterpreter() (string, error) {
	if runtime.GOOS == "windows" {
		// Prefer the py launcher; it dodges the Microsoft Store placeholder
		// executables that shadow real installs in AppData.
		if p, err := exec.LookPath("py"); err == nil {
			return p, nil
		}
		out, err := exec.Command("where", "python").Output()
		if err != nil {
			return "", fmt.Errorf("python not found: %v", err)
		}
		for _, line := range strings.Split(string(out), "\n") {
			p := strings.TrimSpace(line)
			if p != "" && !strings.Contains(p, "Microsoft\\WindowsApps") {
				return p, nil
			}
		}
		return "", fmt.Errorf("no usable python found on PATH")
	}

	p, err := exec.LookPath("python3")
	if err == nil {
		return p, nil
	}
	p, err = exec.LookPath("python")
	if err != nil {
		return "", fmt.Errorf("python not found: %v", err)
	}
	return p, nil
}

// NewEnvironmentFromExecutable builds an Environment around an existing
// interpreter by querying it for version information.
func NewEnvironmentFromExecutable(pythonPath string) (*Environment, error) {
	env := &Environment{
		Name:       "system",
		Root:       filepath.Dir(filepath.Dir(pythonPath)),
		BinPath:    filepath.Dir(pythonPath),
		PythonPath: pythonPath,
	}

	out, err := runOutput(pythonPath, "--version")
	if err != nil {
		return nil, fmt.Errorf("error running python --version: %v", err)
	}
	env.PythonVersion, err = ParsePythonVersion(out)
	if err != nil {
		return nil, fmt.Errorf("error parsing python version: %v", err)
	}

	return env, nil
}

// EnsureVenv returns the virtual environment at venvPath, creating it with
// the base interpreter's venv module if the directory is absent. An existing
// directory is reused untouched and IsNew is false on the result.
func EnsureVenv(base *Environment, venvPath string, options *VenvOptions, progress ProgressFunc) (*Environment, error) {
	if base == nil {
		return nil, fmt.Errorf("base environment is nil")
	}
	if options == nil {
		options = &VenvOptions{}
	}

	exists := false
	if _, err := os.Stat(venvPath); err == nil {
		exists = true
	}

	env := &Environment{
		Name:  filepath.Base(venvPath),
		Root:  venvPath,
		IsNew: !exists,
	}

	if !exists {
		args := []string{"-m", "venv"}
		if options.SystemSitePackages {
			args = append(args, "--system-site-packages")
		}
		if options.Prompt != "" {
			args = append(args, "--prompt", options.Prompt)
		}
		if options.UpgradeDeps {
			args = append(args, "--upgrade-deps")
		}
		args = append(args, venvPath)

		var stderr bytes.Buffer
		cmd := exec.Command(base.PythonPath, args...)
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("failed to create virtual environment: %v, stderr: %s", err, stderr.String())
		}
		if progress != nil {
			progress("Created virtual environment")
		}
	} else if progress != nil {
		progress("Reusing existing virtual environment")
	}

	if runtime.GOOS == "windows" {
		env.BinPath = filepath.Join(venvPath, "Scripts")
		env.PythonPath = filepath.Join(env.BinPath, "python.exe")
		env.PipPath = filepath.Join(env.BinPath, "pip.exe")
	} else {
		env.BinPath = filepath.Join(venvPath, "bin")
		env.PythonPath = filepath.Join(env.BinPath, "python")
		env.PipPath = filepath.Join(env.BinPath, "pip")
	}

	out, err := runOutput(env.PythonPath, "--version")
	if err != nil {
		return nil, fmt.Errorf("error running venv python --version: %v", err)
	}
	env.PythonVersion, err = ParsePythonVersion(out)
	if err != nil {
		return nil, fmt.Errorf("error parsing venv python version: %v", err)
	}

	out, err = runOutput(env.PipPath, "--version")
	if err != nil {
		return nil, fmt.Errorf("error running venv pip --version: %v", err)
	}
	env.PipVersion, err = ParsePipVersion(out)
	if err != nil {
		return nil, fmt.Errorf("error parsing venv pip version: %v", err)
	}

	// A venv created by an older interpreter than the probed base means the
	// directory is stale; surface it rather than installing into it.
	baseMinor := Version{Major: base.PythonVersion.Major, Minor: base.PythonVersion.Minor, Patch: -1}
	venvMinor := Version{Major: env.PythonVersion.Major, Minor: env.PythonVersion.Minor, Patch: -1}
	if venvMinor.Compare(baseMinor) < 0 {
		return nil, fmt.Errorf("virtual environment python %s is older than base python %s; remove %s and retry",
			env.PythonVersion.String(), base.PythonVersion.String(), venvPath)
	}

	return env, nil
}

// runOutput runs a command and returns its trimmed combined output. Version
// banners land on stdout or stderr depending on the interpreter vintage, so
// both are captured.
func runOutput(path string, args ...string) (string, error) {
	out, err := exec.Command(path, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
