package pyenv

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// EnvironmentSpec is the JSON form of a frozen environment. It records
// enough to recreate the venv: the interpreter version and the pinned pip
// package set.
type EnvironmentSpec struct {
	// Name is the environment name.
	Name string `json:"name"`

	// PythonVersion is the interpreter version as "major.minor".
	PythonVersion string `json:"python_version"`

	// PipPackages lists packages in "name==version" pip format.
	PipPackages []string `json:"pip_packages"`
}

// Local editable installs show up in pip freeze as "name @ file:///...";
// only the name is reproducible, so the URL is stripped.
var fileURLPattern = regexp.MustCompile(`^(.+) @ file:///.+$`)

// Freeze writes the environment's package set to a JSON spec file.
// The pip freeze output is cleaned of file URLs and comments first.
func (env *Environment) Freeze(filePath string) error {
	if env.PipPath == "" {
		return fmt.Errorf("environment has no pip; nothing to freeze")
	}

	out, err := exec.Command(env.PipPath, "freeze").Output()
	if err != nil {
		return fmt.Errorf("error running pip freeze: %v", err)
	}

	spec := EnvironmentSpec{
		Name:          env.Name,
		PythonVersion: env.PythonVersion.MinorString(),
		PipPackages:   []string{},
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if m := fileURLPattern.FindStringSubmatch(line); len(m) > 1 {
			line = m[1]
		}
		// Drop trailing comments and blank lines.
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			spec.PipPackages = append(spec.PipPackages, line)
		}
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling environment spec: %v", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing environment spec: %v", err)
	}
	return nil
}
