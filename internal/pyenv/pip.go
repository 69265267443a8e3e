package pyenv

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
)

// InstallRequirements installs packages from a pip requirements file into
// the environment. extraIndexURL, when non-empty, is passed through as
// --extra-index-url so SDK packages hosted on a secondary index resolve in
// the same invocation as the main requirement set.
//
// Returns an error including pip's stderr output if the install fails.
// There is no retry; a failed install aborts startup.
func (env *Environment) InstallRequirements(requirementsPath string, extraIndexURL string, progress ProgressFunc) error {
	return env.InstallRequirementFiles([]string{requirementsPath}, extraIndexURL, progress)
}

// InstallRequirementFiles installs several requirement files in a single
// pip invocation, so version resolution sees all requirement sets at once.
func (env *Environment) InstallRequirementFiles(paths []string, extraIndexURL string, progress ProgressFunc) error {
	if len(paths) == 0 {
		return fmt.Errorf("no requirement files given")
	}
	args := []string{"install", "--no-warn-script-location"}
	for _, path := range paths {
		args = append(args, "-r", path)
	}
	if extraIndexURL != "" {
		args = append(args, "--extra-index-url", extraIndexURL)
	}
	return env.runPip(args, "Installing pip requirements...", progress)
}

// InstallPackages installs the given package specifiers (e.g. "fastmcp",
// "requests>=2.31") into the environment.
func (env *Environment) InstallPackages(packages []string, indexURL string, extraIndexURL string, progress ProgressFunc) error {
	args := []string{"install", "--no-warn-script-location"}
	args = append(args, packages...)
	if indexURL != "" {
		args = append(args, "--index-url", indexURL)
	}
	if extraIndexURL != "" {
		args = append(args, "--extra-index-url", extraIndexURL)
	}
	return env.runPip(args, "Installing pip packages...", progress)
}

// runPip executes pip with args, streaming stdout line counts to the
// progress callback and folding stderr into any returned error.
func (env *Environment) runPip(args []string, description string, progress ProgressFunc) error {
	cmd := exec.Command(env.PipPath, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("error creating stdout pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting pip install: %v", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if progress != nil {
			progress(description)
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("error installing requirements: %v, stderr: %s", err, stderrBuf.String())
	}

	if progress != nil {
		progress("Pip install complete")
	}
	return nil
}
