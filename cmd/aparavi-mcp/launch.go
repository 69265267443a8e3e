package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aparavi-software/aparavi-mcp/internal/config"
	"github.com/aparavi-software/aparavi-mcp/internal/launcher"
	"github.com/aparavi-software/aparavi-mcp/internal/pathutil"
	"github.com/aparavi-software/aparavi-mcp/internal/pyenv"
)

// Layout of the package root in launcher mode.
const (
	venvDirName         = ".venv"
	requirementsFile    = "requirements.txt"
	sdkRequirementsFile = "requirements-sdk.txt"
	serverScript        = "mcp-server.py"
)

// sdkIndexURL is the secondary package index hosting the Aparavi SDK.
const sdkIndexURL = "https://test.pypi.org/simple/"

func newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch",
		Short: "Provision the Python environment and run the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch()
		},
	}
}

// progressLogger adapts the configured log level to a pyenv progress
// callback. Progress lines repeat heavily, so normal level stays quiet.
func progressLogger(cfg *config.Config) pyenv.ProgressFunc {
	if cfg.LogLevel != config.LogVerbose {
		return nil
	}
	return func(msg string) { log.Println(msg) }
}

// provision ensures the venv exists and its dependencies are installed.
func provision(cfg *config.Config) (*pyenv.Environment, error) {
	base, err := pyenv.FindSystemPython(cfg.PythonPath)
	if err != nil {
		return nil, err
	}
	if cfg.LogLevel == config.LogVerbose {
		log.Printf("using base interpreter %s (%s)", base.PythonPath, base.PythonVersion.String())
	}

	progress := progressLogger(cfg)
	venv, err := pyenv.EnsureVenv(base, filepath.Join(cfg.Home, venvDirName), nil, progress)
	if err != nil {
		return nil, err
	}
	if venv.IsNew {
		log.Printf("created virtual environment at %s", venv.Root)
	}

	requirements := filepath.Join(cfg.Home, requirementsFile)
	if !pathutil.FileExists(requirements) {
		return nil, fmt.Errorf("requirements file not found: %s", requirements)
	}

	// The SDK requirement set resolves off a secondary index; installing
	// both files in one invocation lets pip see every constraint at once.
	files := []string{requirements}
	extraIndex := ""
	if sdk := filepath.Join(cfg.Home, sdkRequirementsFile); pathutil.FileExists(sdk) {
		files = append(files, sdk)
		extraIndex = sdkIndexURL
	}

	if err := venv.InstallRequirementFiles(files, extraIndex, progress); err != nil {
		return nil, err
	}
	return venv, nil
}

func runLaunch() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	venv, err := provision(cfg)
	if err != nil {
		return err
	}

	script := filepath.Join(cfg.Home, serverScript)
	if !pathutil.FileExists(script) {
		return fmt.Errorf("server script not found: %s", script)
	}

	sup, err := launcher.Start(launcher.Options{
		PythonPath: venv.PythonPath,
		Script:     script,
		Dir:        cfg.Home,
		Readiness:  true,
	})
	if err != nil {
		return err
	}

	// A fault on the status channel means the child died during startup;
	// log it with the traceback, then let Wait propagate the exit code.
	go func() {
		if fault := <-sup.Faults(); fault != nil {
			log.Printf("server failed to start: %s", fault.Error())
		}
	}()

	code, err := sup.Wait()
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}
