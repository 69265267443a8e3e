// Package pyenv locates Python interpreters and provisions the virtual
// environment the MCP server runs in.
//
// The launcher uses it in three steps:
//
//	base, err := pyenv.FindSystemPython("")
//	venv, err := pyenv.EnsureVenv(base, filepath.Join(home, ".venv"), nil, nil)
//	err = venv.InstallRequirements(reqPath, extraIndexURL, nil)
//
// A virtual environment that already exists on disk is reused untouched;
// EnsureVenv only invokes "python -m venv" when the directory is absent.
// Environments can be serialized to a JSON spec with Freeze for
// reproducibility.
package pyenv
