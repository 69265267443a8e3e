package pyenv

import "testing"

func TestParseVersion(t *testing.T) {
	cases := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"3.12.1", Version{3, 12, 1}, false},
		{"3.12", Version{3, 12, -1}, false},
		{"3", Version{3, -1, -1}, false},
		{"3.12.0rc1", Version{3, 12, 0}, false},
		{"24.0", Version{24, 0, -1}, false},
		{"", Version{}, true},
		{"abc", Version{}, true},
	}

	for _, c := range cases {
		got, err := ParseVersion(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseVersion(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseVersion(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParsePythonVersion(t *testing.T) {
	v, err := ParsePythonVersion("Python 3.12.1")
	if err != nil {
		t.Fatalf("Failed to parse python version: %v", err)
	}
	if v.Major != 3 || v.Minor != 12 || v.Patch != 1 {
		t.Errorf("Expected 3.12.1, got %s", v.String())
	}

	if _, err := ParsePythonVersion("Ruby 3.2.0"); err == nil {
		t.Error("Expected error for non-python banner")
	}
}

func TestParsePipVersion(t *testing.T) {
	v, err := ParsePipVersion("pip 24.0 from /venv/lib/python3.12/site-packages/pip (python 3.12)")
	if err != nil {
		t.Fatalf("Failed to parse pip version: %v", err)
	}
	if v.Major != 24 || v.Minor != 0 {
		t.Errorf("Expected 24.0, got %s", v.String())
	}

	if _, err := ParsePipVersion("not pip output"); err == nil {
		t.Error("Expected error for unexpected banner")
	}
}

func TestVersionCompare(t *testing.T) {
	cases := []struct {
		a, b Version
		want int
	}{
		{Version{3, 12, 1}, Version{3, 12, 1}, 0},
		{Version{3, 12, 1}, Version{3, 11, 9}, 1},
		{Version{3, 10, -1}, Version{3, 12, -1}, -1},
		{Version{4, 0, 0}, Version{3, 99, 99}, 1},
	}

	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", c.a.String(), c.b.String(), got, c.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	cases := []struct {
		v    Version
		want string
	}{
		{Version{3, 12, 1}, "3.12.1"},
		{Version{3, 12, -1}, "3.12"},
		{Version{3, -1, -1}, "3"},
	}

	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}

	v := Version{3, 12, 1}
	if v.MinorString() != "3.12" {
		t.Errorf("MinorString() = %q, want 3.12", v.MinorString())
	}
}
