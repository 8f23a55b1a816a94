package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	allowedDir := t.TempDir()
	otherDir := t.TempDir()

	nested := filepath.Join(allowedDir, "nested")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		allowedDirs []string
		errContains string // empty means the path is accepted
	}{
		{"inside allowed dir", filepath.Join(allowedDir, "history.jsonl"), []string{allowedDir}, ""},
		{"nested dir", filepath.Join(nested, "history.jsonl"), []string{allowedDir}, ""},
		{"missing parents", filepath.Join(allowedDir, "a", "b", "history.jsonl"), []string{allowedDir}, ""},
		{"the allowed dir itself", allowedDir, []string{allowedDir}, ""},
		{"second allowed dir", filepath.Join(otherDir, "history.jsonl"), []string{allowedDir, otherDir}, ""},
		{"doubled separators", allowedDir + string(os.PathSeparator) + string(os.PathSeparator) + "history.jsonl", []string{allowedDir}, ""},
		{"dot-dot escape", filepath.Join(allowedDir, "..", "etc", "passwd"), []string{allowedDir}, "outside allowed directories"},
		{"nested dot-dot escape", filepath.Join(nested, "..", "..", "etc", "passwd"), []string{allowedDir}, "outside allowed directories"},
		{"other dir", filepath.Join(otherDir, "history.jsonl"), []string{allowedDir}, "outside allowed directories"},
		{"null byte", filepath.Join(allowedDir, "hist\x00ory.jsonl"), []string{allowedDir}, "null byte"},
		{"empty path", "", []string{allowedDir}, "empty"},
		{"no allowed dirs", filepath.Join(allowedDir, "history.jsonl"), nil, "no allowed directories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, tt.allowedDirs)
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("ValidatePath() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrPathRejected) {
				t.Errorf("ValidatePath() = %v, want ErrPathRejected", err)
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidatePath() = %v, want error containing %q", err, tt.errContains)
			}
		})
	}
}

func TestValidatePath_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not supported on Windows")
	}

	allowedDir := t.TempDir()
	outsideDir := t.TempDir()

	escape := filepath.Join(allowedDir, "escape")
	if err := os.Symlink(outsideDir, escape); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}
	real := filepath.Join(allowedDir, "real")
	if err := os.MkdirAll(real, 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	inside := filepath.Join(allowedDir, "inside")
	if err := os.Symlink(real, inside); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	if err := ValidatePath(filepath.Join(escape, "history.jsonl"), []string{allowedDir}); err == nil {
		t.Error("symlink pointing outside the allowed dir should be rejected")
	}
	if err := ValidatePath(filepath.Join(inside, "history.jsonl"), []string{allowedDir}); err != nil {
		t.Errorf("symlink staying inside the allowed dir should pass, got %v", err)
	}
}

func TestRedactPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/user/.resonance/resonance.db", ".../.resonance/resonance.db"},
		{"/home/user/.resonance/", ".../user/.resonance"},
		{"resonance.db", "resonance.db"},
		{"/resonance.db", "resonance.db"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := RedactPath(tt.path); got != tt.want {
				t.Errorf("RedactPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDefaultAllowedExportDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	root := t.TempDir()

	dirs, err := DefaultAllowedExportDirs(root)
	if err != nil {
		t.Fatalf("DefaultAllowedExportDirs() error = %v", err)
	}

	want := []string{root, filepath.Join(home, ".resonance", ExportsDir)}
	if len(dirs) != len(want) {
		t.Fatalf("got %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dirs[%d] = %q, want %q", i, dirs[i], want[i])
		}
	}
}

func TestValidateExportPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	root := t.TempDir()
	exportsDir := filepath.Join(home, ".resonance", ExportsDir)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"in project root", filepath.Join(root, "history.jsonl"), false},
		{"in home exports", filepath.Join(exportsDir, "history.jsonl"), false},
		{"upper-case extension", filepath.Join(root, "HISTORY.JSONL"), false},
		{"wrong extension", filepath.Join(root, "history.json"), true},
		{"no extension", filepath.Join(root, "history"), true},
		{"home outside exports", filepath.Join(home, "history.jsonl"), true},
		{"outside everything", filepath.Join(t.TempDir(), "history.jsonl"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExportPath(tt.path, root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateExportPath() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrPathRejected) {
				t.Errorf("error %v does not wrap ErrPathRejected", err)
			}
		})
	}
}
