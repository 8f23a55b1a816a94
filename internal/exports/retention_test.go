package exports

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleExports(now time.Time) []Info {
	return []Info{
		{Path: "/e/history-5.jsonl", CreatedAt: now, Size: 500},
		{Path: "/e/history-4.jsonl", CreatedAt: now.Add(-1 * time.Hour), Size: 500},
		{Path: "/e/history-3.jsonl", CreatedAt: now.Add(-30 * time.Hour), Size: 500},
		{Path: "/e/history-2.jsonl", CreatedAt: now.Add(-48 * time.Hour), Size: 500},
		{Path: "/e/history-1.jsonl", CreatedAt: now.Add(-720 * time.Hour), Size: 500},
	}
}

func TestPolicies(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixed := func() time.Time { return now }

	tests := []struct {
		name   string
		policy RetentionPolicy
		want   []string
	}{
		{"count keeps newest", &CountPolicy{MaxCount: 3}, []string{"/e/history-5.jsonl", "/e/history-4.jsonl", "/e/history-3.jsonl"}},
		{"count above total", &CountPolicy{MaxCount: 10}, []string{"/e/history-5.jsonl", "/e/history-4.jsonl", "/e/history-3.jsonl", "/e/history-2.jsonl", "/e/history-1.jsonl"}},
		{"age", &AgePolicy{MaxAge: 24 * time.Hour, now: fixed}, []string{"/e/history-5.jsonl", "/e/history-4.jsonl"}},
		{"size", &SizePolicy{MaxTotalBytes: 1200}, []string{"/e/history-5.jsonl", "/e/history-4.jsonl"}},
		{"size always keeps newest", &SizePolicy{MaxTotalBytes: 10}, []string{"/e/history-5.jsonl"}},
		{"composite intersects", &CompositePolicy{Policies: []RetentionPolicy{
			&AgePolicy{MaxAge: 72 * time.Hour, now: fixed},
			&CountPolicy{MaxCount: 3},
		}}, []string{"/e/history-5.jsonl", "/e/history-4.jsonl", "/e/history-3.jsonl"}},
		{"composite tighter age", &CompositePolicy{Policies: []RetentionPolicy{
			&CountPolicy{MaxCount: 4},
			&AgePolicy{MaxAge: 2 * time.Hour, now: fixed},
		}}, []string{"/e/history-5.jsonl", "/e/history-4.jsonl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep := tt.policy.Apply(sampleExports(now))
			if len(keep) != len(tt.want) {
				t.Fatalf("kept %d, want %d: %v", len(keep), len(tt.want), keep)
			}
			for i := range tt.want {
				if keep[i].Path != tt.want[i] {
					t.Errorf("keep[%d] = %s, want %s", i, keep[i].Path, tt.want[i])
				}
			}
		})
	}
}

func TestNewPath(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 15, 0, time.FixedZone("X", 3600))
	got := NewPath("/proj/.resonance/exports", now)
	want := filepath.Join("/proj/.resonance/exports", "history-20260301-083015.jsonl")
	if got != want {
		t.Errorf("NewPath() = %q, want %q", got, want)
	}

	created, ok := parseName(filepath.Base(got))
	if !ok || !created.Equal(now) {
		t.Errorf("parseName() = %v, %v; want %v", created, ok, now)
	}
}

func writeExport(t *testing.T, dir string, at time.Time) string {
	t.Helper()
	path := NewPath(dir, at)
	if err := os.WriteFile(path, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestListAndApplyRetention(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var paths []string
	for i := 0; i < 4; i++ {
		paths = append(paths, writeExport(t, dir, base.Add(time.Duration(i)*time.Hour)))
	}
	// Files that do not look like exports are ignored.
	for _, name := range []string{"notes.jsonl", "history-latest.jsonl", "history-20260301-000000.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "history-20260101-000000.jsonl"), 0700); err != nil {
		t.Fatal(err)
	}

	listed, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 4 {
		t.Fatalf("List() returned %d exports, want 4", len(listed))
	}
	if listed[0].Path != paths[3] || listed[3].Path != paths[0] {
		t.Errorf("List() not newest-first: %v", listed)
	}
	if !listed[0].CreatedAt.Equal(base.Add(3 * time.Hour)) {
		t.Errorf("CreatedAt = %v, want %v", listed[0].CreatedAt, base.Add(3*time.Hour))
	}

	deleted, err := ApplyRetention(dir, &CountPolicy{MaxCount: 2})
	if err != nil {
		t.Fatalf("ApplyRetention() error = %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("deleted %d, want 2", len(deleted))
	}
	for _, p := range paths[:2] {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be deleted", filepath.Base(p))
		}
	}
	for _, p := range paths[2:] {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should be kept: %v", filepath.Base(p), err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.jsonl")); err != nil {
		t.Error("non-export file was removed")
	}
}

func TestList_MissingDir(t *testing.T) {
	got, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil || got != nil {
		t.Errorf("List() = %v, %v; want nil, nil", got, err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"720h", 720 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"", 0, true},
		{"d", 0, true},
		{"xd", 0, true},
		{"-3d", 0, true},
		{"5y", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"100B", 100, false},
		{"500KB", 500 * 1024, false},
		{"100MB", 100 * 1024 * 1024, false},
		{"1GB", 1024 * 1024 * 1024, false},
		{" 2MB ", 2 * 1024 * 1024, false},
		{"", 0, true},
		{"MB", 0, true},
		{"-1KB", 0, true},
		{"100", 0, true},
		{"1TB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
