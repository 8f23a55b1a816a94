// Package exports names, lists, and rotates timestamped history exports in
// a project's .resonance/exports directory.
package exports

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	filePrefix = "history-"
	fileExt    = ".jsonl"
	timeLayout = "20060102-150405"
)

// Info holds metadata for retention decisions.
type Info struct {
	Path      string
	Size      int64
	CreatedAt time.Time
}

// RetentionPolicy decides which exports to keep.
type RetentionPolicy interface {
	Apply(exports []Info) (keep []Info)
}

// CountPolicy keeps the N most recent exports.
type CountPolicy struct {
	MaxCount int
}

// Apply keeps the first MaxCount exports (assumed sorted newest-first).
func (p *CountPolicy) Apply(exports []Info) []Info {
	if len(exports) <= p.MaxCount {
		return exports
	}
	return exports[:p.MaxCount]
}

// AgePolicy keeps exports newer than MaxAge.
type AgePolicy struct {
	MaxAge time.Duration
	now    func() time.Time
}

// Apply keeps exports whose CreatedAt is within MaxAge of now.
func (p *AgePolicy) Apply(exports []Info) []Info {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	cutoff := now().Add(-p.MaxAge)
	var keep []Info
	for _, e := range exports {
		if e.CreatedAt.After(cutoff) {
			keep = append(keep, e)
		}
	}
	return keep
}

// SizePolicy keeps exports until the total size exceeds MaxTotalBytes.
// The newest export is always kept.
type SizePolicy struct {
	MaxTotalBytes int64
}

// Apply keeps exports (newest-first) until adding the next would exceed the limit.
func (p *SizePolicy) Apply(exports []Info) []Info {
	var keep []Info
	var total int64
	for _, e := range exports {
		if total+e.Size > p.MaxTotalBytes && len(keep) > 0 {
			break
		}
		keep = append(keep, e)
		total += e.Size
	}
	return keep
}

// CompositePolicy keeps an export only if EVERY sub-policy keeps it.
type CompositePolicy struct {
	Policies []RetentionPolicy
}

// Apply returns the intersection of exports kept by the sub-policies.
func (p *CompositePolicy) Apply(exports []Info) []Info {
	kept := exports
	for _, policy := range p.Policies {
		kept = policy.Apply(kept)
	}
	return kept
}

// NewPath returns dir/history-<UTC timestamp>.jsonl.
func NewPath(dir string, now time.Time) string {
	return filepath.Join(dir, filePrefix+now.UTC().Format(timeLayout)+fileExt)
}

// List scans dir for history-*.jsonl files and returns them newest-first.
// A missing directory yields no exports.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading exports directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		created, ok := parseName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Path:      filepath.Join(dir, e.Name()),
			Size:      info.Size(),
			CreatedAt: created,
		})
	}

	// The timestamp is embedded in the name, so name order is time order.
	sort.Slice(out, func(i, j int) bool {
		return filepath.Base(out[i].Path) > filepath.Base(out[j].Path)
	})
	return out, nil
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	t, err := time.ParseInLocation(timeLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ApplyRetention deletes exports in dir not kept by the policy and returns
// the removed paths.
func ApplyRetention(dir string, policy RetentionPolicy) (deleted []string, err error) {
	all, err := List(dir)
	if err != nil {
		return nil, err
	}

	keepSet := make(map[string]bool)
	for _, e := range policy.Apply(all) {
		keepSet[e.Path] = true
	}

	for _, e := range all {
		if keepSet[e.Path] {
			continue
		}
		if err := os.Remove(e.Path); err != nil {
			return deleted, fmt.Errorf("removing %s: %w", filepath.Base(e.Path), err)
		}
		deleted = append(deleted, e.Path)
	}
	return deleted, nil
}

// ParseDuration parses duration strings like "30d", "2w", "720h".
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || num < 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(num) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration suffix %q in %q", string(suffix), s)
	}
}

// ParseSize parses size strings like "100MB", "1GB", "500KB" into bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Longer suffixes first so "MB" does not match "B".
	suffixes := []struct {
		suffix     string
		multiplier int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	for _, ss := range suffixes {
		if strings.HasSuffix(s, ss.suffix) {
			num, err := strconv.ParseInt(strings.TrimSuffix(s, ss.suffix), 10, 64)
			if err != nil || num < 0 {
				return 0, fmt.Errorf("invalid size: %q", s)
			}
			return num * ss.multiplier, nil
		}
	}

	return 0, fmt.Errorf("invalid size: %q (expected suffix: B, KB, MB, GB)", s)
}
