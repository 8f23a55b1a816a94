package resonance

import "github.com/nvandessel/resonance/internal/models"

// trajectoryRecorder collects sampled states. With a positive limit it keeps
// only the most recent periodic samples in a ring; the final sample is always
// kept.
type trajectoryRecorder struct {
	samples  []models.TrajectorySample
	limit    int
	next     int
	wrapped  bool
	onSample func(models.TrajectorySample)
}

func newTrajectoryRecorder(cycles, interval, limit int, onSample func(models.TrajectorySample)) *trajectoryRecorder {
	expected := 0
	if cycles > 0 {
		expected = (cycles-1)/interval + 1
	}
	if limit > 0 && expected > limit {
		expected = limit
	}
	return &trajectoryRecorder{
		samples:  make([]models.TrajectorySample, 0, expected+1),
		limit:    limit,
		onSample: onSample,
	}
}

func (r *trajectoryRecorder) record(sample models.TrajectorySample) {
	if r.onSample != nil {
		r.onSample(sample)
	}
	if r.limit > 0 && len(r.samples) == r.limit {
		r.samples[r.next] = sample
		r.next = (r.next + 1) % r.limit
		r.wrapped = true
		return
	}
	r.samples = append(r.samples, sample)
}

// finish appends the final sample and returns the samples oldest first.
func (r *trajectoryRecorder) finish(final models.TrajectorySample) []models.TrajectorySample {
	if r.onSample != nil {
		r.onSample(final)
	}
	out := r.samples
	if r.wrapped && r.next > 0 {
		out = make([]models.TrajectorySample, 0, len(r.samples)+1)
		out = append(out, r.samples[r.next:]...)
		out = append(out, r.samples[:r.next]...)
	}
	return append(out, final)
}
