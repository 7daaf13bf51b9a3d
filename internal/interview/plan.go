package interview

import "time"

// ReviewIntervals are the spaced-repetition offsets for each weak topic.
var ReviewIntervals = [3]time.Duration{24 * time.Hour, 3 * 24 * time.Hour, 7 * 24 * time.Hour}

// BuildPracticePlan schedules each weakness for review at now+1d, +3d and +7d.
func BuildPracticePlan(report Report, now time.Time) PracticePlan {
	base := now.UnixMilli()
	entries := make([]PlanEntry, 0, len(report.Weaknesses))
	for _, w := range report.Weaknesses {
		var due [3]int64
		for i, d := range ReviewIntervals {
			due[i] = base + d.Milliseconds()
		}
		entries = append(entries, PlanEntry{Topic: w, Due: due})
	}
	return PracticePlan{GeneratedAt: base, Entries: entries}
}
