package eventlog

import "time"

// Summary counts the retained entries by severity.
type Summary struct {
	Total      int              `json:"total"`
	Counts     map[Severity]int `json:"counts"`
	FirstAt    *time.Time       `json:"first_at,omitempty"`
	LastAt     *time.Time       `json:"last_at,omitempty"`
	CrisisRate float64          `json:"crisis_rate"`
}

func Summarize(entries []Entry) Summary {
	s := Summary{
		Counts: map[Severity]int{
			SeverityNeutral:  0,
			SeverityPositive: 0,
			SeverityNegative: 0,
			SeverityCritical: 0,
		},
	}
	for i := range entries {
		e := entries[i]
		s.Counts[e.Severity]++
		s.Total++
		if s.FirstAt == nil || e.Timestamp.Before(*s.FirstAt) {
			s.FirstAt = &entries[i].Timestamp
		}
		if s.LastAt == nil || e.Timestamp.After(*s.LastAt) {
			s.LastAt = &entries[i].Timestamp
		}
	}
	if s.Total > 0 {
		s.CrisisRate = float64(s.Counts[SeverityCritical]) / float64(s.Total)
	}
	return s
}

// Summary summarizes the entries currently retained.
func (l *Log) Summary() Summary {
	return Summarize(l.Since(0))
}
