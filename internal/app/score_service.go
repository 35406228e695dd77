package app

import (
	"context"
	"sort"
	"time"

	"forklift-training-service/internal/domain"
	"go.uber.org/zap"
)

// ScoreService appends attempt results and derives history statistics.
type ScoreService struct {
	scores ScoreStore
	now    func() time.Time
	log    *zap.Logger
}

func NewScoreService(scores ScoreStore, log *zap.Logger) *ScoreService {
	return &ScoreService{scores: scores, now: time.Now, log: log}
}

// RecordAttempt appends a new record stamped with the server clock.
func (s *ScoreService) RecordAttempt(ctx context.Context, username string, score, maxScore int) (domain.ScoreRecord, error) {
	if maxScore <= 0 {
		return domain.ScoreRecord{}, domain.ErrEmptyQuestionSet
	}
	record := domain.NewScoreRecord(username, score, maxScore, s.now())
	if err := s.scores.AppendScore(ctx, record); err != nil {
		return domain.ScoreRecord{}, err
	}
	s.log.Info("attempt recorded",
		zap.String("username", username),
		zap.Int("score", score),
		zap.Int("max_score", maxScore),
		zap.Float64("percentage", record.Percentage),
	)
	return record, nil
}

// Summary aggregates a user's attempts.
type Summary struct {
	Attempts int                 `json:"attempts"`
	Best     float64             `json:"best"`
	Average  float64             `json:"average"`
	Latest   *domain.ScoreRecord `json:"latest,omitempty"`
}

// History is a user's records oldest first, with their summary.
type History struct {
	Records []domain.ScoreRecord `json:"records"`
	Summary Summary              `json:"summary"`
}

// GetHistory returns every record for username in insertion order.
func (s *ScoreService) GetHistory(ctx context.Context, username string) (History, error) {
	all, err := s.scores.LoadScores(ctx)
	if err != nil {
		return History{}, err
	}
	records := make([]domain.ScoreRecord, 0)
	for _, r := range all {
		if r.Username == username {
			records = append(records, r)
		}
	}
	return History{Records: records, Summary: summarize(records)}, nil
}

func summarize(records []domain.ScoreRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	sum := 0.0
	best := records[0].Percentage
	for _, r := range records {
		sum += r.Percentage
		if r.Percentage > best {
			best = r.Percentage
		}
	}
	latest := records[len(records)-1]
	return Summary{
		Attempts: len(records),
		Best:     best,
		Average:  sum / float64(len(records)),
		Latest:   &latest,
	}
}

// ScoreEntry is a record joined with the user's display name.
type ScoreEntry struct {
	domain.ScoreRecord
	Name string `json:"name"`
}

// Bin is one bucket of the percentage distribution.
type Bin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UserAverage is the mean percentage for one display name.
type UserAverage struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

// Stats is the admin overview over all recorded attempts.
type Stats struct {
	Total        int           `json:"total"`
	Average      float64       `json:"average"`
	Distribution []Bin         `json:"distribution"`
	ByUser       []UserAverage `json:"byUser"`
}

var binLabels = []string{"0-20%", "21-40%", "41-60%", "61-80%", "81-100%"}

// binIndex buckets p into (lo, hi] ranges of width 20, with 0 in the first bin.
func binIndex(p float64) int {
	for i := range binLabels {
		if p <= float64(20*(i+1)) {
			return i
		}
	}
	return len(binLabels) - 1
}

// unknownName labels records whose user no longer exists.
const unknownName = "Unknown"

func joinNames(records []domain.ScoreRecord, users map[string]domain.User) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(records))
	for _, r := range records {
		name := unknownName
		if u, ok := users[r.Username]; ok {
			name = u.Name
		}
		entries = append(entries, ScoreEntry{ScoreRecord: r, Name: name})
	}
	return entries
}

func computeStats(entries []ScoreEntry) Stats {
	stats := Stats{Distribution: make([]Bin, len(binLabels)), ByUser: []UserAverage{}}
	for i, label := range binLabels {
		stats.Distribution[i].Label = label
	}
	if len(entries) == 0 {
		return stats
	}

	type acc struct {
		sum float64
		n   int
	}
	byName := make(map[string]*acc)
	sum := 0.0
	for _, e := range entries {
		sum += e.Percentage
		stats.Distribution[binIndex(e.Percentage)].Count++
		a, ok := byName[e.Name]
		if !ok {
			a = &acc{}
			byName[e.Name] = a
		}
		a.sum += e.Percentage
		a.n++
	}
	stats.Total = len(entries)
	stats.Average = sum / float64(len(entries))
	for name, a := range byName {
		stats.ByUser = append(stats.ByUser, UserAverage{Name: name, Average: a.sum / float64(a.n)})
	}
	sort.Slice(stats.ByUser, func(i, j int) bool { return stats.ByUser[i].Name < stats.ByUser[j].Name })
	return stats
}
