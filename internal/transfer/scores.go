package transfer

import (
	"encoding/csv"
	"io"
	"strconv"

	"forklift-training-service/internal/domain"
)

// TimestampLayout is how score timestamps are rendered in exports.
const TimestampLayout = "2006-01-02 15:04:05"

var scoreColumns = []string{"username", "name", "score", "max_score", "percentage", "timestamp"}

// ScoreRow is a score record joined with the user's display name.
type ScoreRow struct {
	domain.ScoreRecord
	Name string
}

// WriteScores dumps rows in the order given.
func WriteScores(w io.Writer, rows []ScoreRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoreColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Username,
			r.Name,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.MaxScore),
			strconv.FormatFloat(r.Percentage, 'f', 1, 64),
			r.Timestamp.Format(TimestampLayout),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
