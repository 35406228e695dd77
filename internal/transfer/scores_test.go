package transfer

import (
	"bytes"
	"testing"
	"time"

	"forklift-training-service/internal/domain"
)

func TestWriteScores(t *testing.T) {
	ts := time.Date(2024, 2, 3, 14, 5, 6, 0, time.UTC)
	rows := []ScoreRow{
		{ScoreRecord: domain.NewScoreRecord("op", 2, 3, ts), Name: "Op One"},
		{ScoreRecord: domain.NewScoreRecord("gone", 0, 3, ts), Name: "Unknown"},
	}
	var buf bytes.Buffer
	if err := WriteScores(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "username,name,score,max_score,percentage,timestamp\n" +
		"op,Op One,2,3,66.7,2024-02-03 14:05:06\n" +
		"gone,Unknown,0,3,0.0,2024-02-03 14:05:06\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}
