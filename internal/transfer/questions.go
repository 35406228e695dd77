// Package transfer maps questions and scores to and from CSV.
package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"forklift-training-service/internal/domain"
)

// QuestionColumns are the required header columns of a question import, in export order.
var QuestionColumns = []string{"question", "option1", "option2", "option3", "option4", "answer", "explanation", "category"}

// ReadQuestions parses a question CSV. Returned questions carry no ids.
// Any problem rejects the whole file with a *domain.ImportError.
func ReadQuestions(r io.Reader) ([]domain.Question, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.ImportError{Missing: append([]string(nil), QuestionColumns...)}
	}
	if err != nil {
		return nil, &domain.ImportError{Reason: fmt.Sprintf("unreadable header: %v", err)}
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	var missing []string
	for _, col := range QuestionColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ImportError{Missing: missing}
	}

	var questions []domain.Question
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.ImportError{Row: row, Reason: err.Error()}
		}
		if blank(rec) {
			continue
		}
		q, err := parseQuestion(rec, index)
		if err != nil {
			return nil, &domain.ImportError{Row: row, Reason: err.Error()}
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, &domain.ImportError{Reason: "file contains no questions"}
	}
	return questions, nil
}

func parseQuestion(rec []string, index map[string]int) (domain.Question, error) {
	field := func(col string) string {
		i := index[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	q := domain.Question{
		Question:    field("question"),
		Explanation: field("explanation"),
		Category:    field("category"),
	}
	if q.Question == "" {
		return q, errors.New("question is empty")
	}
	for i := 1; i <= domain.OptionCount; i++ {
		opt := field("option" + strconv.Itoa(i))
		if opt == "" {
			return q, fmt.Errorf("option%d is empty", i)
		}
		q.Options = append(q.Options, opt)
	}
	answer, err := strconv.Atoi(field("answer"))
	if err != nil || answer < 0 || answer >= domain.OptionCount {
		return q, fmt.Errorf("answer %q must be a number from 0 to 3", field("answer"))
	}
	q.Answer = answer
	if q.Category == "" {
		q.Category = domain.DefaultCategory
	}
	return q, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteQuestions writes questions in the import format.
func WriteQuestions(w io.Writer, questions []domain.Question) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(QuestionColumns); err != nil {
		return err
	}
	for _, q := range questions {
		rec := make([]string, 0, len(QuestionColumns))
		rec = append(rec, q.Question)
		for i := 0; i < domain.OptionCount; i++ {
			opt := ""
			if i < len(q.Options) {
				opt = q.Options[i]
			}
			rec = append(rec, opt)
		}
		category := q.Category
		if category == "" {
			category = domain.DefaultCategory
		}
		rec = append(rec, strconv.Itoa(q.Answer), q.Explanation, category)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplate writes a one-row sample file admins can fill in.
func WriteTemplate(w io.Writer) error {
	return WriteQuestions(w, []domain.Question{{
		Question:    "What should you do before operating a forklift?",
		Options:     []string{"Check fuel only", "Full pre-shift inspection", "Test horn", "Load immediately"},
		Answer:      1,
		Explanation: "OSHA requires a pre-shift inspection for safety.",
		Category:    "Safety",
	}})
}
