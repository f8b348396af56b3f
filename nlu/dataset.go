package nlu

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rashedsumon/ai-receptionist/models"
)

// ErrColumnsNotFound is returned when the header lacks a text or label column.
var ErrColumnsNotFound = errors.New("could not find text/label columns")

var (
	DefaultTextColumns  = []string{"message", "text", "query", "customer_message", "utterance"}
	DefaultLabelColumns = []string{"label", "intent", "category"}
)

// TrainingExample is one labelled utterance.
type TrainingExample struct {
	Text  string             `json:"text"`
	Label models.IntentLabel `json:"label"`
}

// ColumnOptions lists accepted header names per role, first match wins.
// Empty lists fall back to the defaults.
type ColumnOptions struct {
	TextColumns  []string
	LabelColumns []string
	Comma        rune
}

// ReadExamplesFile opens path and reads it with ReadExamplesCSV.
func ReadExamplesFile(path string, opts ColumnOptions) ([]TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadExamplesCSV(f, opts)
}

// ReadExamplesCSV parses a delimited file with a header row. Missing cells
// become empty strings; no row is dropped.
func ReadExamplesCSV(r io.Reader, opts ColumnOptions) ([]TrainingExample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: dataset is empty", ErrColumnsNotFound)
		}
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	textCandidates := opts.TextColumns
	if len(textCandidates) == 0 {
		textCandidates = DefaultTextColumns
	}
	labelCandidates := opts.LabelColumns
	if len(labelCandidates) == 0 {
		labelCandidates = DefaultLabelColumns
	}

	textIdx := findColumn(header, textCandidates)
	labelIdx := findColumn(header, labelCandidates)
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("%w: header %v, want one of %v and one of %v",
			ErrColumnsNotFound, header, textCandidates, labelCandidates)
	}

	var examples []TrainingExample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row %d: %w", len(examples)+2, err)
		}
		examples = append(examples, TrainingExample{
			Text:  cell(record, textIdx),
			Label: models.IntentLabel(cell(record, labelIdx)),
		})
	}

	return examples, nil
}

func findColumn(header, candidates []string) int {
	for _, candidate := range candidates {
		for i, name := range header {
			if name == candidate {
				return i
			}
		}
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

// DemoExamples is the fallback corpus used when no dataset is supplied.
func DemoExamples() []TrainingExample {
	return []TrainingExample{
		{Text: "Is the apartment on Main Street still available?", Label: models.IntentAvailability},
		{Text: "I want to book a viewing for 5 PM Friday", Label: models.IntentBookViewing},
		{Text: "Please connect me to an agent", Label: models.IntentConnectAgent},
		{Text: "How do I sell my house?", Label: models.IntentSellProcess},
	}
}
