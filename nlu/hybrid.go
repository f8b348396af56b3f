// Package nlu classifies caller transcripts into intents: hand-written
// keyword rules first, then a trained TF-IDF + logistic regression model.
package nlu

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/rashedsumon/ai-receptionist/models"
)

// DefaultRuleConfidence is reported for every keyword rule hit.
const DefaultRuleConfidence = 0.9

type Source string

const (
	SourceRules Source = "rules"
	SourceModel Source = "model"
	SourceNone  Source = "none"
)

// Prediction is the outcome of one classification.
type Prediction struct {
	Label      models.IntentLabel `json:"intent"`
	Confidence float64            `json:"confidence"`
	Source     Source             `json:"source"`
}

// TrainResult reports a training attempt the way the dashboard shows it.
type TrainResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Examples int    `json:"examples,omitempty"`
}

type Options struct {
	// Rules defaults to DefaultRules when nil.
	Rules []IntentRule
	// RuleConfidence defaults to DefaultRuleConfidence when <= 0.
	RuleConfidence float64

	// Artifact locations. With either path empty, training stays in memory
	// and nothing is loaded at construction.
	ModelPath      string
	VectorizerPath string

	Columns ColumnOptions
	Train   TrainConfig
}

// Status describes the current model for diagnostics.
type Status struct {
	Trained        bool                 `json:"trained"`
	Labels         []models.IntentLabel `json:"labels,omitempty"`
	Features       int                  `json:"features,omitempty"`
	Examples       int                  `json:"examples,omitempty"`
	TrainedAt      *time.Time           `json:"trained_at,omitempty"`
	ModelPath      string               `json:"model_path,omitempty"`
	VectorizerPath string               `json:"vectorizer_path,omitempty"`
	RuleConfidence float64              `json:"rule_confidence"`
}

// HybridNLU owns the rule table and the current trained artifact. Retraining
// swaps the artifact under a write lock, so readers see either the old or the
// new pair.
type HybridNLU struct {
	rules *KeywordRules
	opts  Options

	mu       sync.RWMutex
	artifact *Artifact
}

// New builds the component and loads a persisted artifact when both files
// are present.
func New(opts Options) *HybridNLU {
	if opts.Rules == nil {
		opts.Rules = DefaultRules()
	}
	if opts.RuleConfidence <= 0 {
		opts.RuleConfidence = DefaultRuleConfidence
	}

	h := &HybridNLU{
		rules: NewKeywordRules(opts.Rules),
		opts:  opts,
	}

	if !h.persistent() {
		return h
	}

	artifact, err := LoadArtifact(opts.VectorizerPath, opts.ModelPath)
	switch {
	case err == nil:
		h.artifact = artifact
		log.Printf("Loaded intent model (%d classes, %d features) from %s",
			len(artifact.Model.Classes), artifact.Vectorizer.NumFeatures(), opts.ModelPath)
	case errors.Is(err, ErrArtifactAbsent):
		log.Println("No trained intent model found, using keyword rules only")
	default:
		log.Printf("WARNING: ignoring persisted intent model: %v", err)
	}

	return h
}

// PredictIntent applies the rules, then the trained model, then gives up
// with ("unknown", 0).
func (h *HybridNLU) PredictIntent(text string) Prediction {
	if label, ok := h.rules.Match(text); ok {
		return Prediction{
			Label:      label,
			Confidence: h.opts.RuleConfidence,
			Source:     SourceRules,
		}
	}

	h.mu.RLock()
	artifact := h.artifact
	h.mu.RUnlock()

	if artifact != nil {
		return artifact.Predict(text)
	}

	return Prediction{
		Label:      models.IntentUnknown,
		Confidence: 0,
		Source:     SourceNone,
	}
}

// TrainFromCSV reads a labelled dataset from path and trains on it. cols
// overrides the configured column synonyms when non-nil.
func (h *HybridNLU) TrainFromCSV(path string, cols *ColumnOptions) (TrainResult, error) {
	examples, err := ReadExamplesFile(path, h.columns(cols))
	if err != nil {
		return failedTraining(err), err
	}
	return fromCSV(h.Train(examples))
}

// TrainFromReader is TrainFromCSV for an already opened dataset.
func (h *HybridNLU) TrainFromReader(r io.Reader, cols *ColumnOptions) (TrainResult, error) {
	examples, err := ReadExamplesCSV(r, h.columns(cols))
	if err != nil {
		return failedTraining(err), err
	}
	return fromCSV(h.Train(examples))
}

// Train fits a new artifact, persists it and swaps it in. On failure the
// current artifact is kept.
func (h *HybridNLU) Train(examples []TrainingExample) (TrainResult, error) {
	artifact, err := Train(examples, h.opts.Train)
	if err != nil {
		return failedTraining(err), fmt.Errorf("failed to train intent model: %w", err)
	}

	if h.persistent() {
		if err := SaveArtifact(artifact, h.opts.VectorizerPath, h.opts.ModelPath); err != nil {
			return failedTraining(err), err
		}
	}

	h.mu.Lock()
	h.artifact = artifact
	h.mu.Unlock()

	log.Printf("Trained intent model on %d examples (%d classes, %d features)",
		artifact.Examples, len(artifact.Model.Classes), artifact.Vectorizer.NumFeatures())

	return TrainResult{
		OK:       true,
		Message:  fmt.Sprintf("Trained classifier on %d examples.", artifact.Examples),
		Examples: artifact.Examples,
	}, nil
}

// Trained reports whether a classifier is available.
func (h *HybridNLU) Trained() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.artifact != nil
}

// Rules returns the keyword rule table in match order.
func (h *HybridNLU) Rules() []IntentRule {
	return h.rules.Rules()
}

func (h *HybridNLU) Status() Status {
	h.mu.RLock()
	artifact := h.artifact
	h.mu.RUnlock()

	status := Status{
		ModelPath:      h.opts.ModelPath,
		VectorizerPath: h.opts.VectorizerPath,
		RuleConfidence: h.opts.RuleConfidence,
	}
	if artifact == nil {
		return status
	}

	trainedAt := artifact.TrainedAt
	status.Trained = true
	status.Labels = append([]models.IntentLabel(nil), artifact.Model.Classes...)
	status.Features = artifact.Vectorizer.NumFeatures()
	status.Examples = artifact.Examples
	status.TrainedAt = &trainedAt
	return status
}

func (h *HybridNLU) persistent() bool {
	return h.opts.ModelPath != "" && h.opts.VectorizerPath != ""
}

func (h *HybridNLU) columns(cols *ColumnOptions) ColumnOptions {
	if cols == nil {
		return h.opts.Columns
	}
	merged := *cols
	if len(merged.TextColumns) == 0 {
		merged.TextColumns = h.opts.Columns.TextColumns
	}
	if len(merged.LabelColumns) == 0 {
		merged.LabelColumns = h.opts.Columns.LabelColumns
	}
	if merged.Comma == 0 {
		merged.Comma = h.opts.Columns.Comma
	}
	return merged
}

func fromCSV(result TrainResult, err error) (TrainResult, error) {
	if err == nil {
		result.Message = "Trained classifier from CSV."
	}
	return result, err
}

func failedTraining(err error) TrainResult {
	if errors.Is(err, ErrColumnsNotFound) {
		return TrainResult{Message: "Could not find text/label columns. Falling back to rule based."}
	}
	return TrainResult{Message: err.Error()}
}
