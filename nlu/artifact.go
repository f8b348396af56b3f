package nlu

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rashedsumon/ai-receptionist/models"
)

const artifactVersion = 1

var (
	// ErrArtifactAbsent means one or both persisted files are missing.
	ErrArtifactAbsent = errors.New("trained artifact not found")
	// ErrArtifactMismatch means the two files were not written by the same
	// training run.
	ErrArtifactMismatch = errors.New("vectorizer and model files do not belong together")
)

// TrainConfig bundles the feature and optimiser settings for one run.
type TrainConfig struct {
	MaxFeatures int
	MaxIter     int
	C           float64
}

// Artifact is one trained vectorizer/classifier pair. It is never mutated
// after Train returns.
type Artifact struct {
	ID         string
	Vectorizer *Vectorizer
	Model      *LogisticRegression
	TrainedAt  time.Time
	Examples   int
}

// Train fits a fresh artifact on examples.
func Train(examples []TrainingExample, cfg TrainConfig) (*Artifact, error) {
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}

	docs := make([]string, len(examples))
	labels := make([]models.IntentLabel, len(examples))
	for i, ex := range examples {
		docs[i] = ex.Text
		labels[i] = ex.Label
	}
	if len(uniqueSorted(labels)) < 2 {
		return nil, ErrSingleClass
	}

	vect, rows, err := FitVectorizer(docs, cfg.MaxFeatures)
	if err != nil {
		return nil, fmt.Errorf("failed to fit vectorizer: %w", err)
	}

	model, err := FitLogisticRegression(rows, labels, vect.NumFeatures(), FitParams{
		C:       cfg.C,
		MaxIter: cfg.MaxIter,
	})
	if err != nil {
		return nil, err
	}

	return &Artifact{
		ID:         uuid.NewString(),
		Vectorizer: vect,
		Model:      model,
		TrainedAt:  time.Now().UTC(),
		Examples:   len(examples),
	}, nil
}

// Predict classifies text with the stored vectorizer and model.
func (a *Artifact) Predict(text string) Prediction {
	label, proba := a.Model.Predict(a.Vectorizer.Transform(text))
	return Prediction{
		Label:      label,
		Confidence: proba,
		Source:     SourceModel,
	}
}

type vectorizerFile struct {
	Version    int    `json:"version"`
	ArtifactID string `json:"artifact_id"`
	*Vectorizer
}

type modelFile struct {
	Version    int       `json:"version"`
	ArtifactID string    `json:"artifact_id"`
	TrainedAt  time.Time `json:"trained_at"`
	Examples   int       `json:"n_examples"`
	*LogisticRegression
}

// SaveArtifact writes the vectorizer and model to their own files. Both are
// staged as temp files first and only then renamed into place; if the model
// cannot be committed the previous vectorizer is restored, so the pair on
// disk is either the old one or the new one.
func SaveArtifact(a *Artifact, vectorizerPath, modelPath string) error {
	vectTmp, err := stageJSON(vectorizerPath, vectorizerFile{
		Version:    artifactVersion,
		ArtifactID: a.ID,
		Vectorizer: a.Vectorizer,
	})
	if err != nil {
		return fmt.Errorf("failed to save vectorizer: %w", err)
	}
	defer os.Remove(vectTmp)

	modelTmp, err := stageJSON(modelPath, modelFile{
		Version:            artifactVersion,
		ArtifactID:         a.ID,
		TrainedAt:          a.TrainedAt,
		Examples:           a.Examples,
		LogisticRegression: a.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	defer os.Remove(modelTmp)

	backup := vectorizerPath + ".bak"
	hadPrevious := true
	if err := os.Rename(vectorizerPath, backup); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to save vectorizer: %w", err)
		}
		hadPrevious = false
	}

	if err := os.Rename(vectTmp, vectorizerPath); err != nil {
		restoreVectorizer(vectorizerPath, backup, hadPrevious)
		return fmt.Errorf("failed to save vectorizer: %w", err)
	}

	if err := os.Rename(modelTmp, modelPath); err != nil {
		restoreVectorizer(vectorizerPath, backup, hadPrevious)
		return fmt.Errorf("failed to save model: %w", err)
	}

	if hadPrevious {
		os.Remove(backup)
	}
	return nil
}

func restoreVectorizer(path, backup string, hadPrevious bool) {
	if !hadPrevious {
		os.Remove(path)
		return
	}
	if err := os.Rename(backup, path); err != nil {
		log.Printf("WARNING: could not restore previous vectorizer from %s: %v", backup, err)
	}
}

// LoadArtifact reads a pair written by SaveArtifact. Both files must exist.
func LoadArtifact(vectorizerPath, modelPath string) (*Artifact, error) {
	for _, path := range []string{vectorizerPath, modelPath} {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, ErrArtifactAbsent
			}
			return nil, err
		}
	}

	vf := vectorizerFile{Vectorizer: &Vectorizer{}}
	if err := readJSON(vectorizerPath, &vf); err != nil {
		return nil, fmt.Errorf("failed to load vectorizer: %w", err)
	}
	mf := modelFile{LogisticRegression: &LogisticRegression{}}
	if err := readJSON(modelPath, &mf); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	if vf.ArtifactID != mf.ArtifactID {
		return nil, ErrArtifactMismatch
	}
	if err := validate(vf.Vectorizer, mf.LogisticRegression); err != nil {
		return nil, err
	}

	return &Artifact{
		ID:         mf.ArtifactID,
		Vectorizer: vf.Vectorizer,
		Model:      mf.LogisticRegression,
		TrainedAt:  mf.TrainedAt,
		Examples:   mf.Examples,
	}, nil
}

func validate(v *Vectorizer, m *LogisticRegression) error {
	if len(v.Vocabulary) != len(v.IDF) {
		return fmt.Errorf("corrupt vectorizer: %d terms but %d idf weights", len(v.Vocabulary), len(v.IDF))
	}
	if len(m.Classes) < 2 || len(m.Coef) != len(m.Classes) || len(m.Intercept) != len(m.Classes) {
		return fmt.Errorf("corrupt model: %d classes, %d coef rows, %d intercepts",
			len(m.Classes), len(m.Coef), len(m.Intercept))
	}
	for k, row := range m.Coef {
		if len(row) != v.NumFeatures() {
			return fmt.Errorf("%w: class %q has %d weights, vectorizer has %d features",
				ErrArtifactMismatch, m.Classes[k], len(row), v.NumFeatures())
		}
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// stageJSON writes v to a synced temp file next to path and returns its
// name. The caller renames it into place or removes it.
func stageJSON(path string, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}
