package nlu

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/rashedsumon/ai-receptionist/models"
)

const (
	DefaultMaxIter = 1000
	DefaultC       = 1.0
)

var (
	ErrNoExamples  = errors.New("no training examples")
	ErrSingleClass = errors.New("training data needs at least two distinct labels")
)

// LogisticRegression is a multinomial (softmax) linear classifier.
// Coef is indexed [class][feature].
type LogisticRegression struct {
	Classes   []models.IntentLabel `json:"classes"`
	Coef      [][]float64          `json:"coef"`
	Intercept []float64            `json:"intercept"`
}

// FitParams controls the optimiser. C is the inverse L2 regularisation
// strength; the intercept is not penalised.
type FitParams struct {
	C       float64
	MaxIter int
}

func (p FitParams) withDefaults() FitParams {
	if p.C <= 0 {
		p.C = DefaultC
	}
	if p.MaxIter <= 0 {
		p.MaxIter = DefaultMaxIter
	}
	return p
}

// FitLogisticRegression fits the classifier with L-BFGS on sparse rows of
// width numFeatures.
func FitLogisticRegression(rows []SparseVector, labels []models.IntentLabel, numFeatures int, params FitParams) (*LogisticRegression, error) {
	if len(rows) == 0 {
		return nil, ErrNoExamples
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("rows and labels differ in length: %d != %d", len(rows), len(labels))
	}
	params = params.withDefaults()

	classes := uniqueSorted(labels)
	if len(classes) < 2 {
		return nil, ErrSingleClass
	}
	classIndex := make(map[models.IntentLabel]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}
	targets := make([]int, len(labels))
	for i, label := range labels {
		targets[i] = classIndex[label]
	}

	obj := &softmaxObjective{
		rows:     rows,
		targets:  targets,
		classes:  len(classes),
		features: numFeatures,
		alpha:    1 / params.C,
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return obj.evaluate(x, nil)
		},
		Grad: func(grad, x []float64) {
			obj.evaluate(x, grad)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-4,
		MajorIterations:   params.MaxIter,
	}

	x0 := make([]float64, obj.classes*obj.stride())
	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fmt.Errorf("failed to fit logistic regression: %w", err)
	}
	if err != nil {
		// Reaching the iteration cap or a stalled line search still leaves
		// the best point found so far; keep it unless it is unusable.
		if !allFinite(result.X) {
			return nil, fmt.Errorf("failed to fit logistic regression: %w", err)
		}
		log.Printf("Logistic regression stopped early (%v) after %d iterations: %v",
			result.Status, result.Stats.MajorIterations, err)
	} else if result.Status == optimize.IterationLimit {
		log.Printf("Logistic regression reached the iteration limit (%d) before converging", params.MaxIter)
	}

	model := &LogisticRegression{
		Classes:   classes,
		Coef:      make([][]float64, obj.classes),
		Intercept: make([]float64, obj.classes),
	}
	for k := 0; k < obj.classes; k++ {
		base := k * obj.stride()
		model.Coef[k] = append([]float64(nil), result.X[base:base+numFeatures]...)
		model.Intercept[k] = result.X[base+numFeatures]
	}
	return model, nil
}

// PredictProba returns the class probabilities for one row, in Classes order.
func (m *LogisticRegression) PredictProba(row SparseVector) []float64 {
	z := make([]float64, len(m.Classes))
	for k := range m.Classes {
		z[k] = m.Intercept[k] + sparseDot(row, m.Coef[k])
	}
	softmaxInPlace(z)
	return z
}

// Predict returns the most probable class and its probability. Ties go to
// the class that sorts first.
func (m *LogisticRegression) Predict(row SparseVector) (models.IntentLabel, float64) {
	proba := m.PredictProba(row)
	idx := floats.MaxIdx(proba)
	return m.Classes[idx], proba[idx]
}

// softmaxObjective is the L2-penalised multinomial negative log-likelihood.
// Parameters are laid out per class as [w_0 ... w_{F-1}, b].
type softmaxObjective struct {
	rows     []SparseVector
	targets  []int
	classes  int
	features int
	alpha    float64
}

func (o *softmaxObjective) stride() int {
	return o.features + 1
}

// evaluate returns the loss at x and, when grad is non-nil, fills it.
func (o *softmaxObjective) evaluate(x, grad []float64) float64 {
	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}

	stride := o.stride()
	z := make([]float64, o.classes)
	var loss float64

	for i, row := range o.rows {
		for k := 0; k < o.classes; k++ {
			base := k * stride
			z[k] = x[base+o.features] + sparseDot(row, x[base:base+o.features])
		}
		lse := floats.LogSumExp(z)
		loss += lse - z[o.targets[i]]

		if grad == nil {
			continue
		}
		for k := 0; k < o.classes; k++ {
			r := math.Exp(z[k] - lse)
			if k == o.targets[i] {
				r--
			}
			base := k * stride
			for n, j := range row.Indices {
				grad[base+j] += r * row.Values[n]
			}
			grad[base+o.features] += r
		}
	}

	for k := 0; k < o.classes; k++ {
		base := k * stride
		w := x[base : base+o.features]
		loss += 0.5 * o.alpha * floats.Dot(w, w)
		if grad != nil {
			floats.AddScaled(grad[base:base+o.features], o.alpha, w)
		}
	}
	return loss
}

func sparseDot(row SparseVector, dense []float64) float64 {
	var sum float64
	for n, j := range row.Indices {
		if j < len(dense) {
			sum += row.Values[n] * dense[j]
		}
	}
	return sum
}

func softmaxInPlace(z []float64) {
	lse := floats.LogSumExp(z)
	for k := range z {
		z[k] = math.Exp(z[k] - lse)
	}
}

func uniqueSorted(labels []models.IntentLabel) []models.IntentLabel {
	seen := make(map[models.IntentLabel]struct{})
	var out []models.IntentLabel
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
