package nlu

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 5000

// ErrEmptyVocabulary is returned when no document yields a single term.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no terms")

// Tokens are runs of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// SparseVector holds the non-zero entries of a feature row, indices ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Vectorizer maps text to L2-normalised TF-IDF rows over word unigrams and
// bigrams.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	MaxFeatures int            `json:"max_features"`
	NGramRange  [2]int         `json:"ngram_range"`
}

// NumFeatures is the width of every row produced by Transform.
func (v *Vectorizer) NumFeatures() int {
	return len(v.IDF)
}

// FitVectorizer learns the vocabulary and IDF weights from docs and returns
// the transformed rows alongside the fitted vectorizer.
func FitVectorizer(docs []string, maxFeatures int) (*Vectorizer, []SparseVector, error) {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	ngrams := [2]int{1, 2}

	termCounts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range analyze(doc, ngrams) {
			termCounts[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(termCounts) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(termCounts))
	for term := range termCounts {
		terms = append(terms, term)
	}
	if len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			ci, cj := termCounts[terms[i]], termCounts[terms[j]]
			if ci != cj {
				return ci > cj
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &Vectorizer{
		Vocabulary:  make(map[string]int, len(terms)),
		IDF:         make([]float64, len(terms)),
		MaxFeatures: maxFeatures,
		NGramRange:  ngrams,
	}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	rows := make([]SparseVector, len(docs))
	for i, doc := range docs {
		rows[i] = v.Transform(doc)
	}
	return v, rows, nil
}

// Transform returns the TF-IDF row for text. Terms outside the vocabulary
// are ignored; an all-unknown text yields an empty row.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range analyze(text, v.NGramRange) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	row := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		row.Indices = append(row.Indices, idx)
	}
	sort.Ints(row.Indices)
	for _, idx := range row.Indices {
		row.Values = append(row.Values, counts[idx]*v.IDF[idx])
	}

	if norm := floats.Norm(row.Values, 2); norm > 0 {
		floats.Scale(1/norm, row.Values)
	}
	return row
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// analyze expands text into its n-gram terms.
func analyze(text string, ngrams [2]int) []string {
	tokens := tokenize(text)
	minN, maxN := ngrams[0], ngrams[1]
	if minN < 1 {
		minN = 1
	}

	var terms []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
