package classify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/jbrukh/bayesian"
)

// confidence gap between the best and second best log score that marks
// a high confidence match
const bayesConfidenceGap = 10

var ErrTooFewClasses = errors.New("training data covers fewer than two categories")

// Bayes classifies accounts by their names, trained on previously
// confirmed assignments. Low confidence matches are rejected so the
// caller can fall through to a stronger classifier.
type Bayes struct {
	classifier *bayesian.Classifier
}

// NewBayes trains a classifier on account-name to category assignments,
// typically everything a Store has accumulated so far.
func NewBayes(training map[string]auditrevenue.Category) (*Bayes, error) {
	unique := make(map[auditrevenue.Category]bool)
	for _, category := range training {
		unique[category] = true
	}
	if len(unique) < 2 {
		return nil, ErrTooFewClasses
	}

	classes := make([]bayesian.Class, 0, len(unique))
	for category := range unique {
		classes = append(classes, bayesian.Class(category))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	classifier := bayesian.NewClassifier(classes...)
	names := make([]string, 0, len(training))
	for name := range training {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		classifier.Learn(nameWords(name), bayesian.Class(training[name]))
	}
	return &Bayes{classifier: classifier}, nil
}

func (b *Bayes) Classify(_ context.Context, req Request) (auditrevenue.Category, error) {
	words := nameWords(req.Name)
	if len(words) == 0 {
		return auditrevenue.CategoryUnknown, fmt.Errorf("account %s: %w", req.Account, ErrUnclassifiable)
	}

	highScore1 := math.Inf(-1)
	highScore2 := math.Inf(-1)
	matchIdx := 0
	scores, _, _ := b.classifier.LogScores(words)
	for j, score := range scores {
		if score > highScore1 {
			highScore2 = highScore1
			highScore1 = score
			matchIdx = j
		} else if score > highScore2 {
			highScore2 = score
		}
	}
	if highScore1-highScore2 <= bayesConfidenceGap {
		return auditrevenue.CategoryUnknown, fmt.Errorf("account %s: low confidence: %w", req.Account, ErrUnclassifiable)
	}
	category, ok := auditrevenue.ParseCategory(string(b.classifier.Classes[matchIdx]))
	if !ok {
		return auditrevenue.CategoryUnknown, fmt.Errorf("account %s: %w", req.Account, ErrUnclassifiable)
	}
	return category, nil
}

func nameWords(name string) []string {
	return strings.Fields(strings.ToLower(name))
}
