package grading

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	MinScore  = 0.0
	MaxScore  = 20.0
	MaxWeight = 100.0
)

// Evaluation is a single graded item. The zero value is not valid; build one
// with NewEvaluation.
type Evaluation struct {
	name   string
	score  float64
	weight float64
}

// NewEvaluation validates name, score and weight, in that order.
func NewEvaluation(name string, score, weight float64) (Evaluation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Evaluation{}, invalid("El nombre de la evaluación es obligatorio")
	}
	if !isFinite(score) || score < MinScore || score > MaxScore {
		return Evaluation{}, invalid(fmt.Sprintf("La nota debe estar entre %g y %g", MinScore, MaxScore))
	}
	if !isFinite(weight) || weight <= 0 || weight > MaxWeight {
		return Evaluation{}, invalid(fmt.Sprintf("El peso de la evaluación debe estar entre 0 y %g", MaxWeight))
	}
	return Evaluation{name: name, score: score, weight: weight}, nil
}

func (e Evaluation) Name() string    { return e.name }
func (e Evaluation) Score() float64  { return e.score }
func (e Evaluation) Weight() float64 { return e.weight }

// WeightedScore is the unrounded contribution of e to the base grade.
func (e Evaluation) WeightedScore() float64 {
	return e.score * e.weight / 100
}

type evaluationJSON struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

func (e Evaluation) MarshalJSON() ([]byte, error) {
	return json.Marshal(evaluationJSON{Name: e.name, Score: e.score, Weight: e.weight})
}

// UnmarshalJSON runs the same validation as NewEvaluation.
func (e *Evaluation) UnmarshalJSON(b []byte) error {
	var raw evaluationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := NewEvaluation(raw.Name, raw.Score, raw.Weight)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
