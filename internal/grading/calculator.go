package grading

import (
	"fmt"
	"math"
)

const MaxFinalGrade = 20.0

const (
	InconsistencyNoEvaluations = "No se registraron evaluaciones"
	InconsistencyWeightsBelow  = "La suma de pesos es menor a 100%"
	InconsistencyWeightsAbove  = "La suma de pesos supera el 100%"

	AvoidedAttendance = "Attendance requirement not met"
)

// Calculator turns a StudentRecord into a GradeReport. It holds no state and a
// single value may be shared between goroutines.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// Calculate validates the record and computes its report. Validation failures
// are returned as *ValidationError before any part of the report is built.
func (c *Calculator) Calculate(record StudentRecord) (GradeReport, error) {
	if err := validateManualExtra(record.ManualExtraPoints); err != nil {
		return GradeReport{}, err
	}
	totalWeight := sumWeights(record.Evaluations)
	if totalWeight > MaxWeight {
		return GradeReport{}, invalid("La suma de pesos no puede superar 100%")
	}

	breakdown := make([]BreakdownItem, 0, len(record.Evaluations))
	sum := 0.0
	for _, ev := range record.Evaluations {
		contribution := round2(ev.WeightedScore())
		breakdown = append(breakdown, BreakdownItem{
			Name:         ev.Name(),
			Score:        ev.Score(),
			Weight:       ev.Weight(),
			Contribution: contribution,
		})
		sum += contribution
	}
	// contributions are already rounded; the sum is rounded again on purpose
	baseGrade := round2(sum)

	report := GradeReport{
		StudentID:           record.ID,
		BaseGrade:           baseGrade,
		EvaluationBreakdown: breakdown,
		Inconsistencies:     []string{},
		ExtraPointsAvoided:  []string{},
	}

	if len(record.Evaluations) == 0 {
		report.Inconsistencies = append(report.Inconsistencies, InconsistencyNoEvaluations)
	}
	if totalWeight < MaxWeight {
		report.Inconsistencies = append(report.Inconsistencies, InconsistencyWeightsBelow)
	} else if totalWeight > MaxWeight {
		// unreachable while the pre-check above rejects the record
		report.Inconsistencies = append(report.Inconsistencies, InconsistencyWeightsAbove)
	}

	attendance := NewAttendancePolicy(record.HasReachedMinimumClasses)
	if !attendance.IsEligible() {
		if reason := attendance.ReasonWhenIneligible(); reason != "" {
			report.Inconsistencies = append(report.Inconsistencies, reason)
		}
		report.ExtraPointsAvoided = append(report.ExtraPointsAvoided, AvoidedAttendance)
		return report, nil
	}

	extra := NewExtraPointsPolicy(record.AllYearsTeachers, record.AllowExtraPoints, record.ManualExtraPoints).Evaluate()
	if extra.AvoidedReason != "" {
		report.ExtraPointsAvoided = append(report.ExtraPointsAvoided, extra.AvoidedReason)
	}
	report.ExtraPointsApplied = extra.Points
	report.FinalGrade = round2(math.Min(baseGrade+extra.Points, MaxFinalGrade))
	return report, nil
}

func validateManualExtra(points float64) error {
	if !isFinite(points) || points < 0 {
		return invalid("Los puntos extra manuales deben ser cero o positivos")
	}
	if points > MaxManualExtraPoints {
		return invalid(fmt.Sprintf("Los puntos extra manuales no pueden superar %g", MaxManualExtraPoints))
	}
	return nil
}

func sumWeights(evs []Evaluation) float64 {
	total := 0.0
	for _, ev := range evs {
		total += ev.Weight()
	}
	return total
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
