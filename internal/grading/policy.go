package grading

import (
	"fmt"
	"math"
	"strconv"
)

// MaxManualExtraPoints caps both the requested and the awarded extra points.
const MaxManualExtraPoints = 5.0

const (
	ReasonIneligibleAttendance = "El estudiante no cumplió la asistencia mínima"

	AvoidedNoVotes      = "No hay votos de docentes para puntos extra"
	AvoidedDisabled     = "El docente actual desactivó los puntos extra"
	AvoidedNotUnanimous = "No hubo acuerdo unánime entre los docentes para puntos extra"
)

// AttendancePolicy gates the whole grade on the minimum class attendance.
type AttendancePolicy struct {
	minimumReached bool
}

func NewAttendancePolicy(minimumReached bool) AttendancePolicy {
	return AttendancePolicy{minimumReached: minimumReached}
}

func (p AttendancePolicy) IsEligible() bool { return p.minimumReached }

// ReasonWhenIneligible is empty for eligible students.
func (p AttendancePolicy) ReasonWhenIneligible() string {
	if p.minimumReached {
		return ""
	}
	return ReasonIneligibleAttendance
}

// ExtraPointsResult is the outcome of ExtraPointsPolicy.Evaluate. Exactly one
// of Reason and AvoidedReason is set.
type ExtraPointsResult struct {
	Points        float64
	Reason        string
	AvoidedReason string
}

// ExtraPointsPolicy awards the manually requested points only when every
// teacher voted yes and the current teacher allows it.
type ExtraPointsPolicy struct {
	votes  []bool
	allow  bool
	manual float64
}

func NewExtraPointsPolicy(teacherVotes []bool, allowExtraPoints bool, manualExtraPoints float64) ExtraPointsPolicy {
	return ExtraPointsPolicy{votes: teacherVotes, allow: allowExtraPoints, manual: manualExtraPoints}
}

// Evaluate returns the first matching outcome. Empty votes and a non-unanimous
// vote both give zero points but carry different reasons.
func (p ExtraPointsPolicy) Evaluate() ExtraPointsResult {
	if len(p.votes) == 0 {
		return ExtraPointsResult{AvoidedReason: AvoidedNoVotes}
	}
	if !p.allow {
		return ExtraPointsResult{AvoidedReason: AvoidedDisabled}
	}
	for _, v := range p.votes {
		if !v {
			return ExtraPointsResult{AvoidedReason: AvoidedNotUnanimous}
		}
	}
	pts := math.Min(p.manual, MaxManualExtraPoints)
	return ExtraPointsResult{
		Points: pts,
		Reason: fmt.Sprintf("Puntos extra otorgados manualmente (%s)", strconv.FormatFloat(pts, 'f', -1, 64)),
	}
}
