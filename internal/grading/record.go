package grading

// StudentRecord is everything the calculator needs for one student.
type StudentRecord struct {
	ID                       string       `json:"id"`
	Evaluations              []Evaluation `json:"evaluations"`
	HasReachedMinimumClasses bool         `json:"hasReachedMinimumClasses"`
	AllYearsTeachers         []bool       `json:"allYearsTeachers"` // one vote per teacher
	AllowExtraPoints         bool         `json:"allowExtraPoints"`
	ManualExtraPoints        float64      `json:"manualExtraPoints"`
}

// Clone returns a copy that shares no slices with r.
func (r StudentRecord) Clone() StudentRecord {
	out := r
	out.Evaluations = append([]Evaluation{}, r.Evaluations...)
	out.AllYearsTeachers = append([]bool{}, r.AllYearsTeachers...)
	return out
}

type BreakdownItem struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// GradeReport is an immutable snapshot produced by Calculator.Calculate.
type GradeReport struct {
	StudentID           string          `json:"studentId"`
	BaseGrade           float64         `json:"baseGrade"`
	ExtraPointsApplied  float64         `json:"extraPointsApplied"`
	FinalGrade          float64         `json:"finalGrade"`
	EvaluationBreakdown []BreakdownItem `json:"evaluationBreakdown"`
	Inconsistencies     []string        `json:"inconsistencies"`
	ExtraPointsAvoided  []string        `json:"extraPointsAvoided"`
}
