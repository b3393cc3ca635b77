package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mind-engage/gradecalc/internal/grading"
)

const (
	maxBodyBytes = 1 << 20

	msgManualNotNumber = "Los puntos extra manuales deben ser un número válido"
)

// decodePayload reads a JSON object body. An empty body, or a JSON value that
// is not an object, yields an empty payload.
func decodePayload(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("JSON inválido: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{}, nil
}

// buildStudentRecord coerces a loosely typed payload into a validated record.
// Every evaluation goes through grading.NewEvaluation; the first failure wins.
// Manual extra points only need to be finite here, their range is checked at
// calculation time.
func buildStudentRecord(id string, payload map[string]any) (grading.StudentRecord, error) {
	manual := toNumber(payload["manualExtraPoints"])
	if math.IsNaN(manual) || math.IsInf(manual, 0) {
		return grading.StudentRecord{}, &grading.ValidationError{Message: msgManualNotNumber}
	}
	rec := grading.StudentRecord{
		ID:                       id,
		Evaluations:              []grading.Evaluation{},
		HasReachedMinimumClasses: truthy(payload["hasReachedMinimumClasses"]),
		AllYearsTeachers:         []bool{},
		AllowExtraPoints:         truthy(payload["allowExtraPoints"]),
		ManualExtraPoints:        manual,
	}
	if items, ok := payload["evaluations"].([]any); ok {
		for _, item := range items {
			fields, _ := item.(map[string]any)
			ev, err := grading.NewEvaluation(
				toText(fields["name"]),
				toNumber(fields["score"]),
				toNumber(fields["weight"]),
			)
			if err != nil {
				return grading.StudentRecord{}, err
			}
			rec.Evaluations = append(rec.Evaluations, ev)
		}
	}
	if votes, ok := payload["allYearsTeachers"].([]any); ok {
		for _, v := range votes {
			rec.AllYearsTeachers = append(rec.AllYearsTeachers, truthy(v))
		}
	}
	return rec, nil
}

// toNumber mirrors a loose numeric cast: missing is 0, numeric strings are
// parsed, anything unparsable becomes NaN and fails validation downstream.
// Strings accept decimal and exponent forms, unsigned 0x/0o/0b integers and
// the exact spellings "Infinity", "+Infinity" and "-Infinity".
func toNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		return parseNumber(s)
	default:
		return math.NaN()
	}
}

func parseNumber(s string) float64 {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	// ParseFloat also takes "inf", "nan" and hex floats, none of which count here.
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(lower, "0x") || strings.Contains(s, "_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
