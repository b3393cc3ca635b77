package http

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/gradecalc/internal/grading"
)

func TestToNumber(t *testing.T) {
	assert.Equal(t, 0.0, toNumber(nil))
	assert.Equal(t, 12.5, toNumber(12.5))
	assert.Equal(t, 1.0, toNumber(true))
	assert.Equal(t, 0.0, toNumber(false))
	assert.Equal(t, 15.0, toNumber(" 15 "))
	assert.Equal(t, 0.0, toNumber(""))
	assert.True(t, math.IsNaN(toNumber("abc")))
	assert.True(t, math.IsNaN(toNumber([]any{1.0})))
	assert.True(t, math.IsNaN(toNumber(map[string]any{})))
}

func TestToNumber_StringForms(t *testing.T) {
	cases := map[string]float64{
		"1e3":       1000,
		".5":        0.5,
		"-2.25":     -2.25,
		"0x10":      16,
		"0B101":     5,
		"0o17":      15,
		"Infinity":  math.Inf(1),
		"-Infinity": math.Inf(-1),
	}
	for in, want := range cases {
		assert.Equal(t, want, toNumber(in), in)
	}
	for _, in := range []string{"inf", "infinity", "-inf", "NaN", "nan", "0x", "-0x10", "0x1p4", "0xZZ", "1_000", "12abc"} {
		assert.True(t, math.IsNaN(toNumber(in)), in)
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, 1.0, -2.0, "false", "0", []any{}, map[string]any{}} {
		assert.True(t, truthy(v), "%#v", v)
	}
	for _, v := range []any{nil, false, 0.0, math.NaN(), ""} {
		assert.False(t, truthy(v), "%#v", v)
	}
}

func TestDecodePayload(t *testing.T) {
	m, err := decodePayload(strings.NewReader("   "))
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = decodePayload(strings.NewReader(`[1,2]`))
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = decodePayload(strings.NewReader(`{"allowExtraPoints":true}`))
	require.NoError(t, err)
	assert.Equal(t, true, m["allowExtraPoints"])

	_, err = decodePayload(strings.NewReader(`{"evaluations":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON inválido")
}

func TestBuildStudentRecord_Coerces(t *testing.T) {
	rec, err := buildStudentRecord("s-1", map[string]any{
		"evaluations": []any{
			map[string]any{"name": "Exam", "score": "15", "weight": 60.0},
			map[string]any{"name": 2.0, "score": 10.0, "weight": "40"},
		},
		"hasReachedMinimumClasses": "yes",
		"allYearsTeachers":         []any{true, 0.0, "x"},
		"allowExtraPoints":         1.0,
		"manualExtraPoints":        "2",
	})
	require.NoError(t, err)

	assert.Equal(t, "s-1", rec.ID)
	require.Len(t, rec.Evaluations, 2)
	assert.Equal(t, 15.0, rec.Evaluations[0].Score())
	assert.Equal(t, "2", rec.Evaluations[1].Name())
	assert.Equal(t, 40.0, rec.Evaluations[1].Weight())
	assert.True(t, rec.HasReachedMinimumClasses)
	assert.Equal(t, []bool{true, false, true}, rec.AllYearsTeachers)
	assert.True(t, rec.AllowExtraPoints)
	assert.Equal(t, 2.0, rec.ManualExtraPoints)
}

func TestBuildStudentRecord_MissingFieldsDefault(t *testing.T) {
	rec, err := buildStudentRecord("s-1", map[string]any{"evaluations": "nope"})
	require.NoError(t, err)
	assert.Empty(t, rec.Evaluations)
	assert.NotNil(t, rec.Evaluations)
	assert.Empty(t, rec.AllYearsTeachers)
	assert.False(t, rec.HasReachedMinimumClasses)
	assert.False(t, rec.AllowExtraPoints)
	assert.Zero(t, rec.ManualExtraPoints)
}

func TestBuildStudentRecord_RejectsInvalidEvaluation(t *testing.T) {
	cases := map[string]map[string]any{
		"score out of range": {"name": "A", "score": 25.0, "weight": 10.0},
		"missing weight":     {"name": "A", "score": 10.0},
		"non numeric score":  {"name": "A", "score": "ten", "weight": 10.0},
		"missing name":       {"score": 10.0, "weight": 10.0},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := buildStudentRecord("s-1", map[string]any{"evaluations": []any{ev}})
			require.Error(t, err)
			assert.True(t, grading.IsValidation(err))
		})
	}

	_, err := buildStudentRecord("s-1", map[string]any{"evaluations": []any{"just a string"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nombre de la evaluación es obligatorio")
}

func TestBuildStudentRecord_RejectsNonFiniteManualPoints(t *testing.T) {
	for _, v := range []any{"abc", "Infinity", "-Infinity", []any{}, map[string]any{}} {
		_, err := buildStudentRecord("s-1", map[string]any{"manualExtraPoints": v})
		require.Error(t, err, "%#v", v)
		assert.True(t, grading.IsValidation(err))
		assert.Equal(t, msgManualNotNumber, err.Error())
	}

	rec, err := buildStudentRecord("s-1", map[string]any{"manualExtraPoints": "-3"})
	require.NoError(t, err)
	assert.Equal(t, -3.0, rec.ManualExtraPoints)
}
