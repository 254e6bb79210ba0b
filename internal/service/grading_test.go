package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

func TestComputePercentage(t *testing.T) {
	p, err := ComputePercentage(42, 50)
	require.NoError(t, err)
	assert.InDelta(t, 84.0, p, 1e-9)

	p, err = ComputePercentage(0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	_, err = ComputePercentage(5, 0)
	assert.ErrorIs(t, err, appErrors.ErrDivisionUndefined)
}

func TestComputeLetterGradeBreakpoints(t *testing.T) {
	cases := []struct {
		pct    float64
		letter models.LetterGrade
	}{
		{100, models.GradeAPlus},
		{90, models.GradeAPlus},
		{89.99, models.GradeA},
		{85, models.GradeA},
		{84, models.GradeAMinus},
		{80, models.GradeAMinus},
		{79.5, models.GradeBPlus},
		{75, models.GradeBPlus},
		{70, models.GradeB},
		{65, models.GradeBMinus},
		{60, models.GradeCPlus},
		{55, models.GradeC},
		{50, models.GradeCMinus},
		{49.99, models.GradeF},
		{0, models.GradeF},
		{-3, models.GradeF},
		{140, models.GradeAPlus},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.letter, ComputeLetterGrade(tc.pct), "percentage %v", tc.pct)
	}
}

func TestLetterGradeFollowsPercentage(t *testing.T) {
	p, err := ComputePercentage(90, 100)
	require.NoError(t, err)
	assert.Equal(t, models.GradeAPlus, ComputeLetterGrade(p))

	p, err = ComputePercentage(89.99, 100)
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, ComputeLetterGrade(p))

	p, err = ComputePercentage(42, 50)
	require.NoError(t, err)
	assert.Equal(t, models.GradeAMinus, ComputeLetterGrade(p))
}

func TestLetterGradeIsMonotonic(t *testing.T) {
	order := map[models.LetterGrade]int{}
	for i, band := range letterBands {
		order[band.letter] = len(letterBands) - i
	}
	order[models.GradeF] = 0

	prev := order[ComputeLetterGrade(0)]
	for p := 0.0; p <= 100; p += 0.25 {
		cur := order[ComputeLetterGrade(p)]
		assert.GreaterOrEqual(t, cur, prev, "percentage %v", p)
		prev = cur
	}
}

func TestGPAFromPercentages(t *testing.T) {
	gpa, ok := GPAFromPercentages([]float64{70, 90})
	require.True(t, ok)
	assert.Equal(t, 3.2, gpa)

	gpa, ok = GPAFromPercentages([]float64{100})
	require.True(t, ok)
	assert.Equal(t, 4.0, gpa)

	_, ok = GPAFromPercentages(nil)
	assert.False(t, ok)
}

func TestRoundHalfEven(t *testing.T) {
	assert.Equal(t, 0.12, RoundHalfEven(0.125, 2))
	assert.Equal(t, 0.38, RoundHalfEven(0.375, 2))
	assert.Equal(t, 3.21, RoundHalfEven(3.2149, 2))
	assert.Equal(t, 2.5, RoundHalfEven(2.5, 2))
}

func TestValidMarksScale(t *testing.T) {
	for _, m := range []float64{0, 42, 42.5, 42.25, 89.99, 100} {
		assert.True(t, ValidMarksScale(m), m)
	}
	for _, m := range []float64{89.996, 44.998, 0.001, 42.125} {
		assert.False(t, ValidMarksScale(m), m)
	}
}
