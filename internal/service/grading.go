package service

import (
	"math"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

// gpaScale is the top of the grade point scale.
const gpaScale = 4.0

var letterBands = []struct {
	min    float64
	letter models.LetterGrade
}{
	{90, models.GradeAPlus},
	{85, models.GradeA},
	{80, models.GradeAMinus},
	{75, models.GradeBPlus},
	{70, models.GradeB},
	{65, models.GradeBMinus},
	{60, models.GradeCPlus},
	{55, models.GradeC},
	{50, models.GradeCMinus},
}

// ComputePercentage returns marks as a percentage of maxMarks. A zero maximum
// is an integrity failure: assignments are validated to have positive
// maximums when created.
func ComputePercentage(marks, maxMarks float64) (float64, error) {
	if maxMarks == 0 {
		return 0, appErrors.ErrDivisionUndefined
	}
	return marks * 100 / maxMarks, nil
}

// ComputeLetterGrade maps a percentage to its letter band. Bounds are
// inclusive and inputs outside [0, 100] are clamped.
func ComputeLetterGrade(percentage float64) models.LetterGrade {
	p := math.Max(0, math.Min(100, percentage))
	for _, band := range letterBands {
		if p >= band.min {
			return band.letter
		}
	}
	return models.GradeF
}

// GPAFromPercentages averages the percentages and scales the mean onto the
// 4.0 basis. ok is false for an empty set, which callers treat as "keep the
// stored GPA".
func GPAFromPercentages(percentages []float64) (gpa float64, ok bool) {
	if len(percentages) == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range percentages {
		sum += p
	}
	avg := sum / float64(len(percentages))
	return RoundHalfEven(avg/100*gpaScale, 2), true
}

// marksPlaces is the scale grades are stored at.
const marksPlaces = 2

// ValidMarksScale reports whether marks fit the stored scale exactly, so the
// value range-checked is the value persisted.
func ValidMarksScale(marks float64) bool {
	return RoundHalfEven(marks, marksPlaces) == marks
}

// RoundHalfEven rounds v to places decimals, sending exact halves to the
// even neighbour. Binary noise below 1e-9 of the scaled value is discarded
// first so that 0.125 and 0.1250000000001 round alike.
func RoundHalfEven(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	scaled := math.Round(v*pow*1e9) / 1e9
	return math.RoundToEven(scaled) / pow
}
