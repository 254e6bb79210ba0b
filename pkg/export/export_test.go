package export

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcript() Table {
	return Table{
		Title:   "Academic Transcript",
		Fields:  []Field{{Label: "Student", Value: "STU_000001"}, {Label: "GPA", Value: "3.20"}},
		Columns: []string{"Course", "Assignment", "Marks", "Letter"},
		Rows: [][]string{
			{"CS101", "Midterm", "42.00/50.00", "A-"},
			{"CS101", "Quiz, week 2", "9.00/10.00", "A+"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(transcript())
	require.NoError(t, err)

	expected := "Student,STU_000001\nGPA,3.20\nCourse,Assignment,Marks,Letter\n" +
		"CS101,Midterm,42.00/50.00,A-\nCS101,\"Quiz, week 2\",9.00/10.00,A+\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVRenderRejectsRaggedRows(t *testing.T) {
	table := transcript()
	table.Rows = append(table.Rows, []string{"only one"})

	_, err := NewCSVExporter().Render(table)
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	table := transcript()
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, []string{"CS102", "Quiz " + strconv.Itoa(i), "5.00/10.00", "B"})
	}

	out, err := NewPDFExporter().Render(table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFRenderRequiresColumns(t *testing.T) {
	_, err := NewPDFExporter().Render(Table{Title: "empty"})
	assert.Error(t, err)
}
