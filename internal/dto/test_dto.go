package dto

import "github.com/google/uuid"

type CreateTestInput struct {
	SubjectID uuid.UUID `json:"subjectId" binding:"required"`
	Title     string    `json:"title" binding:"required"`
	MaxMarks  int       `json:"maxMarks" binding:"required,min=1"`
	Date      string    `json:"date" binding:"required,datetime=2006-01-02"`
}

type TestFilter struct {
	CourseID  string `form:"courseId"`
	Semester  int    `form:"semester"`
	SubjectID string `form:"subjectId"`
}

type MarkChange struct {
	StudentID     uuid.UUID `json:"studentId" binding:"required"`
	MarksObtained int       `json:"marksObtained" binding:"min=0"`
}

// SaveMarksInput is the diff batch for one test: only students whose mark
// changed are expected in Marks.
type SaveMarksInput struct {
	TestID uuid.UUID    `json:"testId" binding:"required"`
	Marks  []MarkChange `json:"marks" binding:"required,dive"`
}

// MarkRow is one working row of a test's marks sheet: every student of the
// test's course/semester appears, Recorded is false when no mark exists yet.
type MarkRow struct {
	StudentID     uuid.UUID `json:"studentId"`
	RollNo        string    `json:"rollNo"`
	Name          string    `json:"name"`
	MarksObtained int       `json:"marksObtained"`
	Recorded      bool      `json:"recorded"`
}
