package journal

import (
	"time"

	"dnevnik/core"
)

// Attendance statuses
const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusExcused AttendanceStatus = "excused"
)

type AttendanceStatus string

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Grade types
const (
	GradeCurrent    GradeType = "current"
	GradeControl    GradeType = "control"
	GradeExam       GradeType = "exam"
	GradeCoursework GradeType = "coursework"
)

type GradeType string

func (t GradeType) Valid() bool {
	switch t {
	case GradeCurrent, GradeControl, GradeExam, GradeCoursework:
		return true
	}
	return false
}

// DefaultGradeMax is the domain convention for the grading scale ceiling.
const DefaultGradeMax = 5

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// Wire field names are camelCase: the records live in a database shared
// with the previous client generation.
type (
	Student struct {
		ID             string    `json:"id"`
		FirstName      string    `json:"firstName"`
		LastName       string    `json:"lastName"`
		MiddleName     string    `json:"middleName,omitempty"`
		GroupID        string    `json:"groupId"`
		Email          string    `json:"email,omitempty"`
		Phone          string    `json:"phone,omitempty"`
		EnrollmentDate string    `json:"enrollmentDate"`
		IsActive       bool      `json:"isActive"`
		CreatedAt      time.Time `json:"createdAt"` // UTC
		UpdatedAt      time.Time `json:"updatedAt"` // UTC
	}

	Group struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Course    int       `json:"course"`
		Specialty string    `json:"specialty"`
		Year      int       `json:"year"`
		IsActive  bool      `json:"isActive"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	Subject struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		ShortName   string    `json:"shortName"`
		TeacherName string    `json:"teacherName,omitempty"`
		HoursTotal  int       `json:"hoursTotal"`
		IsActive    bool      `json:"isActive"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	AttendanceRecord struct {
		ID        string           `json:"id"`
		StudentID string           `json:"studentId"`
		SubjectID string           `json:"subjectId"`
		// GroupID is copied from the student at creation time and is not
		// re-synced if the student later changes group.
		GroupID   string           `json:"groupId"`
		Date      string           `json:"date"`
		Status    AttendanceStatus `json:"status"`
		Note      string           `json:"note"`
		CreatedBy string           `json:"createdBy"`
		CreatedAt time.Time        `json:"createdAt"`
		UpdatedAt time.Time        `json:"updatedAt"`
	}

	Grade struct {
		ID          string    `json:"id"`
		StudentID   string    `json:"studentId"`
		SubjectID   string    `json:"subjectId"`
		GroupID     string    `json:"groupId"` // denormalized, like attendance
		Value       float64   `json:"value"`
		MaxValue    float64   `json:"maxValue"`
		Type        GradeType `json:"type"`
		Date        string    `json:"date"`
		Description string    `json:"description"`
		CreatedBy   string    `json:"createdBy"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}
)

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	MiddleName     string `json:"middleName"`
	GroupID        string `json:"groupId" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	EnrollmentDate string `json:"enrollmentDate" validate:"omitempty,dateonly"`
}

func (f *NewStudent) Validate() error {
	f.FirstName = core.CleanString(f.FirstName)
	f.LastName = core.CleanString(f.LastName)
	f.MiddleName = core.CleanString(f.MiddleName)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Phone = core.CleanString(f.Phone)
	return core.ValidateStruct(f)
}

// UpdateStudent defines what may be changed on an existing Student.
// Zero-valued fields are left untouched; MiddleName may be cleared
// explicitly via a pointer to the empty string.
type UpdateStudent struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	MiddleName     *string `json:"middleName"`
	GroupID        string  `json:"groupId"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone"`
	EnrollmentDate string  `json:"enrollmentDate" validate:"omitempty,dateonly"`
}

func (f *UpdateStudent) Validate() error {
	f.FirstName = core.CleanString(f.FirstName)
	f.LastName = core.CleanString(f.LastName)
	f.Email = core.CleanString(f.Email, true /* lower */)
	if f.MiddleName != nil {
		mid := core.CleanString(*f.MiddleName)
		f.MiddleName = &mid
	}
	return core.ValidateStruct(f)
}

type NewGroup struct {
	Name      string `json:"name" validate:"required"`
	Course    int    `json:"course" validate:"required,min=1"`
	Specialty string `json:"specialty" validate:"required"`
	Year      int    `json:"year" validate:"required"`
}

func (f *NewGroup) Validate() error {
	f.Name = core.CleanString(f.Name)
	f.Specialty = core.CleanString(f.Specialty)
	return core.ValidateStruct(f)
}

type UpdateGroup struct {
	Name      string `json:"name"`
	Course    int    `json:"course" validate:"omitempty,min=1"`
	Specialty string `json:"specialty"`
	Year      int    `json:"year"`
}

func (f *UpdateGroup) Validate() error {
	f.Name = core.CleanString(f.Name)
	f.Specialty = core.CleanString(f.Specialty)
	return core.ValidateStruct(f)
}

type NewSubject struct {
	Name        string `json:"name" validate:"required"`
	ShortName   string `json:"shortName" validate:"required"`
	TeacherName string `json:"teacherName"`
	HoursTotal  int    `json:"hoursTotal" validate:"min=0"`
}

func (f *NewSubject) Validate() error {
	f.Name = core.CleanString(f.Name)
	f.ShortName = core.CleanString(f.ShortName)
	f.TeacherName = core.CleanString(f.TeacherName)
	return core.ValidateStruct(f)
}

type UpdateSubject struct {
	Name        string  `json:"name"`
	ShortName   string  `json:"shortName"`
	TeacherName *string `json:"teacherName"`
	HoursTotal  *int    `json:"hoursTotal" validate:"omitempty,min=0"`
}

func (f *UpdateSubject) Validate() error {
	f.Name = core.CleanString(f.Name)
	f.ShortName = core.CleanString(f.ShortName)
	if f.TeacherName != nil {
		name := core.CleanString(*f.TeacherName)
		f.TeacherName = &name
	}
	return core.ValidateStruct(f)
}

type NewAttendance struct {
	StudentID string           `json:"studentId" validate:"required"`
	SubjectID string           `json:"subjectId" validate:"required"`
	Date      string           `json:"date" validate:"required,dateonly"`
	Status    AttendanceStatus `json:"status" validate:"required,attstatus"`
	Note      string           `json:"note"`
}

func (f *NewAttendance) Validate() error {
	f.Note = core.CleanString(f.Note)
	return core.ValidateStruct(f)
}

type UpdateAttendance struct {
	SubjectID string           `json:"subjectId"`
	Date      string           `json:"date" validate:"omitempty,dateonly"`
	Status    AttendanceStatus `json:"status" validate:"omitempty,attstatus"`
	Note      *string          `json:"note"`
}

func (f *UpdateAttendance) Validate() error {
	if f.Note != nil {
		note := core.CleanString(*f.Note)
		f.Note = &note
	}
	return core.ValidateStruct(f)
}

type NewGrade struct {
	StudentID   string    `json:"studentId" validate:"required"`
	SubjectID   string    `json:"subjectId" validate:"required"`
	Value       float64   `json:"value" validate:"required,min=1"`
	MaxValue    float64   `json:"maxValue" validate:"omitempty,min=1"`
	Type        GradeType `json:"type" validate:"required,gradetype"`
	Date        string    `json:"date" validate:"required,dateonly"`
	Description string    `json:"description"`
}

func (f *NewGrade) Validate() error {
	f.Description = core.CleanString(f.Description)
	return core.ValidateStruct(f)
}

type UpdateGrade struct {
	SubjectID   string    `json:"subjectId"`
	Value       *float64  `json:"value" validate:"omitempty,min=1"`
	MaxValue    *float64  `json:"maxValue" validate:"omitempty,min=1"`
	Type        GradeType `json:"type" validate:"omitempty,gradetype"`
	Date        string    `json:"date" validate:"omitempty,dateonly"`
	Description *string   `json:"description"`
}

func (f *UpdateGrade) Validate() error {
	if f.Description != nil {
		desc := core.CleanString(*f.Description)
		f.Description = &desc
	}
	return core.ValidateStruct(f)
}
