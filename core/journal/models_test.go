package journal

import (
	"testing"

	"dnevnik/core"

	"github.com/pkg/errors"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
	}
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestNewStudent_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := NewStudent{FirstName: "  Иван ", LastName: "Иванов", GroupID: "g-1", Email: " IVAN@Example.COM "}
		if err := f.Validate(); err != nil {
			t.Fatalf("Validate() failed, %v", err)
		}
		if f.FirstName != "Иван" {
			t.Errorf("FirstName = %q, want trimmed", f.FirstName)
		}
		if f.Email != "ivan@example.com" {
			t.Errorf("Email = %q, want lowered", f.Email)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		f := NewStudent{MiddleName: "Сергеевич"}
		flds := fieldErrors(t, f.Validate())
		for _, want := range []string{"firstName", "lastName", "groupId"} {
			if _, ok := flds[want]; !ok {
				t.Errorf("missing field error for %q in %v", want, flds)
			}
		}
	})

	t.Run("bad email", func(t *testing.T) {
		f := NewStudent{FirstName: "Иван", LastName: "Иванов", GroupID: "g-1", Email: "not-an-email"}
		flds := fieldErrors(t, f.Validate())
		if _, ok := flds["email"]; !ok {
			t.Errorf("missing field error for email in %v", flds)
		}
	})

	t.Run("bad enrollment date", func(t *testing.T) {
		f := NewStudent{FirstName: "Иван", LastName: "Иванов", GroupID: "g-1", EnrollmentDate: "10.02.2026"}
		flds := fieldErrors(t, f.Validate())
		if flds["enrollmentDate"] != "must be a calendar date (YYYY-MM-DD)" {
			t.Errorf("enrollmentDate error = %q", flds["enrollmentDate"])
		}
	})
}

func TestNewGroup_Validate(t *testing.T) {
	f := NewGroup{Name: "ИС-21", Course: 0, Specialty: "ИС", Year: 2024}
	flds := fieldErrors(t, f.Validate())
	if _, ok := flds["course"]; !ok {
		t.Errorf("missing field error for course in %v", flds)
	}
}

func TestNewAttendance_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := NewAttendance{StudentID: "s-1", SubjectID: "sub-1", Date: "2026-02-10", Status: StatusExcused}
		if err := f.Validate(); err != nil {
			t.Fatalf("Validate() failed, %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		f := NewAttendance{StudentID: "s-1", SubjectID: "sub-1", Date: "2026-02-10", Status: "vanished"}
		flds := fieldErrors(t, f.Validate())
		if flds["status"] != "invalid attendance status" {
			t.Errorf("status error = %q", flds["status"])
		}
	})
}

func TestNewGrade_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := NewGrade{StudentID: "s-1", SubjectID: "sub-1", Value: 5, Type: GradeExam, Date: "2026-02-10"}
		if err := f.Validate(); err != nil {
			t.Fatalf("Validate() failed, %v", err)
		}
	})

	t.Run("unknown type and bad date", func(t *testing.T) {
		f := NewGrade{StudentID: "s-1", SubjectID: "sub-1", Value: 4, Type: "bonus", Date: "tomorrow"}
		flds := fieldErrors(t, f.Validate())
		if flds["type"] != "invalid grade type" {
			t.Errorf("type error = %q", flds["type"])
		}
		if _, ok := flds["date"]; !ok {
			t.Errorf("missing field error for date in %v", flds)
		}
	})
}
