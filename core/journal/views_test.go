package journal

import (
	"testing"

	"dnevnik/core/session"
)

func seedStudents(svc *Service) {
	svc.students = []Student{
		{ID: "s-1", LastName: "Яшин", FirstName: "Пётр", GroupID: "g-1", IsActive: true},
		{ID: "s-2", LastName: "Иванов", FirstName: "Иван", MiddleName: "Сергеевич", GroupID: "g-1", IsActive: true},
		{ID: "s-3", LastName: "Абрамова", FirstName: "Анна", GroupID: "g-2", IsActive: true},
		{ID: "s-4", LastName: "Борисов", FirstName: "Олег", GroupID: "g-2", IsActive: false},
	}
}

func ids(students []Student) []string {
	out := make([]string, len(students))
	for i, st := range students {
		out[i] = st.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestService_FilteredStudents(t *testing.T) {
	tests := []struct {
		name    string
		groupID string
		search  string
		want    []string
	}{
		{name: "no filters, collated order", want: []string{"s-3", "s-2", "s-1"}},
		{name: "group filter", groupID: "g-1", want: []string{"s-2", "s-1"}},
		{name: "inactive excluded", groupID: "g-2", want: []string{"s-3"}},
		{name: "single token", search: "иванов", want: []string{"s-2"}},
		{name: "tokens match across name parts", search: "ив ан", want: []string{"s-2"}},
		{name: "case insensitive", search: "ИВАНОВ иВаН", want: []string{"s-2"}},
		{name: "middle name searchable", search: "сергеевич", want: []string{"s-2"}},
		{name: "all tokens must match", search: "иванов анна", want: []string{}},
		{name: "group and search combined", groupID: "g-2", search: "иванов", want: []string{}},
		{name: "whitespace only search matches all", search: "   ", want: []string{"s-3", "s-2", "s-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setup(t, session.RoleGuest)
			seedStudents(svc)
			svc.SetGroupFilter(tt.groupID)
			svc.SetSearch(tt.search)

			got := ids(svc.FilteredStudents())
			if !equalIDs(got, tt.want) {
				t.Errorf("FilteredStudents() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_ActiveGroups(t *testing.T) {
	svc, _ := setup(t, session.RoleGuest)
	svc.groups = []Group{
		{ID: "g-1", Name: "ЭК-11", IsActive: true},
		{ID: "g-2", Name: "ИС-21", IsActive: true},
		{ID: "g-3", Name: "ПР-31", IsActive: false},
	}

	got := svc.ActiveGroups()
	if len(got) != 2 {
		t.Fatalf("ActiveGroups() len = %d, want 2", len(got))
	}
	if got[0].Name != "ИС-21" || got[1].Name != "ЭК-11" {
		t.Errorf("ActiveGroups() order = [%s %s], want collated [ИС-21 ЭК-11]", got[0].Name, got[1].Name)
	}
}

func TestService_StudentsByGroup(t *testing.T) {
	svc, _ := setup(t, session.RoleGuest)
	seedStudents(svc)

	grouped := svc.StudentsByGroup()
	if len(grouped["g-1"]) != 2 {
		t.Errorf("g-1 len = %d, want 2", len(grouped["g-1"]))
	}
	if len(grouped["g-2"]) != 1 {
		t.Errorf("g-2 len = %d, want 1 (inactive excluded)", len(grouped["g-2"]))
	}

	// buckets honor the active filters
	svc.SetSearch("иванов")
	grouped = svc.StudentsByGroup()
	if len(grouped) != 1 || len(grouped["g-1"]) != 1 {
		t.Errorf("filtered StudentsByGroup() = %v, want only Иванов", grouped)
	}
}

func TestAverageGrade(t *testing.T) {
	tests := []struct {
		name   string
		grades []Grade
		want   float64
		wantOK bool
	}{
		{name: "empty", grades: nil, wantOK: false},
		{name: "single", grades: []Grade{{Value: 4}}, want: 4, wantOK: true},
		{name: "mean", grades: []Grade{{Value: 3}, {Value: 4}, {Value: 5}}, want: 4, wantOK: true},
		{name: "zero average is real", grades: []Grade{{Value: 0}}, want: 0, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AverageGrade(tt.grades)
			if ok != tt.wantOK {
				t.Fatalf("AverageGrade() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("AverageGrade() = %v, want %v", got, tt.want)
			}
		})
	}
}
