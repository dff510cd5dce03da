package journal

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Derived views are pure functions over the live collections and the
// settled filter state; they never mutate the cache and are recomputed on
// every call.

// FilteredStudents returns active students narrowed by the group filter
// and the free-text search, ordered by last name with Russian collation.
//
// The search splits into lowercase whitespace tokens; a student matches
// iff every token is a substring of the space-joined
// "lastName firstName middleName" string (AND semantics, token order
// irrelevant).
func (svc *Service) FilteredStudents() []Student {
	svc.mu.RLock()
	students := append([]Student(nil), svc.students...)
	filters := svc.filters
	svc.mu.RUnlock()

	result := students[:0]
	tokens := searchTokens(filters.Search)
	for _, st := range students {
		if !st.IsActive {
			continue
		}
		if filters.GroupID != "" && st.GroupID != filters.GroupID {
			continue
		}
		if !matchesTokens(st, tokens) {
			continue
		}
		result = append(result, st)
	}

	c := collate.New(language.Russian)
	sort.SliceStable(result, func(i, j int) bool {
		return c.CompareString(result[i].LastName, result[j].LastName) < 0
	})
	return result
}

func searchTokens(query string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(query)))
}

func matchesTokens(st Student, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{st.LastName, st.FirstName, st.MiddleName} {
		if p != "" {
			parts = append(parts, strings.ToLower(p))
		}
	}
	fullName := strings.Join(parts, " ")
	for _, token := range tokens {
		if !strings.Contains(fullName, token) {
			return false
		}
	}
	return true
}

// ActiveGroups returns active groups ordered by name with Russian collation.
func (svc *Service) ActiveGroups() []Group {
	svc.mu.RLock()
	groups := append([]Group(nil), svc.groups...)
	svc.mu.RUnlock()

	result := groups[:0]
	for _, grp := range groups {
		if grp.IsActive {
			result = append(result, grp)
		}
	}
	c := collate.New(language.Russian)
	sort.SliceStable(result, func(i, j int) bool {
		return c.CompareString(result[i].Name, result[j].Name) < 0
	})
	return result
}

// ActiveSubjects returns active subjects ordered by name with Russian collation.
func (svc *Service) ActiveSubjects() []Subject {
	svc.mu.RLock()
	subjects := append([]Subject(nil), svc.subjects...)
	svc.mu.RUnlock()

	result := subjects[:0]
	for _, sub := range subjects {
		if sub.IsActive {
			result = append(result, sub)
		}
	}
	c := collate.New(language.Russian)
	sort.SliceStable(result, func(i, j int) bool {
		return c.CompareString(result[i].Name, result[j].Name) < 0
	})
	return result
}

// StudentsByGroup buckets FilteredStudents by group id.
func (svc *Service) StudentsByGroup() map[string][]Student {
	grouped := make(map[string][]Student)
	for _, st := range svc.FilteredStudents() {
		grouped[st.GroupID] = append(grouped[st.GroupID], st)
	}
	return grouped
}

// AverageGrade returns the mean value of the given grades. The second
// return is false for empty input so callers can tell "no grades yet"
// apart from a real average of zero.
func AverageGrade(grades []Grade) (float64, bool) {
	if len(grades) == 0 {
		return 0, false
	}
	var sum float64
	for _, grade := range grades {
		sum += grade.Value
	}
	return sum / float64(len(grades)), true
}

// StudentAverage is AverageGrade over the student's cached grades.
func (svc *Service) StudentAverage(studentID string) (float64, bool) {
	return AverageGrade(svc.GradesForStudent(studentID))
}
