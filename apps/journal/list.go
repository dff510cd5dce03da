package main

import (
	"context"
	"fmt"
	"strings"

	"dnevnik/core/journal"
	"dnevnik/core/nav"
)

func (cli *commandLine) loadAll(ctx context.Context) {
	cli.journal.LoadAll(ctx)
	for _, msg := range []string{
		cli.journal.StudentsError(),
		cli.journal.GroupsError(),
		cli.journal.SubjectsError(),
		cli.journal.AttendanceError(),
		cli.journal.GradesError(),
	} {
		if msg != "" {
			cli.notifier.Error(msg)
		}
	}
}

func (cli *commandLine) load() error {
	defer cli.flushToasts()
	cli.loadAll(context.Background())

	fmt.Printf("студенты: %d\n", len(cli.journal.Students()))
	fmt.Printf("группы: %d\n", len(cli.journal.Groups()))
	fmt.Printf("предметы: %d\n", len(cli.journal.Subjects()))
	fmt.Printf("посещаемость: %d\n", len(cli.journal.Attendance()))
	fmt.Printf("оценки: %d\n", len(cli.journal.Grades()))
	return nil
}

func (cli *commandLine) listStudents(groupID, search string) error {
	defer cli.flushToasts()
	cli.loadAll(context.Background())

	cli.journal.SetGroupFilter(groupID)
	cli.journal.SetSearch(search)

	students := cli.journal.FilteredStudents()
	if len(students) == 0 {
		fmt.Println("no students")
		return nil
	}
	for _, s := range students {
		grpName := "-"
		if grp, ok := cli.journal.GroupByID(s.GroupID); ok {
			grpName = grp.Name
		}
		fmt.Printf("%-36s  %-40s  %s\n", s.ID, fullName(s), grpName)
	}
	return nil
}

func fullName(s journal.Student) string {
	parts := []string{s.LastName, s.FirstName}
	if s.MiddleName != "" {
		parts = append(parts, s.MiddleName)
	}
	return strings.Join(parts, " ")
}

func (cli *commandLine) listGroups() error {
	defer cli.flushToasts()
	cli.loadAll(context.Background())

	groups := cli.journal.ActiveGroups()
	if len(groups) == 0 {
		fmt.Println("no groups")
		return nil
	}
	byGroup := cli.journal.StudentsByGroup()
	for _, g := range groups {
		fmt.Printf("%-36s  %-12s  курс %d, %s, %d (%d студ.)\n",
			g.ID, g.Name, g.Course, g.Specialty, g.Year, len(byGroup[g.ID]))
	}
	return nil
}

func (cli *commandLine) listSubjects() error {
	defer cli.flushToasts()
	cli.loadAll(context.Background())

	subjects := cli.journal.ActiveSubjects()
	if len(subjects) == 0 {
		fmt.Println("no subjects")
		return nil
	}
	for _, s := range subjects {
		fmt.Printf("%-36s  %-30s  %-10s  %s, %d ч.\n",
			s.ID, s.Name, s.ShortName, s.TeacherName, s.HoursTotal)
	}
	return nil
}

func (cli *commandLine) studentCard(studentID string) error {
	defer cli.flushToasts()
	cli.loadAll(context.Background())

	s, ok := cli.journal.StudentByID(studentID)
	if !ok {
		return fmt.Errorf("student %q not found", studentID)
	}
	fmt.Println(fullName(s))
	if grp, ok := cli.journal.GroupByID(s.GroupID); ok {
		fmt.Printf("группа: %s\n", grp.Name)
	}

	fmt.Println("\nПосещаемость:")
	var seen bool
	for _, rec := range cli.journal.Attendance() {
		if rec.StudentID != studentID {
			continue
		}
		seen = true
		subj := rec.SubjectID
		if sub, ok := cli.journal.SubjectByID(rec.SubjectID); ok {
			subj = sub.ShortName
		}
		fmt.Printf("  %s  %-10s  %-8s  %s\n", rec.Date, subj, rec.Status, rec.Note)
	}
	if !seen {
		fmt.Println("  нет записей")
	}

	fmt.Println("\nОценки:")
	grades := cli.journal.GradesForStudent(studentID)
	for _, g := range grades {
		subj := g.SubjectID
		if sub, ok := cli.journal.SubjectByID(g.SubjectID); ok {
			subj = sub.ShortName
		}
		fmt.Printf("  %s  %-10s  %.0f/%.0f  %-10s  %s\n", g.Date, subj, g.Value, g.MaxValue, g.Type, g.Description)
	}
	if len(grades) == 0 {
		fmt.Println("  нет записей")
	}
	if avg, ok := cli.journal.StudentAverage(studentID); ok {
		fmt.Printf("\nсредний балл: %.2f\n", avg)
	}
	return nil
}

func (cli *commandLine) open(page nav.PageID) error {
	if page == "" {
		current := cli.nav.CurrentPage()
		for _, item := range cli.nav.NavigationItems() {
			marker := " "
			if item.ID == current {
				marker = "*"
			}
			fmt.Printf("%s %-12s %s\n", marker, item.ID, item.Title)
		}
		return nil
	}
	if !cli.nav.SetPage(page) {
		return fmt.Errorf("page %q is not accessible", page)
	}
	var crumbs []string
	for _, c := range cli.nav.Breadcrumbs() {
		crumbs = append(crumbs, c.Title)
	}
	fmt.Println(strings.Join(crumbs, " / "))
	return nil
}
