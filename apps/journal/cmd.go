package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"dnevnik/core/journal"
	"dnevnik/core/nav"
	"dnevnik/core/session"
	"dnevnik/core/ui"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	readLineFunc     = readLine          // mockable

	errHelp = errors.New("help provided")
)

func readLine() (string, error) {
	rd := bufio.NewReader(os.Stdin)
	line, err := rd.ReadString('\n')
	return strings.TrimSpace(line), err
}

type commandLine struct {
	session  *session.Service
	journal  *journal.Service
	notifier *ui.Service
	nav      *nav.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  login -role ROLE                         - sign in as teacher or admin (password prompted)")
	fmt.Println("  logout                                   - end the current session")
	fmt.Println("  whoami                                   - show the current role")
	fmt.Println("  load                                     - fetch all collections and report counts")
	fmt.Println("  students [-group ID] [-search QUERY]     - list active students")
	fmt.Println("  groups                                   - list active groups")
	fmt.Println("  subjects                                 - list active subjects")
	fmt.Println("  addstudent -last L -first F -group ID    - register a student (admin)")
	fmt.Println("  addgroup -name N -course C -specialty S -year Y - register a group (admin)")
	fmt.Println("  addsubject -name N -short S              - register a subject (admin)")
	fmt.Println("  rmstudent|rmgroup|rmsubject -id ID       - deactivate a record (admin, confirmed)")
	fmt.Println("  mark -student ID -subject ID -date D -status S - record attendance (teacher)")
	fmt.Println("  grade -student ID -subject ID -value V -type T -date D - record a grade (teacher)")
	fmt.Println("  card -student ID                         - attendance and grades for one student")
	fmt.Println("  open -page PAGE                          - navigate; lists pages when no -page given")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginRole := loginCmd.String("role", "", "Role to sign in as: teacher or admin. The password will be prompted next.")

	studentsCmd := flag.NewFlagSet("students", flag.ExitOnError)
	studentsGroup := studentsCmd.String("group", "", "Only students of this group.")
	studentsSearch := studentsCmd.String("search", "", "Name search query; every word must match.")

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	stuLast := addStudentCmd.String("last", "", "Last name.")
	stuFirst := addStudentCmd.String("first", "", "First name.")
	stuMiddle := addStudentCmd.String("middle", "", "Middle name.")
	stuGroup := addStudentCmd.String("group", "", "Group ID.")
	stuEmail := addStudentCmd.String("email", "", "Email address.")
	stuPhone := addStudentCmd.String("phone", "", "Phone number.")
	stuEnrolled := addStudentCmd.String("enrolled", "", "Enrollment date, YYYY-MM-DD.")

	addGroupCmd := flag.NewFlagSet("addgroup", flag.ExitOnError)
	grpName := addGroupCmd.String("name", "", "Group name, e.g. ИС-21.")
	grpCourse := addGroupCmd.Int("course", 0, "Course number, starting at 1.")
	grpSpecialty := addGroupCmd.String("specialty", "", "Specialty name.")
	grpYear := addGroupCmd.Int("year", 0, "Admission year.")

	addSubjectCmd := flag.NewFlagSet("addsubject", flag.ExitOnError)
	subName := addSubjectCmd.String("name", "", "Subject name.")
	subShort := addSubjectCmd.String("short", "", "Short name.")
	subTeacher := addSubjectCmd.String("teacher", "", "Teacher name.")
	subHours := addSubjectCmd.Int("hours", 0, "Total hours.")

	rmCmd := flag.NewFlagSet("rm", flag.ExitOnError)
	rmID := rmCmd.String("id", "", "ID of the record to deactivate.")

	markCmd := flag.NewFlagSet("mark", flag.ExitOnError)
	markStudent := markCmd.String("student", "", "Student ID.")
	markSubject := markCmd.String("subject", "", "Subject ID.")
	markDate := markCmd.String("date", "", "Lesson date, YYYY-MM-DD.")
	markStatus := markCmd.String("status", "", "present, absent, late or excused.")
	markNote := markCmd.String("note", "", "Optional note.")

	gradeCmd := flag.NewFlagSet("grade", flag.ExitOnError)
	gradeStudent := gradeCmd.String("student", "", "Student ID.")
	gradeSubject := gradeCmd.String("subject", "", "Subject ID.")
	gradeValue := gradeCmd.Float64("value", 0, "Grade value.")
	gradeMax := gradeCmd.Float64("max", 0, "Grading scale ceiling; defaults to 5.")
	gradeType := gradeCmd.String("type", string(journal.GradeCurrent), "current, control, exam or coursework.")
	gradeDate := gradeCmd.String("date", "", "Grade date, YYYY-MM-DD.")
	gradeDesc := gradeCmd.String("desc", "", "Optional description.")

	cardCmd := flag.NewFlagSet("card", flag.ExitOnError)
	cardStudent := cardCmd.String("student", "", "Student ID.")

	openCmd := flag.NewFlagSet("open", flag.ExitOnError)
	openPage := openCmd.String("page", "", "Page to navigate to.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		role := session.Role(*loginRole)
		if !role.Valid() || role == session.RoleGuest {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		return cli.login(role, string(pwd))
	case "logout":
		cli.session.Logout()
		fmt.Println("logged out")
		return nil
	case "whoami":
		fmt.Println(cli.session.Role())
		return nil
	case "load":
		return cli.load()
	case "students":
		if err := studentsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listStudents(*studentsGroup, *studentsSearch)
	case "groups":
		return cli.listGroups()
	case "subjects":
		return cli.listSubjects()
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.addStudent(journal.NewStudent{
			LastName:       *stuLast,
			FirstName:      *stuFirst,
			MiddleName:     *stuMiddle,
			GroupID:        *stuGroup,
			Email:          *stuEmail,
			Phone:          *stuPhone,
			EnrollmentDate: *stuEnrolled,
		})
	case "addgroup":
		if err := addGroupCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.addGroup(journal.NewGroup{
			Name:      *grpName,
			Course:    *grpCourse,
			Specialty: *grpSpecialty,
			Year:      *grpYear,
		})
	case "addsubject":
		if err := addSubjectCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.addSubject(journal.NewSubject{
			Name:        *subName,
			ShortName:   *subShort,
			TeacherName: *subTeacher,
			HoursTotal:  *subHours,
		})
	case "rmstudent", "rmgroup", "rmsubject":
		if err := rmCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rmID == "" {
			rmCmd.Usage()
			return errHelp
		}
		return cli.remove(args[1], *rmID)
	case "mark":
		if err := markCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.mark(journal.NewAttendance{
			StudentID: *markStudent,
			SubjectID: *markSubject,
			Date:      *markDate,
			Status:    journal.AttendanceStatus(*markStatus),
			Note:      *markNote,
		})
	case "grade":
		if err := gradeCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.grade(journal.NewGrade{
			StudentID:   *gradeStudent,
			SubjectID:   *gradeSubject,
			Value:       *gradeValue,
			MaxValue:    *gradeMax,
			Type:        journal.GradeType(*gradeType),
			Date:        *gradeDate,
			Description: *gradeDesc,
		})
	case "card":
		if err := cardCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *cardStudent == "" {
			cardCmd.Usage()
			return errHelp
		}
		return cli.studentCard(*cardStudent)
	case "open":
		if err := openCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.open(nav.PageID(*openPage))
	default:
		cli.printUsage()
		return errHelp
	}
}

// flushToasts drains the queued notifications to the terminal. The CLI has
// no long-lived view, so toasts are printed and cleared after every command.
func (cli *commandLine) flushToasts() {
	for _, t := range cli.notifier.Toasts() {
		fmt.Printf("[%s] %s\n", t.Type, t.Message)
	}
	cli.notifier.ClearToasts()
}
