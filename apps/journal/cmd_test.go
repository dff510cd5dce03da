package main

import (
	"testing"
	"time"

	"dnevnik/core"
	"dnevnik/core/journal"
	"dnevnik/core/nav"
	"dnevnik/core/session"
	"dnevnik/core/ui"
	logsvc "dnevnik/services/logger"
	localstore "dnevnik/storage/local"
	"dnevnik/storage/remote/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	conf := &core.Config{
		TeacherPassword:      "teach-pass",
		AdminPassword:        "admin-pass",
		SessionDuration:      time.Hour,
		DefaultToastDuration: 0,
	}
	logger := logsvc.NewConsoleLoggerMock()
	store := localstore.NewMemStore()
	gw := inmem.New()

	sessSvc := session.NewService(store, conf, logger)
	return &commandLine{
		session:  sessSvc,
		journal:  journal.NewService(sessSvc, gw, logger),
		notifier: ui.NewService(store, conf, logger),
		nav:      nav.NewService(sessSvc, store, logger),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	password   string
	wantErr    error
	wantErrStr string
}

func Test_commandLine_help(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "login without role", args: []string{"login"}, wantErr: errHelp},
		{name: "login with unknown role", args: []string{"login", "-role", "dean"}, wantErr: errHelp},
		{name: "login as guest", args: []string{"login", "-role", "guest"}, wantErr: errHelp},
		{name: "rm without id", args: []string{"rmgroup"}, wantErr: errHelp},
		{name: "card without student", args: []string{"card"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"journal"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "wrong password", args: []string{"login", "-role", "admin"}, password: "lol", wantErrStr: `login as "admin" failed`},
		{name: "teacher", args: []string{"login", "-role", "teacher"}, password: "teach-pass"},
		{name: "admin", args: []string{"login", "-role", "admin"}, password: "admin-pass"},
	}
	for _, tt := range tests {
		args := append([]string{"journal"}, tt.args...)
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.password), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Fatalf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}
			if cli.session.Role() != session.Role(tt.args[2]) {
				t.Errorf("Role() = %s, want %s", cli.session.Role(), tt.args[2])
			}
		})
	}

	if err := cli.run([]string{"journal", "logout"}); err != nil {
		t.Fatalf("logout failed, %v", err)
	}
	if cli.session.Role() != session.RoleGuest {
		t.Errorf("Role() after logout = %s, want guest", cli.session.Role())
	}
}

func Test_commandLine_recordFlow(t *testing.T) {
	cli := setup(t)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("admin-pass"), nil }

	// guests cannot create anything
	if err := cli.run([]string{"journal", "addgroup", "-name", "ИС-21", "-course", "2", "-specialty", "ИС", "-year", "2024"}); err != nil {
		t.Fatalf("addgroup as guest errored, %v", err)
	}
	if len(cli.journal.Groups()) != 0 {
		t.Fatal("guest created a group")
	}

	if err := cli.run([]string{"journal", "login", "-role", "admin"}); err != nil {
		t.Fatalf("login failed, %v", err)
	}
	if err := cli.run([]string{"journal", "addgroup", "-name", "ИС-21", "-course", "2", "-specialty", "ИС", "-year", "2024"}); err != nil {
		t.Fatalf("addgroup failed, %v", err)
	}
	groups := cli.journal.Groups()
	if len(groups) != 1 {
		t.Fatalf("Groups() len = %d, want 1", len(groups))
	}
	groupID := groups[0].ID

	// validation failures surface before any write
	err := cli.run([]string{"journal", "addstudent", "-last", "Иванов", "-group", groupID})
	if err == nil {
		t.Fatal("addstudent without a first name must fail")
	}
	if len(cli.journal.Students()) != 0 {
		t.Fatal("invalid form reached the store")
	}

	if err := cli.run([]string{"journal", "addstudent", "-last", "Иванов", "-first", "Иван", "-group", groupID}); err != nil {
		t.Fatalf("addstudent failed, %v", err)
	}
	students := cli.journal.Students()
	if len(students) != 1 {
		t.Fatalf("Students() len = %d, want 1", len(students))
	}
	studentID := students[0].ID

	if err := cli.run([]string{"journal", "addsubject", "-name", "Математика", "-short", "Мат", "-hours", "120"}); err != nil {
		t.Fatalf("addsubject failed, %v", err)
	}
	subjectID := cli.journal.Subjects()[0].ID

	if err := cli.run([]string{"journal", "mark", "-student", studentID, "-subject", subjectID, "-date", "2026-02-10", "-status", "present"}); err != nil {
		t.Fatalf("mark failed, %v", err)
	}
	if err := cli.run([]string{"journal", "grade", "-student", studentID, "-subject", subjectID, "-value", "5", "-type", "exam", "-date", "2026-02-10"}); err != nil {
		t.Fatalf("grade failed, %v", err)
	}
	if avg, ok := cli.journal.StudentAverage(studentID); !ok || avg != 5 {
		t.Errorf("StudentAverage() = (%v, %v), want (5, true)", avg, ok)
	}

	if err := cli.run([]string{"journal", "card", "-student", studentID}); err != nil {
		t.Fatalf("card failed, %v", err)
	}

	if err := cli.run([]string{"journal", "load"}); err != nil {
		t.Fatalf("load failed, %v", err)
	}
	if len(cli.journal.Grades()) != 1 {
		t.Errorf("Grades() len after reload = %d, want 1", len(cli.journal.Grades()))
	}
}

func Test_commandLine_remove(t *testing.T) {
	cli := setup(t)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("admin-pass"), nil }

	if err := cli.run([]string{"journal", "login", "-role", "admin"}); err != nil {
		t.Fatalf("login failed, %v", err)
	}
	if err := cli.run([]string{"journal", "addgroup", "-name", "ИС-21", "-course", "2", "-specialty", "ИС", "-year", "2024"}); err != nil {
		t.Fatalf("addgroup failed, %v", err)
	}
	groupID := cli.journal.Groups()[0].ID

	// declining keeps the record active
	readLineFunc = func() (string, error) { return "n", nil }
	if err := cli.run([]string{"journal", "rmgroup", "-id", groupID}); err != nil {
		t.Fatalf("rmgroup failed, %v", err)
	}
	if grp, _ := cli.journal.GroupByID(groupID); !grp.IsActive {
		t.Fatal("declined removal deactivated the group")
	}

	readLineFunc = func() (string, error) { return "y", nil }
	if err := cli.run([]string{"journal", "rmgroup", "-id", groupID}); err != nil {
		t.Fatalf("rmgroup failed, %v", err)
	}
	grp, ok := cli.journal.GroupByID(groupID)
	if !ok {
		t.Fatal("soft-deleted group vanished")
	}
	if grp.IsActive {
		t.Error("group still active after confirmed removal")
	}
	if cli.notifier.PendingConfirm().Open {
		t.Error("confirm slot not reset")
	}
}

func Test_commandLine_open(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"journal", "open"}); err != nil {
		t.Fatalf("open without -page failed, %v", err)
	}
	if err := cli.run([]string{"journal", "open", "-page", "admin"}); err == nil {
		t.Fatal("guest opened the admin page")
	}
	if err := cli.run([]string{"journal", "open", "-page", "students"}); err != nil {
		t.Fatalf("open students failed, %v", err)
	}
	if cli.nav.CurrentPage() != nav.PageStudents {
		t.Errorf("CurrentPage() = %s, want students", cli.nav.CurrentPage())
	}
}
