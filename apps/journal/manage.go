package main

import (
	"context"
	"errors"
	"fmt"

	"dnevnik/core"
	"dnevnik/core/journal"
)

// checkForm surfaces validation failures as warnings, one per field.
func (cli *commandLine) checkForm(err error) error {
	if err == nil {
		return nil
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		for _, f := range vErr.Fields {
			cli.notifier.Warning(fmt.Sprintf("%s: %s", f.Field, f.Error))
		}
	}
	return err
}

func (cli *commandLine) addStudent(form journal.NewStudent) error {
	defer cli.flushToasts()
	if err := cli.checkForm(form.Validate()); err != nil {
		return err
	}

	ctx := context.Background()
	cli.loadAll(ctx)
	if _, ok := cli.journal.GroupByID(form.GroupID); !ok {
		return fmt.Errorf("group %q not found", form.GroupID)
	}
	s := cli.journal.CreateStudent(ctx, form)
	if s == nil {
		cli.notifier.Error("Не удалось добавить студента")
		return nil
	}
	cli.notifier.Success("Студент добавлен")
	fmt.Println(s.ID)
	return nil
}

func (cli *commandLine) addGroup(form journal.NewGroup) error {
	defer cli.flushToasts()
	if err := cli.checkForm(form.Validate()); err != nil {
		return err
	}

	ctx := context.Background()
	cli.loadAll(ctx)
	g := cli.journal.CreateGroup(ctx, form)
	if g == nil {
		cli.notifier.Error("Не удалось добавить группу")
		return nil
	}
	cli.notifier.Success("Группа добавлена")
	fmt.Println(g.ID)
	return nil
}

func (cli *commandLine) addSubject(form journal.NewSubject) error {
	defer cli.flushToasts()
	if err := cli.checkForm(form.Validate()); err != nil {
		return err
	}

	ctx := context.Background()
	cli.loadAll(ctx)
	s := cli.journal.CreateSubject(ctx, form)
	if s == nil {
		cli.notifier.Error("Не удалось добавить предмет")
		return nil
	}
	cli.notifier.Success("Предмет добавлен")
	fmt.Println(s.ID)
	return nil
}

// remove deactivates a record after an interactive confirmation. The
// confirm dialog state machine is the same one a graphical front end
// would drive; here the answer comes from the terminal.
func (cli *commandLine) remove(what, id string) error {
	defer cli.flushToasts()
	ctx := context.Background()
	cli.loadAll(ctx)

	var deleted bool
	onConfirm := func() {
		switch what {
		case "rmstudent":
			deleted = cli.journal.DeleteStudent(ctx, id)
		case "rmgroup":
			deleted = cli.journal.DeleteGroup(ctx, id)
		case "rmsubject":
			deleted = cli.journal.DeleteSubject(ctx, id)
		}
	}
	cli.notifier.ShowConfirm("Подтверждение", fmt.Sprintf("Удалить запись %s?", id), onConfirm)

	pending := cli.notifier.PendingConfirm()
	fmt.Printf("%s %s [y/N]: ", pending.Title, pending.Message)
	answer, err := readLineFunc()
	if err != nil {
		cli.notifier.CancelAction()
		return err
	}
	if answer != "y" && answer != "Y" {
		cli.notifier.CancelAction()
		fmt.Println("cancelled")
		return nil
	}
	cli.notifier.ConfirmAction()

	if !deleted {
		cli.notifier.Error("Не удалось удалить запись")
		return nil
	}
	cli.notifier.Success("Запись удалена")
	return nil
}
