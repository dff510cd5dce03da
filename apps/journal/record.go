package main

import (
	"context"
	"fmt"

	"dnevnik/core/journal"
)

func (cli *commandLine) mark(form journal.NewAttendance) error {
	defer cli.flushToasts()
	if err := cli.checkForm(form.Validate()); err != nil {
		return err
	}

	ctx := context.Background()
	cli.loadAll(ctx)
	rec := cli.journal.CreateAttendance(ctx, form)
	if rec == nil {
		cli.notifier.Error("Не удалось сохранить посещаемость")
		return nil
	}
	cli.notifier.Success("Посещаемость сохранена")
	fmt.Println(rec.ID)
	return nil
}

func (cli *commandLine) grade(form journal.NewGrade) error {
	defer cli.flushToasts()
	if err := cli.checkForm(form.Validate()); err != nil {
		return err
	}

	ctx := context.Background()
	cli.loadAll(ctx)
	g := cli.journal.CreateGrade(ctx, form)
	if g == nil {
		cli.notifier.Error("Не удалось сохранить оценку")
		return nil
	}
	cli.notifier.Success("Оценка сохранена")
	fmt.Println(g.ID)
	return nil
}
