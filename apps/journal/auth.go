package main

import (
	"fmt"

	"dnevnik/core/session"
)

func (cli *commandLine) login(role session.Role, password string) error {
	defer cli.flushToasts()

	cli.session.OpenLogin()
	if !cli.session.Login(role, password) {
		cli.notifier.Error(cli.session.LoginError())
		cli.session.CloseLogin()
		return fmt.Errorf("login as %q failed", role)
	}
	cli.notifier.Success("Вход выполнен")
	fmt.Printf("signed in as %s\n", cli.session.Role())
	return nil
}
