package main

import (
	"fmt"
	"log"
	"os"

	"dnevnik/core"
	"dnevnik/core/journal"
	"dnevnik/core/nav"
	"dnevnik/core/session"
	"dnevnik/core/ui"
	logsvc "dnevnik/services/logger"
	localstore "dnevnik/storage/local"
	"dnevnik/storage/remote"
	"dnevnik/storage/remote/inmem"
	"dnevnik/storage/remote/pgdb"
	"dnevnik/storage/remote/redisdb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	std := log.New(os.Stdout, "JOURNAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		rl := logsvc.NewRollbarLogger(std, conf)
		rl.Enable(true)
		logger = rl
	}

	gw, closeGw, err := openGateway(conf)
	errAndDie(err)
	defer closeGw()

	local := localstore.NewFileStore(conf.LocalStatePath)

	sessSvc := session.NewService(local, conf, logger)
	journalSvc := journal.NewService(sessSvc, gw, logger)
	notifier := ui.NewService(local, conf, logger)
	navSvc := nav.NewService(sessSvc, local, logger)

	// =========================================================================
	// Run

	cli := &commandLine{
		session:  sessSvc,
		journal:  journalSvc,
		notifier: notifier,
		nav:      navSvc,
	}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		fmt.Fprintf(os.Stderr, "journal: %v\n", err)
		os.Exit(1)
	}
}

func openGateway(conf *core.Config) (remote.Gateway, func(), error) {
	switch conf.Remote.Backend {
	case "redis":
		gw, err := redisdb.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { _ = gw.Close() }, nil
	case "postgres":
		gw, err := pgdb.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { _ = gw.Close() }, nil
	case "inmem":
		return inmem.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown remote backend %q", conf.Remote.Backend)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
