package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tmwangi/kazi/core/homework"
	"github.com/tmwangi/kazi/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db    *sqlx.DB
	hwSvc *homework.Service // built on demand, after migrations may have run
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate [up|down|status|version]  - run database migrations")
	fmt.Println("  seed                              - create demo assignments")
	fmt.Println("  summary -id ASSIGNMENT_ID         - print an assignment's submission counts")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	summaryCmd := flag.NewFlagSet("summary", flag.ExitOnError)
	summaryID := summaryCmd.String("id", "", "The assignment id.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed()
	case "summary":
		if err := summaryCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *summaryID == "" {
			summaryCmd.Usage()
			return errHelp
		}
		return cli.summary(*summaryID)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) service() (*homework.Service, error) {
	if cli.hwSvc != nil {
		return cli.hwSvc, nil
	}
	svc, err := homework.NewService(database.NewKVStore(cli.db), nil)
	if err != nil {
		return nil, err
	}
	cli.hwSvc = svc
	return svc, nil
}

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	return database.MigrateCommand(cli.db, command, rest...)
}

func (cli *commandLine) summary(id string) error {
	svc, err := cli.service()
	if err != nil {
		return err
	}
	sum, err := svc.GetSummary(id)
	if err != nil {
		return err
	}
	fmt.Printf("assignment:  %s\n", sum.AssignmentID)
	fmt.Printf("status:      %s\n", sum.Status)
	fmt.Printf("submissions: %d (late: %d, graded: %d)\n", sum.Submissions, sum.Late, sum.Graded)
	fmt.Printf("students:    %d\n", sum.Students)
	return nil
}
