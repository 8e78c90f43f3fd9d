package main

import (
	"fmt"
	"time"

	"github.com/tmwangi/kazi/core/homework"
)

var seedTeacher = homework.Actor{ID: "seed-teacher", Name: "Seed Teacher", Role: homework.RoleTeacher}

// seed creates a handful of demo assignments for local development.
func (cli *commandLine) seed() error {
	svc, err := cli.service()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	demo := []homework.NewAssignment{
		{
			Subject:      "Mathematics",
			ClassName:    "Form 2A",
			Title:        "Quadratic equations worksheet",
			Instructions: "Solve all ten problems; show your working.",
			Due:          now.Add(7 * 24 * time.Hour),
			Difficulty:   homework.DifficultyMedium,
		},
		{
			Subject:      "English",
			ClassName:    "Form 2A",
			Title:        "Book report: chapter 4",
			Instructions: "One page, handwritten or typed.",
			Due:          now.Add(3 * 24 * time.Hour),
			Difficulty:   homework.DifficultyEasy,
			Recurrence:   homework.RecurrenceWeekly,
		},
		{
			Subject:    "Physics",
			ClassName:  "Form 3B",
			Title:      "Lab write-up: pendulum period",
			Due:        now.Add(24 * time.Hour),
			Difficulty: homework.DifficultyHard,
			Urgent:     true,
		},
	}

	for _, na := range demo {
		a, err := svc.CreateAssignment(seedTeacher, na)
		if err != nil {
			return err
		}
		fmt.Printf("created %s  %s / %s  %q\n", a.ID, a.Subject, a.ClassName, a.Title)
	}
	return nil
}
