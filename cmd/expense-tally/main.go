package main

import (
	"os"

	"github.com/subosito/gotenv"

	"github.com/francis-pang/expense-tally/internal/commands"
)

func main() {
	// A missing .env is fine; variables may come from the environment.
	_ = gotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
