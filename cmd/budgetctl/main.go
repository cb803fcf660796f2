package main

import (
	"errors"
	"fmt"
	"os"

	"budgetry/internal/cli"
	"budgetry/internal/logger"
)

func main() {
	err := cli.NewRootCommand().Execute()
	logger.Sync()
	if err != nil {
		// failures already reported through the formatter carry only a code
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
