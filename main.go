package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/cashbook/cmd"
	"github.com/oakwood-commons/cashbook/pkg/logger"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		exitCode = 1
		if cmd.IsUsageError(err) {
			exitCode = 2
		}
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
