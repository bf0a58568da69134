package main

import (
	"fmt"
	"os"

	"github.com/xuejuncheng0222/branch-keeper/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the branch-keeper command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
