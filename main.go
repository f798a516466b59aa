package main

import (
	"os"

	"github.com/resumetools/resume-optimizer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
