package main

import (
	"os"

	"github.com/hiredeck/applicant-radar/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
