package main

import (
	"os"

	"github.com/abhisek/lessonflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
