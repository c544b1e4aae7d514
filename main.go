package main

import (
	"os"

	"github.com/canada7700/finish-line-calendar-app-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
