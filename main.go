package main

import (
	"os"

	"github.com/zafaraftab1/careercopilot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
