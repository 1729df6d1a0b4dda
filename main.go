package main

import (
	"fmt"

	"github.com/robolab/arm-rl-train/train"
)

// main entry point to all the training runs
func main() {
	// rootCommand defines a command line argument parser (some arguments and a subcommand per algorithm)
	rootCommand := train.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
