package main

import (
	"fmt"
	"os"

	"github.com/screenbase/screenbase/pkg/cli"
)

func main() {
	root := cli.NewRootCommand(cli.Options{
		Name:        "screenbase",
		Description: "Movie catalog data access over MongoDB",
		EnvPrefix:   "SCREENBASE",
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
