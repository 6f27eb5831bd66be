package main

import (
	"os"

	"github.com/dbparity/dbparity/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
