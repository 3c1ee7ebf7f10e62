package main

import (
	"os"

	"github.com/Vincent4486/CommuniDirect/cmd/cdir/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
