package main

import (
	"os"

	"github.com/enfabrica/kunzip/kunzip/commands"
	"github.com/enfabrica/kunzip/lib/kflags/kcobra"
)

func main() {
	root := commands.NewRoot(os.Stdin, os.Stdout, os.Stderr)
	kcobra.Run(root.Command)
}
