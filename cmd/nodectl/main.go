package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/airlink-io/nodectl/cmd/nodectl/commands"
)

func main() {
	commands.Execute()
}
