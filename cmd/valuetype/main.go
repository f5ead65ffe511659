package main

import (
	"os"

	"github.com/goliatone/go-valuetype/cmd/valuetype/commands"
)

func main() {
	os.Exit(commands.Execute())
}
