package main

import (
	"os"

	"github.com/opd-ai/bookpress/cli"
)

func main() {
	os.Exit(cli.Execute())
}
