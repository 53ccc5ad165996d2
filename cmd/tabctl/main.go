package main

import (
	"os"

	"github.com/mmynk/tabshare/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
