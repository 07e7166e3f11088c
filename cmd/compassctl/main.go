package main

import (
	"os"

	"github.com/MikeSquared-Agency/compass/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
