// Command tabkit inspects, renders and converts typed table files.
package main

import (
	"os"

	"github.com/tabkit-labs/tabkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
