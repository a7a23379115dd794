// README: farectl entry point; offline fare quotes from the command line.
package main

import (
	"os"
	_ "time/tzdata"

	"shuttle/cmd/farectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
