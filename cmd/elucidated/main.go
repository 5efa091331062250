// Command elucidated runs the Elucidate dream questionnaire web server.
package main

import (
	"fmt"
	"os"

	"github.com/roasbeef/elucidate/cmd/elucidated/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
