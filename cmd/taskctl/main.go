// Command taskctl is the administrative CLI collaborator: it talks to the
// task store directly, bypassing authentication entirely, for operational
// queries an operator runs out of band from the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/taskforge/core/cmd/taskctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
