// Command sentinelctl is the operator-facing CLI: audit a single command,
// run the HTTP façade, or validate a constitution file.
package main

import (
	"fmt"
	"os"

	"github.com/taajirah/sentinel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
