package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/rtplab/sdk/perf"
)

// makefile runner
func main() {
	c, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	var simErr error
	if err := perf.Run(c.pprofmode, func() { simErr = simulate(c, os.Stdout) }); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if simErr != nil {
		fmt.Fprintln(os.Stderr, simErr)
		os.Exit(1)
	}
}
