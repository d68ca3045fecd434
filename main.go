// main is the entry point for the prlens CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/prlens/cmd"
	"github.com/huangsam/prlens/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		if errors.Is(err, contract.ErrRateLimitCritical) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
