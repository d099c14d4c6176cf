// Command stockctl prints stock reports and manages stock settings
// against the configured store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
