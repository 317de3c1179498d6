// Command tents generates Tents and Trees puzzles and plays them in the
// terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
