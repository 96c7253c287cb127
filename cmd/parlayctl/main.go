// Command parlayctl runs parlay simulations, odds fetches and conversions from the shell.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
