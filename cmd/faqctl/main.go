// Command faqctl runs the FAQ matcher and content filter from a terminal, using the same
// configuration as the HTTP service.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
