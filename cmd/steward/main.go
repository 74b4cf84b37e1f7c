// Command steward is a conversational product-management assistant. It can
// serve the chat API over HTTP or run an interactive terminal client.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "steward: %v\n", err)
		os.Exit(1)
	}
}
