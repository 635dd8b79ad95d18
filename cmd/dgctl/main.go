// Command dgctl runs operator tasks against the dangerous goods database:
// migrations, the legacy fee label migration and token minting.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
