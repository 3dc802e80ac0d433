// Command urine encodes JSON or YAML documents into the urine binary format,
// inspects encoded data, and stores encoded documents in Redis.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
