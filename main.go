// Command treesize reports the cumulative disk usage of every path under a directory.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/treesize/internal/cli"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
