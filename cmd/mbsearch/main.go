// Command mbsearch searches the Medicare Benefits Schedule.
package main

import (
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/cli"
)

// version is set at build time.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	cli.Execute()
}
