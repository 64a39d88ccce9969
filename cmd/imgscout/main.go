// Command imgscout searches the Imgur gallery and keeps private comments on images.
package main

import (
	"os"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetServicesFactory(buildServices)
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
