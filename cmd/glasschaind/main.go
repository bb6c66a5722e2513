// Command glasschaind runs a glasschain node: it loads configuration, wires
// the chainstate/mempool/peer-manager collaborators to the sync core, and
// serves peer connections until an OS signal asks it to stop.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/nspcc-dev/glasschain/pkg/config"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "glasschaind\nGoVersion: %s\n", runtime.Version())
}

func newApp() *cli.App {
	cli.VersionPrinter = versionPrinter

	app := cli.NewApp()
	app.Name = "glasschaind"
	app.Usage = "glasschain node"
	app.ErrWriter = os.Stdout
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config-path",
			Usage: "path to a YAML configuration file; built-in defaults are used if omitted",
		},
	}
	app.Action = runNode
	return app
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	path := ctx.String("config-path")
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
