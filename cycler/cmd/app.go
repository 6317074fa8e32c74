package cmd

import (
	"github.com/urfave/cli/v2"
)

func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cycler"
	app.Usage = "Recursive proof chains that witness identity cycles"
	app.Description = "Proves a chain of step programs, each verifying its predecessor's proof and appending one identity to a public commitment, then checks the final commitment for a repeated identity."
	app.Flags = CyclesFlags
	app.Action = Cycles
	app.Commands = []*cli.Command{
		VerifyCommand,
		ChainsCommand,
	}
	// plans are comma separated themselves
	app.DisableSliceFlagSeparator = true
	return app
}
