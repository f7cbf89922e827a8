package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func NewApp(gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = versionString(gitCommit, gitDate)
	app.Usage = usage
	app.Copyright = "Copyright 2026 The solana-keyring authors"
	app.Before = func(ctx *cli.Context) error { return nil }
	return app
}

func versionString(gitCommit, gitDate string) string {
	v := "0.1.0"
	if gitCommit != "" && len(gitCommit) >= 8 {
		v += "-" + gitCommit[:8]
	}
	if gitDate != "" {
		v += fmt.Sprintf(" (%s)", gitDate)
	}
	return v
}
