package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/internal/cmd/commands/login"
	"github.com/enea-iemap/iemap-mi/internal/cmd/commands/projects"
	"github.com/enea-iemap/iemap-mi/internal/cmd/commands/stats"
	"github.com/enea-iemap/iemap-mi/internal/cmd/commands/version"
)

// Commands is the mapping of all available commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
		"stats": func() (cli.Command, error) {
			return &stats.Command{Command: b}, nil
		},
		"login": func() (cli.Command, error) {
			return &login.Command{Command: b}, nil
		},
		"logout": func() (cli.Command, error) {
			return &login.LogoutCommand{Command: b}, nil
		},
		"projects": func() (cli.Command, error) {
			return &projects.Command{Command: b}, nil
		},
		"projects list": func() (cli.Command, error) {
			return &projects.ListCommand{Command: b}, nil
		},
		"projects create": func() (cli.Command, error) {
			return &projects.CreateCommand{Command: b}, nil
		},
		"projects upload": func() (cli.Command, error) {
			return &projects.UploadCommand{Command: b}, nil
		},
		"projects import": func() (cli.Command, error) {
			return &projects.ImportCommand{Command: b}, nil
		},
	}
}
