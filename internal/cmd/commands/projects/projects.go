package projects

import (
	"errors"

	"github.com/mitchellh/cli"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/pkg/models"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "List, create and import projects"
}

func (c *Command) Help() string {
	return `Usage: iemap projects <subcommand> [options] [args]

  This command groups subcommands for working with IEMAP projects.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// reportError prints validation failures as a field summary and anything
// else on one line.
func reportError(ui cli.Ui, prefix string, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		ui.Error(verr.Summary())
		return
	}
	ui.Error(prefix + ": " + err.Error())
}
