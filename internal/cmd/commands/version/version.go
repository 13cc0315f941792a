package version

import (
	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: iemap version

  Print the version of the iemap CLI.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("iemap " + version.Version)
	return 0
}
