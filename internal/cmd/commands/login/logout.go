package login

import (
	"flag"
	"fmt"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
)

type LogoutCommand struct {
	*base.Command

	clientFlags base.ClientFlags
}

func (c *LogoutCommand) Synopsis() string {
	return "Remove the cached access token"
}

func (c *LogoutCommand) Help() string {
	return `Usage: iemap logout [options]

  Delete the token stored by "iemap login".` + c.Flags().Help()
}

func (c *LogoutCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("logout", flag.ContinueOnError))
	c.clientFlags.Register(f)
	return f
}

func (c *LogoutCommand) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	env, err := c.Setup(c.clientFlags)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	if err := env.Tokens.Clear(); err != nil {
		ui.Error(err.Error())
		return 1
	}
	ui.Info("Logged out")
	return 0
}
