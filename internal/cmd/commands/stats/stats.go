package stats

import (
	"flag"
	"fmt"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
)

type Command struct {
	*base.Command

	clientFlags base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "Show platform statistics"
}

func (c *Command) Help() string {
	return `Usage: iemap stats [options]

  Show project, user and file counts for the IEMAP platform. No login is
  required.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("stats", flag.ContinueOnError))
	c.clientFlags.Register(f)
	return f
}

func (c *Command) Run(args []string) int {
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

	ctx, cancel := base.Context()
	defer cancel()

	stats, err := env.Client.Stats.Get(ctx)
	if err != nil {
		ui.Error(fmt.Sprintf("error getting stats: %v", err))
		return 1
	}

	ui.Output(fmt.Sprintf("Projects:          %d", stats.TotalProjects))
	ui.Output(fmt.Sprintf("Users:             %d", stats.TotalUsers))
	ui.Output(fmt.Sprintf("Registered users:  %d", stats.TotalUsersRegistered))
	if len(stats.ProjectsPerAffil) > 0 {
		ui.Output("Projects per affiliation:")
		for _, a := range stats.ProjectsPerAffil {
			ui.Output(fmt.Sprintf("  %s: %d", a.Affiliation, a.N))
		}
	}
	if len(stats.FilesPerAffil) > 0 {
		ui.Output("Files per affiliation:")
		for _, a := range stats.FilesPerAffil {
			ui.Output(fmt.Sprintf("  %s: %d", a.Affiliation, a.N))
		}
	}
	return 0
}
