package projects

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
)

type ListCommand struct {
	*base.Command

	clientFlags    base.ClientFlags
	flagPageSize   int
	flagPageNumber int
}

func (c *ListCommand) Synopsis() string {
	return "List your projects"
}

func (c *ListCommand) Help() string {
	return `Usage: iemap projects list [options]

  List one page of the projects owned by the logged in user.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))
	c.clientFlags.Register(f)
	f.IntVar(&c.flagPageSize, "page-size", 10, "Number of projects per page.")
	f.IntVar(&c.flagPageNumber, "page", 1, "Page number, starting at 1.")
	return f
}

func (c *ListCommand) Run(args []string) int {
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

	if err := env.RequireLogin(ctx); err != nil {
		ui.Error(err.Error())
		return 1
	}

	page, err := env.Client.Projects.List(ctx, c.flagPageSize, c.flagPageNumber)
	if err != nil {
		reportError(ui, "error listing projects", err)
		return 1
	}
	records, err := page.Records()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFORMULA\tMETHOD\tFILES\tCREATED")
	for _, r := range records {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Project.Name, r.Material.Formula, r.Process.Method, len(r.Files), created)
	}
	tw.Flush()

	ui.Output(strings.TrimRight(b.String(), "\n"))
	ui.Output(fmt.Sprintf("Page %d of %d (%d projects)", page.PageNumber, page.PageTotal, page.NumberDocs))
	return 0
}
