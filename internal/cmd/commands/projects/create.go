package projects

import (
	"flag"
	"fmt"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/pkg/payload"
)

type CreateCommand struct {
	*base.Command

	clientFlags base.ClientFlags
	flagFile    string
	flagDryRun  bool
}

func (c *CreateCommand) Synopsis() string {
	return "Create a project from a JSON or YAML record"
}

func (c *CreateCommand) Help() string {
	return `Usage: iemap projects create -file=record.json

  Validate a project record and submit it. Every invalid field is reported
  before anything is sent.` + c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.clientFlags.Register(f)
	f.StringVar(&c.flagFile, "file", "", "(Required) Path to a .json, .yaml or .yml record.")
	f.BoolVar(&c.flagDryRun, "dry-run", false, "Validate the record without submitting it.")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagFile == "" {
		ui.Error("file flag is required")
		return 1
	}

	data, err := c.ReadFile(c.flagFile)
	if err != nil {
		ui.Error(fmt.Sprintf("error reading record: %v", err))
		return 1
	}
	raw, err := payload.DecodeRecord(data, payload.FormatFromPath(c.flagFile))
	if err != nil {
		ui.Error(fmt.Sprintf("error decoding record: %v", err))
		return 1
	}
	req, err := payload.Parse(raw)
	if err != nil {
		reportError(ui, "error building project", err)
		return 1
	}
	if c.flagDryRun {
		ui.Info(fmt.Sprintf("Record for project %q is valid", req.Project.Name))
		return 0
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

	resp, err := env.Client.Projects.Create(ctx, req)
	if err != nil {
		reportError(ui, "error creating project", err)
		return 1
	}
	ui.Info(fmt.Sprintf("Created project %q", req.Project.Name))
	ui.Output(resp.InsertedID)
	return 0
}
