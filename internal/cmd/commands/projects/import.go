package projects

import (
	"flag"
	"fmt"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/pkg/importer"
	"github.com/enea-iemap/iemap-mi/pkg/models"
	"github.com/enea-iemap/iemap-mi/pkg/payload"
)

type ImportCommand struct {
	*base.Command

	clientFlags base.ClientFlags
	flagFile    string
	flagDryRun  bool
}

func (c *ImportCommand) Synopsis() string {
	return "Create many projects from a JSON array or YAML list"
}

func (c *ImportCommand) Help() string {
	return `Usage: iemap projects import -file=rows.yaml

  Validate every record in the file and submit the valid ones one at a
  time. Invalid records are reported and skipped.` + c.Flags().Help()
}

func (c *ImportCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("import", flag.ContinueOnError))
	c.clientFlags.Register(f)
	f.StringVar(&c.flagFile, "file", "", "(Required) Path to a .json, .yaml or .yml file of records.")
	f.BoolVar(&c.flagDryRun, "dry-run", false, "Only validate the records.")
	return f
}

func (c *ImportCommand) Run(args []string) int {
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
		ui.Error(fmt.Sprintf("error reading records: %v", err))
		return 1
	}
	records, err := payload.DecodeRecords(data, payload.FormatFromPath(c.flagFile))
	if err != nil {
		ui.Error(fmt.Sprintf("error decoding records: %v", err))
		return 1
	}

	ctx, cancel := base.Context()
	defer cancel()

	cfg := importer.Config{
		DryRun: c.flagDryRun,
		Logger: c.Log,
		Reporter: func(index int, verr *models.ValidationError) {
			ui.Error(fmt.Sprintf("record %d: %s", index, verr.Summary()))
		},
	}
	if !c.flagDryRun {
		env, err := c.Setup(c.clientFlags)
		if err != nil {
			ui.Error(err.Error())
			return 1
		}
		if err := env.RequireLogin(ctx); err != nil {
			ui.Error(err.Error())
			return 1
		}
		cfg.Creator = env.Client.Projects
	}

	im, err := importer.New(cfg)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	summary, err := im.Run(ctx, records)
	for _, id := range summary.Created {
		ui.Output(id)
	}
	ui.Info(summary.String())
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	if len(summary.Invalid) > 0 {
		return 2
	}
	return 0
}
