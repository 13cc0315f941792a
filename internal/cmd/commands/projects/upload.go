package projects

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/pkg/iemap"
)

type UploadCommand struct {
	*base.Command

	clientFlags   base.ClientFlags
	flagProjectID string
	flagFile      string
	flagName      string
}

func (c *UploadCommand) Synopsis() string {
	return "Attach a file to a project"
}

func (c *UploadCommand) Help() string {
	return `Usage: iemap projects upload -project-id=ID -file=path [-name=name]

  Upload a file to an existing project. Accepted extensions: ` +
		strings.Join(iemap.AllowedFileExtensions, ", ") + "." + c.Flags().Help()
}

func (c *UploadCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("upload", flag.ContinueOnError))
	c.clientFlags.Register(f)
	f.StringVar(&c.flagProjectID, "project-id", "", "(Required) Identifier returned when the project was created.")
	f.StringVar(&c.flagFile, "file", "", "(Required) Path of the file to upload.")
	f.StringVar(&c.flagName, "name", "", "Name to store the file under. Defaults to the file's base name.")
	return f
}

func (c *UploadCommand) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagProjectID == "" || c.flagFile == "" {
		ui.Error("project-id and file flags are required")
		return 1
	}
	if !iemap.IsAllowedFile(c.flagFile) {
		ui.Error(fmt.Sprintf("file type not supported: %s", c.flagFile))
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

	resp, err := env.Client.Projects.AddFile(ctx, c.flagProjectID, c.flagFile, c.flagName)
	if err != nil {
		reportError(ui, "error uploading file", err)
		return 1
	}

	ui.Info(fmt.Sprintf("Uploaded %s to project %s", c.flagFile, c.flagProjectID))
	keys := make([]string, 0, len(resp))
	for k := range resp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ui.Output(fmt.Sprintf("%s: %v", k, resp[k]))
	}
	return 0
}
