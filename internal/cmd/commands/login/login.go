package login

import (
	"flag"
	"fmt"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/pkg/models"
)

type Command struct {
	*base.Command

	clientFlags  base.ClientFlags
	flagUsername string
}

func (c *Command) Synopsis() string {
	return "Log in and cache the access token"
}

func (c *Command) Help() string {
	return `Usage: iemap login [options]

  Authenticate with the IEMAP platform and store the access token so later
  commands can reuse it. The password is read from IEMAP_PASSWORD or
  prompted for.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("login", flag.ContinueOnError))
	c.clientFlags.Register(f)
	f.StringVar(
		&c.flagUsername, "username", "",
		"Account e-mail. Defaults to IEMAP_USERNAME.",
	)
	return f
}

func (c *Command) Run(args []string) int {
	logger, ui := c.Log, c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	env, err := c.Setup(c.clientFlags)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	username := c.flagUsername
	if username == "" {
		username = env.Config.Username
	}
	if username == "" {
		if username, err = ui.Ask("Username:"); err != nil {
			ui.Error(fmt.Sprintf("error reading username: %v", err))
			return 1
		}
	}
	password := env.Config.Password
	if password == "" {
		if password, err = ui.AskSecret("Password:"); err != nil {
			ui.Error(fmt.Sprintf("error reading password: %v", err))
			return 1
		}
	}

	ctx, cancel := base.Context()
	defer cancel()

	if err := env.Client.Authenticate(ctx, username, password); err != nil {
		ui.Error(fmt.Sprintf("error logging in: %v", err))
		return 1
	}

	tok, err := env.Client.Session().Token()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	if err := env.Tokens.Save(models.TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}); err != nil {
		ui.Error(fmt.Sprintf("error caching token: %v", err))
		return 1
	}
	logger.Debug("token cached", "path", env.Tokens.Path())

	msg := "Logged in as " + username
	if exp := env.Client.Session().Expiry(); !exp.IsZero() {
		msg += fmt.Sprintf(" (token valid until %s)", exp.Local().Format("2006-01-02 15:04"))
	}
	ui.Info(msg)
	return 0
}
