package base

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/enea-iemap/iemap-mi/internal/config"
	"github.com/enea-iemap/iemap-mi/pkg/iemap"
	"github.com/enea-iemap/iemap-mi/pkg/tokencache"
)

// ClientFlags are accepted by every command that talks to the platform.
type ClientFlags struct {
	Config   string
	LogLevel string
}

// Register adds the shared flags to f.
func (cf *ClientFlags) Register(f *FlagSet) {
	f.StringVar(&cf.Config, "config", "", "Path to an HCL config file.")
	f.StringVar(&cf.LogLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error). Overrides the config file.")
}

// Env holds what a command needs to reach the platform.
type Env struct {
	Config *config.Config
	Client *iemap.Client
	Tokens *tokencache.Cache
}

func (c *Command) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

// ReadFile reads path from the command's filesystem.
func (c *Command) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(c.fs(), path)
}

// Setup loads configuration, adjusts the log level and builds a client with
// any cached token restored.
func (c *Command) Setup(cf ClientFlags) (*Env, error) {
	cfg, err := config.Loader{Fs: c.Fs, LookupEnv: c.LookupEnv}.Load(cf.Config)
	if err != nil {
		return nil, err
	}
	if cf.LogLevel != "" {
		cfg.LogLevel = cf.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if c.Log == nil {
		c.Log = hclog.NewNullLogger()
	}
	c.Log.SetLevel(cfg.Level())

	clientCfg, err := cfg.ClientConfig(c.Log)
	if err != nil {
		return nil, fmt.Errorf("error building client config: %w", err)
	}
	clientCfg.Fs = c.fs()

	client, err := iemap.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}

	path, err := cfg.TokenPath()
	if err != nil {
		return nil, err
	}
	tokens := tokencache.New(c.fs(), path)
	if ok, err := tokens.Restore(client.Session()); err != nil {
		c.Log.Warn("ignoring unreadable token cache", "path", path, "error", err)
	} else if ok {
		c.Log.Debug("restored cached token", "path", path)
	}

	return &Env{Config: cfg, Client: client, Tokens: tokens}, nil
}

// RequireLogin makes sure the session holds a token. Without a cached token
// it falls back to credentials from the environment.
func (e *Env) RequireLogin(ctx context.Context) error {
	if e.Client.Session().Authenticated() {
		return nil
	}
	if e.Config.Username == "" || e.Config.Password == "" {
		return errors.New(`not logged in: run "iemap login" or set ` +
			config.EnvUsername + " and " + config.EnvPassword)
	}
	return e.Client.Authenticate(ctx, e.Config.Username, e.Config.Password)
}

// Context returns a context cancelled on interrupt.
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
