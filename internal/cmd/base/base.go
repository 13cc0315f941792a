// Package base holds what every CLI command shares.
package base

import (
	"bytes"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
)

// Command is embedded by every command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// Fs and LookupEnv default to the OS when nil.
	Fs        afero.Fs
	LookupEnv func(string) (string, bool)
}

// NewCommand returns a Command writing to ui.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{Log: log, UI: ui}
}

// FlagSet wraps a flag.FlagSet so commands can render their flags in help.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. Parse errors are returned instead of printed.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(&bytes.Buffer{})
	return &FlagSet{FlagSet: f}
}

// Help renders the flags for a command's Help output.
func (f *FlagSet) Help() string {
	var b strings.Builder
	count := 0
	f.VisitAll(func(fl *flag.Flag) {
		count++
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if name, _ := flag.UnquoteUsage(fl); name != "" {
			fmt.Fprintf(&b, "=<%s>", name)
		}
		fmt.Fprintf(&b, "\n      %s", fl.Usage)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, " Default: %s.", fl.DefValue)
		}
		b.WriteString("\n")
	})
	if count == 0 {
		return ""
	}
	return "\n\nOptions:\n" + b.String()
}
