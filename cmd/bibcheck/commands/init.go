package commands

import (
	"fmt"

	"git.home.luguber.info/inful/bibcheck/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

// Run executes the init command.
func (cmd *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, cmd.Force); err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", root.Config)
	return nil
}
