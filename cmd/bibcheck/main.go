package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bibcheck/cmd/bibcheck/commands"
	"git.home.luguber.info/inful/bibcheck/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("bibcheck"),
		kong.Description("BibTeX bibliography hygiene toolkit: title casing, field checks, composition and title verification."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}))
}
