// Command balancectl exercises a running balance game server from the
// terminal: fetch a round, or fetch one and play it out to a champion.
package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   string           `default:"http://localhost:8080" env:"BALANCE_SERVER" help:"Base URL of the balance game server"`
	LogLevel string           `default:"info" enum:"debug,info,warn,error" help:"Log level"`

	Topics   TopicsCmd   `cmd:"" help:"List the topic catalogue"`
	Generate GenerateCmd `cmd:"" help:"Generate a round and print it as JSON"`
	Play     PlayCmd     `cmd:"" help:"Generate a round and play it out to a champion"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("balancectl"),
		kong.Description("Operator CLI for the balance game backend"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
