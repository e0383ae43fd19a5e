package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/sakhike1/officeboard/pkg/config"
)

var version = "dev"

// CLI is the officectl command tree.
type CLI struct {
	API         string        `help:"API base URL (overrides the stored one)." env:"OFFICEBOARD_API"`
	Credentials string        `help:"Path to the credentials file." env:"OFFICEBOARD_CREDENTIALS" type:"path"`
	Timeout     time.Duration `help:"Per-request timeout." default:"15s"`

	Signup  SignupCmd  `cmd:"" help:"Create an account and store its session."`
	Login   LoginCmd   `cmd:"" help:"Sign in and store the session."`
	Logout  LogoutCmd  `cmd:"" help:"Sign out and forget the stored session."`
	Whoami  WhoamiCmd  `cmd:"" help:"Show the signed-in user."`
	Watch   WatchCmd   `cmd:"" help:"Stream session events until interrupted."`
	Summary SummaryCmd `cmd:"" help:"Show occupancy across all offices."`
	Office  OfficeCmd  `cmd:"" help:"Manage offices."`
	Worker  WorkerCmd  `cmd:"" help:"Manage the workers of an office."`
	Version kong.VersionFlag
}

func (c CLI) globals() *Globals {
	return &Globals{API: c.API, Credentials: c.Credentials, Timeout: c.Timeout, Out: os.Stdout}
}

func kongOptions(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name("officectl"),
		kong.Description("Command line client for the officeboard API."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

func main() {
	_ = config.LoadDotEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	cmd := kong.Parse(&cli, kongOptions(ctx)...)
	err := cmd.Run(cli.globals())
	cmd.FatalIfErrorf(err)
}
