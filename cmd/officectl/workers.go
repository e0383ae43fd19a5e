package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sakhike1/officeboard/internal/service/worker"
	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
	"github.com/sakhike1/officeboard/pkg/validate"
)

type WorkerCmd struct {
	List   WorkerListCmd   `cmd:"" default:"withargs" help:"List the workers of an office."`
	Add    WorkerAddCmd    `cmd:"" help:"Add a worker to an office."`
	Update WorkerUpdateCmd `cmd:"" help:"Change a worker's name, position and email."`
	Remove WorkerRemoveCmd `cmd:"" help:"Remove a worker."`
}

type WorkerListCmd struct {
	Office string `arg:"" help:"Office id."`
	Search string `short:"s" help:"Case-insensitive filter on name, position or email."`
}

func (c *WorkerListCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	workers, err := client.ListWorkers(ctx, token, c.Office)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tEMAIL")
	for _, w := range workers {
		if !worker.Matches(c.Search, w.Name, w.Position, w.Email) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", w.ID, w.Name, w.Position, w.Email)
	}
	return tw.Flush()
}

type WorkerFields struct {
	Name     string `help:"Full name." required:""`
	Position string `help:"Job title." required:""`
	Email    string `help:"Email address." required:""`
}

func (f WorkerFields) input() apiclient.WorkerInput {
	return apiclient.WorkerInput{Name: f.Name, Position: f.Position, Email: f.Email}
}

func (f WorkerFields) check() error {
	if !validate.Email(f.Email) {
		return errors.New("please enter a valid email address")
	}
	return nil
}

type WorkerAddCmd struct {
	Office string `arg:"" help:"Office id."`
	WorkerFields `embed:""`
}

func (c *WorkerAddCmd) Validate() error { return c.check() }

func (c *WorkerAddCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	w, err := client.CreateWorker(ctx, token, c.Office, c.input())
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "worker added: %s (%s)\n", w.ID, w.Name)
	return nil
}

type WorkerUpdateCmd struct {
	Office string `arg:"" help:"Office id."`
	ID     string `arg:"" help:"Worker id."`
	WorkerFields `embed:""`
}

func (c *WorkerUpdateCmd) Validate() error { return c.check() }

func (c *WorkerUpdateCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	w, err := client.UpdateWorker(ctx, token, c.Office, c.ID, c.input())
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "worker updated: %s (%s)\n", w.ID, w.Name)
	return nil
}

type WorkerRemoveCmd struct {
	Office string `arg:"" help:"Office id."`
	ID     string `arg:"" help:"Worker id."`
}

func (c *WorkerRemoveCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	if err := client.DeleteWorker(ctx, token, c.Office, c.ID); err != nil {
		return err
	}
	fmt.Fprintln(g.out(), "worker removed")
	return nil
}

// confirm asks a yes/no question on stderr and reads the answer from stdin.
func confirm(question string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
