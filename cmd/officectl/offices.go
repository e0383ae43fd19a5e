package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
	"github.com/sakhike1/officeboard/pkg/validate"
)

type OfficeCmd struct {
	List   OfficeListCmd   `cmd:"" default:"1" help:"List offices, newest first."`
	Show   OfficeShowCmd   `cmd:"" help:"Show one office with its headcount."`
	Create OfficeCreateCmd `cmd:"" help:"Create an office."`
	Delete OfficeDeleteCmd `cmd:"" help:"Delete an office and all of its workers."`
}

type OfficeListCmd struct{}

func (c *OfficeListCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	offices, err := client.ListOffices(ctx, token)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tCAPACITY\tEMAIL")
	for _, o := range offices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.Name, o.Location, o.Capacity, o.Email)
	}
	return tw.Flush()
}

type OfficeShowCmd struct {
	ID string `arg:"" help:"Office id."`
}

func (c *OfficeShowCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	office, err := client.GetOffice(ctx, token, c.ID)
	if err != nil {
		return err
	}
	count, err := client.CountWorkers(ctx, token, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "%s (%s)\n%s\ncontact: %s %s\nworkers: %d / %d\n",
		office.Name, office.ID, office.Location, office.Email, office.Phone, count, office.Capacity)
	return nil
}

type OfficeCreateCmd struct {
	Name     string `help:"Office name." required:""`
	Location string `help:"Street address or city." required:""`
	Capacity int    `help:"Number of seats." required:""`
	Email    string `help:"Contact email." required:""`
	Phone    string `help:"Contact phone."`
	Color    string `help:"Hex color, e.g. #3B82F6."`
}

// Validate runs before Run; an invalid email never reaches the API.
func (c *OfficeCreateCmd) Validate() error {
	if !validate.Email(c.Email) {
		return errors.New("please enter a valid email address")
	}
	if c.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	return nil
}

func (c *OfficeCreateCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	office, err := client.CreateOffice(ctx, token, apiclient.OfficeInput{
		Name:     c.Name,
		Location: c.Location,
		Capacity: c.Capacity,
		Color:    c.Color,
		Email:    c.Email,
		Phone:    c.Phone,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "office created: %s (%s)\n", office.ID, office.Name)
	return nil
}

type OfficeDeleteCmd struct {
	ID  string `arg:"" help:"Office id."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *OfficeDeleteCmd) Run(ctx context.Context, g *Globals) error {
	if !c.Yes {
		ok, err := confirm(fmt.Sprintf("Delete office %s and all of its workers?", c.ID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(g.out(), "aborted")
			return nil
		}
	}
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	if err := client.DeleteOffice(ctx, token, c.ID); err != nil {
		return err
	}
	fmt.Fprintln(g.out(), "office deleted")
	return nil
}

type SummaryCmd struct{}

func (c *SummaryCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	summary, err := client.DashboardSummary(ctx, token)
	if err != nil {
		return err
	}
	return printSummary(g, summary)
}

func printSummary(g *Globals, summary apiclient.Summary) error {
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFICE\tWORKERS\tCAPACITY\tOCCUPANCY")
	for _, o := range summary.Offices {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\n", o.Office.Name, o.WorkerCount, o.Office.Capacity, o.Occupancy)
	}
	fmt.Fprintf(tw, "TOTAL (%d offices)\t%d\t%d\t%d%%\n",
		summary.TotalOffices, summary.TotalWorkers, summary.TotalCapacity, summary.OccupancyRate)
	return tw.Flush()
}
