package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/idev/internal/app/getvalue"
)

type GetValueCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	domain string
	key    string
	format string
}

// NewGetValueCommand returns the get-value command.
func NewGetValueCommand(rootCmd *RootCommand, app *kingpin.Application) *GetValueCommand {
	c := &GetValueCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("get-value", "Read a lockdown value from a device.")
	c.Cmd.Arg("key", "Value key, the whole domain when not set.").StringVar(&c.key)
	c.Cmd.Flag("domain", "Lockdown domain, the global domain when not set.").Short('d').StringVar(&c.domain)
	c.Cmd.Flag("format", "Output format (table, json, plist).").Default(formatTable).EnumVar(&c.format, formats...)

	return c
}

func (c GetValueCommand) Name() string { return c.Cmd.FullCommand() }

func (c GetValueCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	lib, err := newLibrary(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeRepository(repo, logger)

	svc, err := getvalue.NewService(getvalue.ServiceConfig{
		Library:    lib,
		Repository: repo,
		Metrics:    c.rootCmd.Metrics,
		Label:      c.rootCmd.Label,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, getvalue.Request{
		UDID:   c.rootCmd.UDID,
		Domain: c.domain,
		Key:    c.key,
	})
	if err != nil {
		return err
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintValue(res.Value); err != nil {
		return fmt.Errorf("could not print value: %w", err)
	}

	return nil
}
