package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/idev/internal/app/startservice"
	"github.com/slok/idev/internal/printer"
)

type ServiceStartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	identifier string
	format     string
}

// NewServiceStartCommand returns the service start command.
func NewServiceStartCommand(rootCmd *RootCommand, serviceCmd *kingpin.CmdClause) *ServiceStartCommand {
	c := &ServiceStartCommand{rootCmd: rootCmd}

	c.Cmd = serviceCmd.Command("start", "Start a lockdown service and print its port.")
	c.Cmd.Arg("identifier", "Service identifier (e.g. com.apple.afc).").Required().StringVar(&c.identifier)
	c.Cmd.Flag("format", "Output format (table, json, plist).").Default(formatTable).EnumVar(&c.format, formats...)

	return c
}

func (c ServiceStartCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServiceStartCommand) Run(ctx context.Context) error {
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

	svc, err := startservice.NewService(startservice.ServiceConfig{
		Library:    lib,
		Repository: repo,
		Metrics:    c.rootCmd.Metrics,
		Label:      c.rootCmd.Label,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, startservice.Request{
		UDID:       c.rootCmd.UDID,
		Identifier: c.identifier,
	})
	if err != nil {
		return err
	}

	err = newPrinter(c.format, c.rootCmd.Stdout).PrintService(printer.Service{
		UDID:       res.UDID,
		Identifier: res.Identifier,
		Port:       res.Port,
		SSLEnabled: res.SSLEnabled,
	})
	if err != nil {
		return fmt.Errorf("could not print service: %w", err)
	}

	return nil
}
