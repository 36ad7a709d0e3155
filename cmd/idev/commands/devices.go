package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/idev/internal/app/devicelist"
)

type DevicesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewDevicesCommand returns the devices command.
func NewDevicesCommand(rootCmd *RootCommand, app *kingpin.Application) *DevicesCommand {
	c := &DevicesCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("devices", "List the attached devices.")
	c.Cmd.Flag("format", "Output format (table, json, plist).").Default(formatTable).EnumVar(&c.format, formats...)

	return c
}

func (c DevicesCommand) Name() string { return c.Cmd.FullCommand() }

func (c DevicesCommand) Run(ctx context.Context) error {
	lib, err := newLibrary(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := devicelist.NewService(devicelist.ServiceConfig{
		Library: lib,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	udids, err := svc.Run(ctx, devicelist.Request{})
	if err != nil {
		return err
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintDevices(udids); err != nil {
		return fmt.Errorf("could not print devices: %w", err)
	}

	return nil
}
