package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/idev/internal/app/history"
	"github.com/slok/idev/internal/model"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	kind   string
	limit  int
	format string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "List the journaled device operations, newest first.")
	c.Cmd.Flag("kind", "Filter by operation kind.").EnumVar(&c.kind,
		string(model.OperationKindGetValue),
		string(model.OperationKindStartService),
		string(model.OperationKindLookupImage),
		string(model.OperationKindUploadImage),
		string(model.OperationKindMountImage),
	)
	c.Cmd.Flag("limit", "Maximum number of operations, 0 lists all of them.").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json, plist).").Default(formatTable).EnumVar(&c.format, formats...)

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeRepository(repo, logger)

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	ops, err := svc.Run(ctx, history.Request{
		UDID:  c.rootCmd.UDID,
		Kind:  model.OperationKind(c.kind),
		Limit: c.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list operations: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintOperations(ops); err != nil {
		return fmt.Errorf("could not print operations: %w", err)
	}

	return nil
}
