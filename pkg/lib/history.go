package lib

import (
	"context"
	"fmt"

	"github.com/slok/idev/internal/app/history"
	"github.com/slok/idev/internal/model"
)

// History returns the journaled operations, newest first.
// Pass nil opts to get every operation.
func (c *Client) History(ctx context.Context, opts *HistoryOpts) ([]Operation, error) {
	svc, err := history.NewService(history.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := history.Request{}
	if opts != nil {
		req = history.Request{UDID: opts.UDID, Kind: model.OperationKind(opts.Kind), Limit: opts.Limit}
	}

	ops, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalOperations(ops), nil
}
