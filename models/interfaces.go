package models

import "context"

type EngineClient interface {
	RunBacktest(ctx context.Context, req BacktestRequest) (*BacktestResponse, error)
}
