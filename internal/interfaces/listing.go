package interfaces

import "context"

type SymbolLister interface {
	ListedSymbols(ctx context.Context, url string) ([]string, error)
}

type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string, max int) ([]string, error)
}
