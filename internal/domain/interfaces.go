package domain

import "context"

// DatasetRepository stores immutable datasets for the process lifetime.
type DatasetRepository interface {
	Create(ctx context.Context, content DatasetContent) (*Dataset, error)
	Get(ctx context.Context, id string) (*Dataset, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// TableReader turns raw CSV text or a file on disk into a Table.
type TableReader interface {
	ReadText(text string) (*Table, error)
	ReadFile(path string) (*Table, error)
}
