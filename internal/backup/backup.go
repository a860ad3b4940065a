// Package backup writes the whole inventory to a zip archive and restores it.
//
// An archive holds data.json with every room, container, sub container,
// third container, category and item, followed by one images/<name> entry per
// photo referenced by an item. Inside data.json, item photos point at those
// entries.
package backup

import (
	"context"
	"log/slog"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/photostore"
)

type roomTable interface {
	List(ctx context.Context) ([]*domain.Room, error)
	Import(ctx context.Context, room domain.Room) error
}

type containerTable interface {
	List(ctx context.Context) ([]*domain.Container, error)
	Import(ctx context.Context, c domain.Container) error
}

type subContainerTable interface {
	List(ctx context.Context) ([]*domain.SubContainer, error)
	Import(ctx context.Context, sc domain.SubContainer) error
}

type thirdContainerTable interface {
	List(ctx context.Context) ([]*domain.ThirdContainer, error)
	Import(ctx context.Context, tc domain.ThirdContainer) error
}

type categoryTable interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Import(ctx context.Context, c domain.Category) error
}

type itemTable interface {
	List(ctx context.Context) ([]*domain.Item, error)
	Insert(ctx context.Context, item domain.Item) (*domain.Item, error)
}

type Codec struct {
	rooms      roomTable
	containers containerTable
	subs       subContainerTable
	thirds     thirdContainerTable
	categories categoryTable
	items      itemTable
	photos     photostore.PhotoStore
	logger     *slog.Logger

	stamps domain.Stamper
}

func NewCodec(
	rooms roomTable,
	containers containerTable,
	subs subContainerTable,
	thirds thirdContainerTable,
	categories categoryTable,
	items itemTable,
	photos photostore.PhotoStore,
	logger *slog.Logger,
) *Codec {
	return &Codec{
		rooms:      rooms,
		containers: containers,
		subs:       subs,
		thirds:     thirds,
		categories: categories,
		items:      items,
		photos:     photos,
		logger:     logger,
	}
}

// Counts is the number of rows of each kind written or restored.
type Counts struct {
	Rooms           int `json:"rooms"`
	Containers      int `json:"containers"`
	SubContainers   int `json:"subContainers"`
	ThirdContainers int `json:"thirdContainers"`
	Categories      int `json:"categories"`
	Items           int `json:"items"`
}

type ExportReport struct {
	Counts
	Images        int `json:"images"`
	SkippedImages int `json:"skippedImages"`
}

type ImportReport struct {
	Counts
	Images        int `json:"images"`
	MissingImages int `json:"missingImages"`
	FailedRows    int `json:"failedRows"`
}
