package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// AddItemParams describes an item minted by the content flow
type AddItemParams struct {
	TokenID     uint64
	Title       string
	Author      string
	MetadataURI string
}

// AddItem records an item so proposals can reference it. Re-adding a token
// updates its metadata but keeps its winner flag.
type AddItem struct {
	items ItemStore
	clock Clock
}

// NewAddItem creates a new AddItem use case
func NewAddItem(items ItemStore, clock Clock) *AddItem {
	return &AddItem{items: items, clock: clock}
}

// Run validates and stores the item
func (uc *AddItem) Run(ctx context.Context, params AddItemParams) (*models.Item, error) {
	if !common.IsHexAddress(params.Author) {
		return nil, domain.ValidationError{Field: "author", Reason: fmt.Sprintf("%q is not an address", params.Author)}
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	item := &models.Item{
		TokenID:     params.TokenID,
		Title:       strings.TrimSpace(params.Title),
		Author:      strings.ToLower(params.Author),
		MetadataURI: params.MetadataURI,
		CreatedAt:   uc.clock(),
	}
	if existing, err := uc.items.GetItem(ctx, params.TokenID); err == nil {
		item.IsWeeklyWinner = existing.IsWeeklyWinner
		item.CreatedAt = existing.CreatedAt
	}

	if err := uc.items.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item %d: %w", params.TokenID, err)
	}
	return item, nil
}
