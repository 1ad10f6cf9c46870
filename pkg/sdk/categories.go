package sdk

import (
	"context"
	"math/big"

	"github.com/shamank/ets-sdk-go/pkg/blockchain"
	"github.com/shamank/ets-sdk-go/pkg/model"
)

func (c *Core) uploadCategory(ctx context.Context, doc model.CategoryMetadata, image []byte) (string, error) {
	return c.uploadDocument(ctx, "category", &doc, image, func(uri string) { doc.Image = uri }, model.ValidateCategoryMetadata)
}

// CreateTicketCategory uploads image and the category document and populates
// createTicketCategory. Unset optional fields of data are sent as zero.
func (c *Core) CreateTicketCategory(ctx context.Context, eventID *big.Int, doc model.CategoryMetadata, image []byte, data model.CategoryContractData) (*blockchain.UnsignedTx, error) {
	uri, err := c.uploadCategory(ctx, doc, image)
	if err != nil {
		return nil, err
	}
	return c.evm.Events.CreateTicketCategory(eventID, uri, data)
}

// UpdateCategory uploads a new category document and populates updateCategory.
func (c *Core) UpdateCategory(ctx context.Context, eventID, categoryID *big.Int, doc model.CategoryMetadata, image []byte, data model.CategoryContractData) (*blockchain.UnsignedTx, error) {
	uri, err := c.uploadCategory(ctx, doc, image)
	if err != nil {
		return nil, err
	}
	return c.evm.Events.UpdateCategory(eventID, categoryID, uri, data)
}

func (c *Core) RemoveCategory(eventID, categoryID *big.Int) (*blockchain.UnsignedTx, error) {
	return c.evm.Events.RemoveCategory(eventID, categoryID)
}

func (c *Core) AddCategoryTicketsCount(eventID, categoryID, count *big.Int) (*blockchain.UnsignedTx, error) {
	return c.evm.Events.AddCategoryTicketsCount(eventID, categoryID, count)
}

func (c *Core) RemoveCategoryTicketsCount(eventID, categoryID, count *big.Int) (*blockchain.UnsignedTx, error) {
	return c.evm.Events.RemoveCategoryTicketsCount(eventID, categoryID, count)
}

func (c *Core) ManageCategorySelling(eventID, categoryID *big.Int, enabled bool) (*blockchain.UnsignedTx, error) {
	return c.evm.Events.ManageCategorySelling(eventID, categoryID, enabled)
}

func (c *Core) ManageAllCategorySelling(eventID *big.Int, enabled bool) (*blockchain.UnsignedTx, error) {
	return c.evm.Events.ManageAllCategorySelling(eventID, enabled)
}

// FetchCategoriesByEventId resolves the documents of every category of
// eventID, merged with the on-chain category fields.
func (c *Core) FetchCategoriesByEventId(ctx context.Context, eventID *big.Int) ([]model.MetadataRecord, error) {
	return c.resolver.ResolveCategories(ctx, eventID, c.evm.Events)
}

// BuyTicketsFromSingleEvent populates a purchase paying the sum of priceData.
func (c *Core) BuyTicketsFromSingleEvent(eventID, categoryID *big.Int, priceData []model.PriceData, place []model.Place, ticketURIs []string) (*blockchain.UnsignedTx, error) {
	return c.evm.Controller.BuyTicketsFromSingleEvent(eventID, categoryID, priceData, place, ticketURIs)
}
