package sdk

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/ets-sdk-go/pkg/blockchain"
	"github.com/shamank/ets-sdk-go/pkg/model"
	"github.com/shamank/ets-sdk-go/pkg/storage"
	"go.uber.org/zap"
)

// uploadDocument validates doc, stores image as the document's image when
// given, then stores the document. It returns the document locator.
func (c *Core) uploadDocument(ctx context.Context, kind string, doc any, image []byte, setImage func(string), validate func(any) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.Upload)
	defer cancel()

	if err := validate(doc); err != nil {
		return "", err
	}
	if len(image) > 0 {
		uri, err := c.storage.Upload(ctx, image)
		if err != nil {
			return "", fmt.Errorf("failed to upload %s image to IPFS: %w", kind, err)
		}
		setImage(uri)
	}
	uri, err := c.storage.UploadJSON(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s metadata to IPFS: %w", kind, err)
	}
	zap.L().Debug("uploaded metadata", zap.String("kind", kind), zap.String("uri", uri))
	return uri, nil
}

func (c *Core) uploadEvent(ctx context.Context, doc model.EventMetadata, image []byte) (string, error) {
	return c.uploadDocument(ctx, "event", &doc, image, func(uri string) { doc.Image = uri }, model.ValidateEventMetadata)
}

// CreateEvent uploads image and the event document to IPFS and populates a
// createEvent call pointing at the document.
func (c *Core) CreateEvent(ctx context.Context, doc model.EventMetadata, image []byte, params model.EventParams) (*blockchain.UnsignedTx, error) {
	uri, err := c.uploadEvent(ctx, doc, image)
	if err != nil {
		return nil, err
	}
	return c.evm.Events.CreateEvent(params, uri)
}

// UpdateEvent uploads a new event document and populates updateEventTokenUri.
func (c *Core) UpdateEvent(ctx context.Context, eventID *big.Int, doc model.EventMetadata, image []byte) (*blockchain.UnsignedTx, error) {
	uri, err := c.uploadEvent(ctx, doc, image)
	if err != nil {
		return nil, err
	}
	return c.evm.Events.UpdateEvent(eventID, uri)
}

func (c *Core) RemoveEvent(eventID *big.Int) (*blockchain.UnsignedTx, error) {
	return c.evm.Events.RemoveEvent(eventID)
}

// AddTeamMember grants role to account. role is a role name such as
// "MODERATOR_ROLE" or a 0x-prefixed role hash.
func (c *Core) AddTeamMember(eventID *big.Int, role string, account common.Address) (*blockchain.UnsignedTx, error) {
	r, err := blockchain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return c.evm.Events.AddTeamMember(eventID, r, account)
}

// RemoveTeamMember revokes role from account.
func (c *Core) RemoveTeamMember(eventID *big.Int, role string, account common.Address) (*blockchain.UnsignedTx, error) {
	r, err := blockchain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return c.evm.Events.RemoveTeamMember(eventID, r, account)
}

func (c *Core) SetEventCashier(eventID *big.Int, cashier common.Address) (*blockchain.UnsignedTx, error) {
	return c.evm.Events.SetEventCashier(eventID, cashier)
}

// FetchEvents resolves the metadata of eventIDs in order under the configured
// batch policy.
func (c *Core) FetchEvents(ctx context.Context, eventIDs []*big.Int) ([]model.MetadataRecord, error) {
	return c.resolver.ResolveMany(ctx, eventIDs, c.evm.Events)
}

// FetchEvent resolves the metadata of one event.
func (c *Core) FetchEvent(ctx context.Context, eventID *big.Int) (model.MetadataRecord, error) {
	return c.resolver.ResolveOne(ctx, eventID, c.evm.Events)
}

// FetchOwnedEvents resolves every event owned by owner.
func (c *Core) FetchOwnedEvents(ctx context.Context, owner common.Address) ([]model.MetadataRecord, error) {
	ids, err := c.readEvents(ctx, func(ctx context.Context) ([]*big.Int, error) {
		return c.evm.Events.FetchOwnedEvents(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return c.FetchEvents(ctx, ids)
}

// FetchAllEventIds lists every event identifier.
func (c *Core) FetchAllEventIds(ctx context.Context) ([]*big.Int, error) {
	return c.readEvents(ctx, c.evm.Events.FetchAllEventIds)
}

func (c *Core) readEvents(ctx context.Context, read func(context.Context) ([]*big.Int, error)) ([]*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	return read(ctx)
}

func (c *Core) GetEventMembers(ctx context.Context, eventID *big.Int) ([]model.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	return c.evm.Events.GetEventMembers(ctx, eventID)
}

// GetEventIpfsURI returns the content locator stored for eventID.
func (c *Core) GetEventIpfsURI(ctx context.Context, eventID *big.Int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	return c.evm.Events.TokenURI(ctx, eventID)
}

// CreateGatewayURL rewrites an ipfs:// locator to the configured gateway.
func (c *Core) CreateGatewayURL(uri string) string {
	return c.resolver.Gateway().Rewrite(uri)
}

// ReadFromIpfs returns the raw content uri points to. filecoin:// locators are
// read through the Lighthouse gateway, anything else through the IPFS node.
func (c *Core) ReadFromIpfs(ctx context.Context, uri string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.Fetch)
	defer cancel()
	return c.storage.ReadFile(ctx, uri)
}

// DeleteFromIpfs unpins the content uri points to.
func (c *Core) DeleteFromIpfs(ctx context.Context, uri string) error {
	return c.storage.Delete(ctx, uri)
}

// FetchCountriesFromServer lists the countries known to the backend.
func (c *Core) FetchCountriesFromServer(ctx context.Context) (*storage.Response, error) {
	return c.backend.FetchCountries(ctx)
}

// FetchPlacesFromServer lists the places known to the backend for country.
func (c *Core) FetchPlacesFromServer(ctx context.Context, country string) (*storage.Response, error) {
	return c.backend.FetchPlaces(ctx, country)
}

// FetchAllEventsFromServer runs an events search on the backend.
func (c *Core) FetchAllEventsFromServer(ctx context.Context, query model.EventsQuery) (*storage.Response, error) {
	return c.backend.FetchAllEvents(ctx, query)
}
