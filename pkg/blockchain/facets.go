package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/shamank/ets-sdk-go/pkg/model"
)

// EventFacet is the events diamond: event NFTs, team members and ticket
// categories.
type EventFacet struct {
	*Facet
}

// NewEventFacet binds the EventFacet ABI at the events diamond address.
func NewEventFacet(address common.Address, backend bind.ContractBackend) *EventFacet {
	return &EventFacet{NewFacet(EventFacetName, address, mustABI(EventFacetName), backend)}
}

// TokenURI returns the metadata URI recorded for an event.
func (f *EventFacet) TokenURI(ctx context.Context, eventID *big.Int) (string, error) {
	out, err := f.Call(ctx, common.Address{}, "tokenURI", eventID)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// GetEventMembers returns the team of an event with their role hashes.
func (f *EventFacet) GetEventMembers(ctx context.Context, eventID *big.Int) ([]model.Member, error) {
	out, err := f.Call(ctx, common.Address{}, "getEventMembers", eventID)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]model.Member)).(*[]model.Member), nil
}

// FetchOwnedEvents returns the ids of the events owned by owner. The contract
// reads msg.sender, so the call is made from owner.
func (f *EventFacet) FetchOwnedEvents(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	out, err := f.Call(ctx, owner, "fetchOwnedEvents")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

func (f *EventFacet) FetchAllEventIds(ctx context.Context) ([]*big.Int, error) {
	out, err := f.Call(ctx, common.Address{}, "fetchAllEventIds")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// FetchCategoriesByEventId returns the on-chain ticket categories of an event.
func (f *EventFacet) FetchCategoriesByEventId(ctx context.Context, eventID *big.Int) ([]model.Category, error) {
	out, err := f.Call(ctx, common.Address{}, "fetchCategoriesByEventId", eventID)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]model.Category)).(*[]model.Category), nil
}

func (f *EventFacet) CreateEvent(params model.EventParams, uri string) (*UnsignedTx, error) {
	return f.Populate("createEvent", params, uri)
}

func (f *EventFacet) UpdateEvent(eventID *big.Int, uri string) (*UnsignedTx, error) {
	return f.Populate("updateEventTokenUri", eventID, uri)
}

func (f *EventFacet) RemoveEvent(eventID *big.Int) (*UnsignedTx, error) {
	return f.Populate("removeEvent", eventID)
}

func (f *EventFacet) AddTeamMember(eventID *big.Int, role [32]byte, account common.Address) (*UnsignedTx, error) {
	return f.Populate("addTeamMember", eventID, role, account)
}

func (f *EventFacet) RemoveTeamMember(eventID *big.Int, role [32]byte, account common.Address) (*UnsignedTx, error) {
	return f.Populate("removeTeamMember", eventID, role, account)
}

func (f *EventFacet) SetEventCashier(eventID *big.Int, cashier common.Address) (*UnsignedTx, error) {
	return f.Populate("setEventCashier", eventID, cashier)
}

func (f *EventFacet) CreateTicketCategory(eventID *big.Int, uri string, data model.CategoryContractData) (*UnsignedTx, error) {
	return f.Populate("createTicketCategory", eventID, uri, normalizeContractData(data))
}

func (f *EventFacet) UpdateCategory(eventID, categoryID *big.Int, uri string, data model.CategoryContractData) (*UnsignedTx, error) {
	return f.Populate("updateCategory", eventID, categoryID, uri, normalizeContractData(data))
}

func (f *EventFacet) RemoveCategory(eventID, categoryID *big.Int) (*UnsignedTx, error) {
	return f.Populate("removeCategory", eventID, categoryID)
}

func (f *EventFacet) AddCategoryTicketsCount(eventID, categoryID, count *big.Int) (*UnsignedTx, error) {
	return f.Populate("addCategoryTicketsCount", eventID, categoryID, count)
}

func (f *EventFacet) RemoveCategoryTicketsCount(eventID, categoryID, count *big.Int) (*UnsignedTx, error) {
	return f.Populate("removeCategoryTicketsCount", eventID, categoryID, count)
}

func (f *EventFacet) ManageCategorySelling(eventID, categoryID *big.Int, enabled bool) (*UnsignedTx, error) {
	return f.Populate("manageCategorySelling", eventID, categoryID, enabled)
}

func (f *EventFacet) ManageAllCategorySelling(eventID *big.Int, enabled bool) (*UnsignedTx, error) {
	return f.Populate("manageAllCategorySelling", eventID, enabled)
}

// normalizeContractData replaces nil numbers with zero so optional fields
// (discounts, down payment) can be left unset by callers.
func normalizeContractData(d model.CategoryContractData) model.CategoryContractData {
	d.SaleStartDate = orZero(d.SaleStartDate)
	d.SaleEndDate = orZero(d.SaleEndDate)
	d.TicketsCount = orZero(d.TicketsCount)
	d.TicketPrice = orZero(d.TicketPrice)
	d.DownPayment.Price = orZero(d.DownPayment.Price)
	d.DownPayment.FinalAmountDate = orZero(d.DownPayment.FinalAmountDate)
	if d.DiscountsTicketsCount == nil {
		d.DiscountsTicketsCount = []*big.Int{}
	}
	if d.DiscountsPercentage == nil {
		d.DiscountsPercentage = []*big.Int{}
	}
	return d
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// TicketControllerFacet sells, books, clips and refunds tickets. It lives on
// the events diamond.
type TicketControllerFacet struct {
	*Facet
}

func NewTicketControllerFacet(address common.Address, backend bind.ContractBackend) *TicketControllerFacet {
	return &TicketControllerFacet{NewFacet(EventTicketControllerFacetName, address, mustABI(EventTicketControllerFacetName), backend)}
}

// BuyTicketsFromSingleEvent populates a purchase. The transaction value is the
// sum of amount*price over priceData.
func (f *TicketControllerFacet) BuyTicketsFromSingleEvent(eventID, categoryID *big.Int, priceData []model.PriceData, place []model.Place, ticketURIs []string) (*UnsignedTx, error) {
	tx, err := f.Populate("buyTicketsFromSingleEvent", eventID, categoryID, priceData, place, ticketURIs)
	if err != nil {
		return nil, err
	}
	tx.Value = model.Total(priceData)
	return tx, nil
}

func (f *TicketControllerFacet) ClipTicket(eventID, ticketID *big.Int) (*UnsignedTx, error) {
	return f.Populate("clipTicket", eventID, ticketID)
}

func (f *TicketControllerFacet) BookTickets(eventID, categoryID *big.Int, place []model.Place) (*UnsignedTx, error) {
	return f.Populate("bookTickets", eventID, categoryID, place)
}

func (f *TicketControllerFacet) SendInvitation(eventID *big.Int, ticketURIs []string, accounts []common.Address) (*UnsignedTx, error) {
	return f.Populate("sendInvitation", eventID, ticketURIs, accounts)
}

func (f *TicketControllerFacet) RefundTicket(eventID, categoryID, ticketID *big.Int) (*UnsignedTx, error) {
	return f.Populate("refundTicket", eventID, categoryID, ticketID)
}

func (f *TicketControllerFacet) WithdrawRefund(eventID, ticketID *big.Int) (*UnsignedTx, error) {
	return f.Populate("withdrawRefund", eventID, ticketID)
}

func (f *TicketControllerFacet) AddRefundDeadline(eventID *big.Int, refund model.RefundData) (*UnsignedTx, error) {
	return f.Populate("addRefundDeadline", eventID, refund)
}

// TicketFacet is the tickets diamond (ERC-721 tickets).
type TicketFacet struct {
	*Facet
}

func NewTicketFacet(address common.Address, backend bind.ContractBackend) *TicketFacet {
	return &TicketFacet{NewFacet(TicketFacetName, address, mustABI(TicketFacetName), backend)}
}

func (f *TicketFacet) TokenURI(ctx context.Context, ticketID *big.Int) (string, error) {
	out, err := f.Call(ctx, common.Address{}, "tokenURI", ticketID)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (f *TicketFacet) OwnerOf(ctx context.Context, ticketID *big.Int) (common.Address, error) {
	out, err := f.Call(ctx, common.Address{}, "ownerOf", ticketID)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// Locked reports whether a ticket is soulbound.
func (f *TicketFacet) Locked(ctx context.Context, ticketID *big.Int) (bool, error) {
	out, err := f.Call(ctx, common.Address{}, "locked", ticketID)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (f *TicketFacet) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := f.Call(ctx, common.Address{}, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// DiamondFacet combines the loupe and cut facets of one diamond.
type DiamondFacet struct {
	Loupe *Facet
	Cut   *Facet
}

func NewDiamondFacet(address common.Address, backend bind.ContractBackend) *DiamondFacet {
	return &DiamondFacet{
		Loupe: NewFacet(DiamondLoupeFacetName, address, mustABI(DiamondLoupeFacetName), backend),
		Cut:   NewFacet(DiamondCutFacetName, address, mustABI(DiamondCutFacetName), backend),
	}
}

// Facets lists the facets currently registered on the diamond.
func (d *DiamondFacet) Facets(ctx context.Context) ([]model.Facet, error) {
	out, err := d.Loupe.Call(ctx, common.Address{}, "facets")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]model.Facet)).(*[]model.Facet), nil
}

func (d *DiamondFacet) FacetAddresses(ctx context.Context) ([]common.Address, error) {
	out, err := d.Loupe.Call(ctx, common.Address{}, "facetAddresses")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// PopulateDiamondCut packs a diamondCut call. init may be the zero address when
// calldata is empty.
func (d *DiamondFacet) PopulateDiamondCut(cuts []model.FacetCut, init common.Address, calldata []byte) (*UnsignedTx, error) {
	if calldata == nil {
		calldata = []byte{}
	}
	return d.Cut.Populate("diamondCut", cuts, init, calldata)
}
