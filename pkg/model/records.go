package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Records delivered by the listener registry, one type per contract log.
// Raw carries the originating log.

// EventCreated is delivered for a new event after its metadata was fetched.
type EventCreated struct {
	EventID       *big.Int       `json:"eventId"`
	MetadataURI   string         `json:"metadataUri"`
	EventMetadata MetadataRecord `json:"eventMetadata"`
	Raw           types.Log      `json:"-"`
}

// EventUpdated is delivered for MetadataUpdate after the event was re-resolved.
type EventUpdated struct {
	EventID       *big.Int       `json:"eventId"`
	EventMetadata MetadataRecord `json:"eventMetadata"`
	Raw           types.Log      `json:"-"`
}

// RoleChanged is delivered for RoleGranted and RoleRevoked.
type RoleChanged struct {
	EventID *big.Int       `json:"eventId"`
	Role    [32]byte       `json:"role"`
	Account common.Address `json:"account"`
	Sender  common.Address `json:"sender"`
	Raw     types.Log      `json:"-"`
}

type TicketBought struct {
	TicketContractID *big.Int       `json:"ticketContractId"`
	Account          common.Address `json:"account"`
	Raw              types.Log      `json:"-"`
}

type TicketRefunded struct {
	EventID          *big.Int       `json:"eventId"`
	CategoryID       *big.Int       `json:"categoryId"`
	TicketContractID *big.Int       `json:"ticketContractId"`
	Account          common.Address `json:"account"`
	Raw              types.Log      `json:"-"`
}

// TicketLock is delivered for Locked and Unlocked.
type TicketLock struct {
	TicketContractID *big.Int  `json:"ticketContractId"`
	Raw              types.Log `json:"-"`
}

type TicketTransfer struct {
	From             common.Address `json:"from"`
	To               common.Address `json:"to"`
	TicketContractID *big.Int       `json:"ticketContractId"`
	Raw              types.Log      `json:"-"`
}

type TicketApproval struct {
	Owner            common.Address `json:"owner"`
	Approved         common.Address `json:"approved"`
	TicketContractID *big.Int       `json:"ticketContractId"`
	Raw              types.Log      `json:"-"`
}

type TicketApprovalForAll struct {
	Owner    common.Address `json:"owner"`
	Operator common.Address `json:"operator"`
	Approved bool           `json:"approved"`
	Raw      types.Log      `json:"-"`
}

type TicketConsecutiveTransfer struct {
	FromTokenID *big.Int       `json:"fromTokenId"`
	ToTokenID   *big.Int       `json:"toTokenId"`
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	Raw         types.Log      `json:"-"`
}

type TicketConsumed struct {
	Consumer         common.Address `json:"consumer"`
	TicketContractID *big.Int       `json:"ticketContractId"`
	Amount           *big.Int       `json:"amount"`
	Data             []byte         `json:"data"`
	Raw              types.Log      `json:"-"`
}

type BatchMetadataUpdate struct {
	FromTokenID *big.Int  `json:"_fromTokenId"`
	ToTokenID   *big.Int  `json:"_toTokenId"`
	Raw         types.Log `json:"-"`
}

type Refund struct {
	Account          common.Address `json:"account"`
	TicketContractID *big.Int       `json:"ticketContractId"`
	Raw              types.Log      `json:"-"`
}

type EventCashierSet struct {
	EventID *big.Int       `json:"eventId"`
	Account common.Address `json:"account"`
	Setter  common.Address `json:"setter"`
	Raw     types.Log      `json:"-"`
}

type CategoryCreated struct {
	EventID     *big.Int  `json:"eventId"`
	CategoryID  *big.Int  `json:"categoryId"`
	CategoryCID string    `json:"categoryCid"`
	Raw         types.Log `json:"-"`
}

// CategoryChanged is delivered for CategoryUpdated and CategoryDeleted.
type CategoryChanged struct {
	EventID    *big.Int  `json:"eventId"`
	CategoryID *big.Int  `json:"categoryId"`
	Raw        types.Log `json:"-"`
}

// CategoryTickets is delivered for CategoryTicketsAdded and CategoryTicketsRemoved.
type CategoryTickets struct {
	EventID      *big.Int  `json:"eventId"`
	CategoryID   *big.Int  `json:"categoryId"`
	TicketsCount *big.Int  `json:"ticketsCount"`
	Raw          types.Log `json:"-"`
}

type CategorySellChanged struct {
	EventID    *big.Int  `json:"eventId"`
	CategoryID *big.Int  `json:"categoryId"`
	Value      bool      `json:"value"`
	Raw        types.Log `json:"-"`
}

type AllCategorySellChanged struct {
	EventID *big.Int  `json:"eventId"`
	Value   bool      `json:"value"`
	Raw     types.Log `json:"-"`
}

type CategorySaleDatesUpdated struct {
	EventID     *big.Int       `json:"eventId"`
	CategoryID  *big.Int       `json:"categoryId"`
	StaffMember common.Address `json:"staffMember"`
	Raw         types.Log      `json:"-"`
}

type EventRefundDateAdded struct {
	EventID    *big.Int  `json:"eventId"`
	Date       *big.Int  `json:"date"`
	Percentage *big.Int  `json:"percentage"`
	Raw        types.Log `json:"-"`
}

type RefundWithdraw struct {
	TicketContractID *big.Int       `json:"ticketContractId"`
	Account          common.Address `json:"account"`
	Raw              types.Log      `json:"-"`
}

type EventWithdraw struct {
	EventID *big.Int  `json:"eventId"`
	Raw     types.Log `json:"-"`
}

type TicketClipped struct {
	EventID          *big.Int       `json:"eventId"`
	TicketContractID *big.Int       `json:"ticketContractId"`
	Account          common.Address `json:"account"`
	Raw              types.Log      `json:"-"`
}

type TicketsBooked struct {
	EventID     *big.Int       `json:"eventId"`
	TicketCount *big.Int       `json:"ticketCount"`
	Account     common.Address `json:"account"`
	Raw         types.Log      `json:"-"`
}

type InvitationSent struct {
	EventID  *big.Int         `json:"eventId"`
	Accounts []common.Address `json:"accounts"`
	Account  common.Address   `json:"account"`
	Raw      types.Log        `json:"-"`
}
