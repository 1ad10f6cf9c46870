// Package model defines data structures for event and ticket metadata used by
// the SDK: metadata documents stored in IPFS, the records assembled from them,
// on-chain views (members, categories) and the records delivered for contract
// logs. These structs mirror the JSON documents referenced by token URIs and
// the tuples returned by the facets.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
)

// Well-known MetadataRecord keys set by the resolver.
const (
	KeyEventID        = "eventId"
	KeyCID            = "cid"
	KeyID             = "id"
	KeyTicketsCount   = "ticketsCount"
	KeySaleStartDate  = "saleStartDate"
	KeySaleEndDate    = "saleEndDate"
	KeyTicketPrice    = "ticketPrice"
	KeySellingEnabled = "sellingEnabled"
)

// MetadataRecord is a fetched JSON document plus the on-chain fields merged
// into it. It is created fresh on every resolution and never shared.
type MetadataRecord map[string]any

// ParseMetadataRecord decodes body as a single JSON object. Numbers are kept
// as json.Number so large values survive. Anything after the object other than
// whitespace is an error.
func ParseMetadataRecord(body []byte) (MetadataRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rec MetadataRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode metadata document: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("decode metadata document: not a JSON object")
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode metadata document: trailing data after JSON object")
	}
	return rec, nil
}

// EventID returns the merged identifier, or nil when absent.
func (r MetadataRecord) EventID() *big.Int {
	return bigValue(r[KeyEventID])
}

// ID returns the category identifier, or nil when absent.
func (r MetadataRecord) ID() *big.Int {
	return bigValue(r[KeyID])
}

// CID returns the content locator the record was fetched from.
func (r MetadataRecord) CID() string {
	s, _ := r[KeyCID].(string)
	return s
}

// Name returns the document name field.
func (r MetadataRecord) Name() string {
	s, _ := r["name"].(string)
	return s
}

// Decode converts the record into a typed document such as EventMetadata.
func (r MetadataRecord) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode metadata record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode metadata record: %w", err)
	}
	return nil
}

func bigValue(v any) *big.Int {
	switch t := v.(type) {
	case *big.Int:
		return t
	case json.Number:
		n, ok := new(big.Int).SetString(t.String(), 10)
		if !ok {
			return nil
		}
		return n
	case float64:
		n, _ := big.NewFloat(t).Int(nil)
		return n
	case int:
		return big.NewInt(int64(t))
	case int64:
		return big.NewInt(t)
	case uint64:
		return new(big.Int).SetUint64(t)
	case string:
		n, ok := new(big.Int).SetString(t, 0)
		if !ok {
			return nil
		}
		return n
	default:
		return nil
	}
}

// EventMetadata is the JSON document an event token URI points to.
type EventMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Properties  EventProperties `json:"properties"`
}

// EventProperties holds the descriptive attributes of an event.
type EventProperties struct {
	WebsiteURL           string        `json:"websiteUrl,omitempty"`
	Date                 DateRange     `json:"date"`
	Location             EventLocation `json:"location"`
	TicketTypes          []string      `json:"ticketTypes,omitempty"`
	MaxTicketsPerAccount int           `json:"maxTicketsPerAccount,omitempty"`
	Contacts             string        `json:"contacts,omitempty"`
	Status               string        `json:"status,omitempty"`
	Tags                 []string      `json:"tags,omitempty"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type EventLocation struct {
	Country     string      `json:"country"`
	City        string      `json:"city"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}

type Coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// CategoryMetadata is the JSON document a ticket category CID points to.
type CategoryMetadata struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Properties  CategoryProperties `json:"properties"`
}

type CategoryProperties struct {
	TicketTypesCount struct {
		Type   string `json:"type"`
		Places int    `json:"places"`
	} `json:"ticketTypesCount"`
	Design struct {
		Color string `json:"color"`
	} `json:"design"`
}

// TicketMetadata is the JSON document a ticket token URI points to.
type TicketMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// EventParams are the on-chain parameters of a new event.
type EventParams struct {
	MaxTicketPerClient *big.Int `abi:"maxTicketPerClient"`
	StartDate          *big.Int `abi:"startDate"` // unix seconds
	EndDate            *big.Int `abi:"endDate"`   // unix seconds
}

// DownPayment configures partial payment for a category.
type DownPayment struct {
	Price           *big.Int `abi:"price"`
	FinalAmountDate *big.Int `abi:"finalAmountDate"`
}

// CategoryContractData are the on-chain parameters of a ticket category.
type CategoryContractData struct {
	SaleStartDate         *big.Int    `abi:"saleStartDate"`
	SaleEndDate           *big.Int    `abi:"saleEndDate"`
	TicketsCount          *big.Int    `abi:"ticketsCount"`
	TicketPrice           *big.Int    `abi:"ticketPrice"`
	DiscountsTicketsCount []*big.Int  `abi:"discountsTicketsCount"`
	DiscountsPercentage   []*big.Int  `abi:"discountsPercentage"`
	DownPayment           DownPayment `abi:"downPayment"`
}

// Category is the on-chain view of a ticket category.
type Category struct {
	ID             *big.Int `abi:"id"`
	CID            string   `abi:"cid"`
	SaleStartDate  *big.Int `abi:"saleStartDate"`
	SaleEndDate    *big.Int `abi:"saleEndDate"`
	TicketsCount   *big.Int `abi:"ticketsCount"`
	TicketPrice    *big.Int `abi:"ticketPrice"`
	SellingEnabled bool     `abi:"sellingEnabled"`
}

// Member is one event team member and its role hash.
type Member struct {
	Account common.Address `abi:"account" json:"account"`
	Role    [32]byte       `abi:"role" json:"role"`
}

// PriceData is one (amount, unit price) line of a ticket purchase.
type PriceData struct {
	Amount *big.Int `abi:"amount"`
	Price  *big.Int `abi:"price"`
}

// Place is a seat reservation.
type Place struct {
	Row  *big.Int `abi:"row"`
	Seat *big.Int `abi:"seat"`
}

// RefundData is a refund deadline and the share refunded before it.
type RefundData struct {
	Date       *big.Int `abi:"date"`
	Percentage *big.Int `abi:"percentage"`
}

// Total returns the sum of amount*price over items.
func Total(items []PriceData) *big.Int {
	sum := new(big.Int)
	for _, it := range items {
		if it.Amount == nil || it.Price == nil {
			continue
		}
		sum.Add(sum, new(big.Int).Mul(it.Amount, it.Price))
	}
	return sum
}

// EventsQuery is the body of the backend events search.
type EventsQuery struct {
	Title                          string     `json:"title"`
	Description                    string     `json:"description"`
	EventStartDateStartingInterval string     `json:"eventStartDateStartingInterval"`
	EventStartDateEndingInterval   string     `json:"eventStartDateEndingInterval"`
	EventEndDateStartingInterval   string     `json:"eventEndDateStartingInterval"`
	EventEndDateEndingInterval     string     `json:"eventEndDateEndingInterval"`
	Country                        string     `json:"country"`
	Place                          string     `json:"place"`
	Tags                           []string   `json:"tags"`
	Sort                           EventsSort `json:"sort"`
	Pagination                     Pagination `json:"pagination"`
}

type EventsSort struct {
	StartDate string `json:"startDate"`
	EventName string `json:"eventName"`
	Country   string `json:"country"`
	Place     string `json:"place"`
}

type Pagination struct {
	Offset string `json:"offset"`
	Limit  string `json:"limit"`
}
