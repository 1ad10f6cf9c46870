// Package model defines the data structures exchanged by the Event Ticketing SDK.
//
// # Metadata Records
//
// MetadataRecord is the JSON document referenced by an event or category
// token URI, decoded as a generic object, plus the fields the resolver merges
// in after fetching:
//
//	eventId  the identifier the record was resolved for
//	cid      the content locator (ipfs://...) returned by the contract
//
// Category records additionally carry id, ticketsCount, saleStartDate,
// saleEndDate, ticketPrice and sellingEnabled copied from the chain.
//
// Records are decoded with number preservation, so identifiers larger than
// 2^53 survive. Use Decode to obtain a typed document:
//
//	var ev model.EventMetadata
//	if err := rec.Decode(&ev); err != nil {
//		return err
//	}
//
// # Validation
//
// ValidateEventMetadata and ValidateCategoryMetadata check documents against
// embedded JSON Schemas before they are uploaded to IPFS.
//
// # Log Records
//
// Every contract log topic handled by the listener registry has a record type
// in records.go. Field names follow the JSON keys consumers already rely on
// (eventId, ticketContractId, account, ...). Several topics share a type, for
// example RoleGranted and RoleRevoked both deliver RoleChanged.
//
// # On-chain Views
//
// Member, Category, CategoryContractData, PriceData and Place mirror the
// tuples accepted or returned by the facets. The abi struct tags map them to
// tuple component names.
//
// # Diamond
//
// FacetCut and Facet mirror the diamond cut and loupe structures.
package model
