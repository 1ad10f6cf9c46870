package blockchain

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/shamank/ets-sdk-go/internal/testutil/evmfake"
	"github.com/shamank/ets-sdk-go/pkg/model"
)

var (
	eventsAddr  = common.HexToAddress("0x540Be9Ac3b0e13C4bC7D2B3E1D5Ab0B1E8C5F2a1")
	ticketsAddr = common.HexToAddress("0x028A8D90a0f2bA8e5eE4F0A1E0b1b1Fb0c7A3d11")
)

func newTestClient(t *testing.T) (*EVMClient, *evmfake.Backend) {
	t.Helper()
	fake := evmfake.New(43113)
	return NewEVMClient(fake, big.NewInt(43113), eventsAddr, ticketsAddr), fake
}

func selector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

func TestEmbeddedABIsParse(t *testing.T) {
	for _, name := range []string{
		EventFacetName,
		EventTicketControllerFacetName,
		TicketFacetName,
		DiamondLoupeFacetName,
		DiamondCutFacetName,
	} {
		a, err := ParsedABI(name)
		if err != nil {
			t.Fatalf("ParsedABI(%s): %v", name, err)
		}
		if len(a.Methods) == 0 {
			t.Fatalf("%s has no methods", name)
		}
	}
	if _, err := ParsedABI("Nope"); err == nil {
		t.Fatal("expected error for unknown abi")
	}
}

func TestEventFacet_TokenURI(t *testing.T) {
	evm, fake := newTestClient(t)
	fake.OnCall(eventsAddr, mustABI(EventFacetName), "tokenURI", func(_ common.Address, args []any) ([]any, error) {
		return []any{"ipfs://Qm" + args[0].(*big.Int).String()}, nil
	})

	got, err := evm.Events.TokenURI(context.Background(), big.NewInt(7))
	if err != nil {
		t.Fatalf("TokenURI: %v", err)
	}
	if got != "ipfs://Qm7" {
		t.Fatalf("TokenURI = %q", got)
	}
}

func TestEventFacet_CallErrorPropagates(t *testing.T) {
	evm, fake := newTestClient(t)
	want := errors.New("execution reverted: Event does not exist")
	fake.OnCall(eventsAddr, mustABI(EventFacetName), "tokenURI", func(common.Address, []any) ([]any, error) {
		return nil, want
	})

	_, err := evm.Events.TokenURI(context.Background(), big.NewInt(1))
	if err == nil || err.Error() != want.Error() {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

func TestEventFacet_GetEventMembers(t *testing.T) {
	evm, fake := newTestClient(t)
	members := []model.Member{
		{Account: common.HexToAddress("0x01"), Role: AdminRole},
		{Account: common.HexToAddress("0x02"), Role: CashierRole},
	}
	fake.OnCall(eventsAddr, mustABI(EventFacetName), "getEventMembers", func(common.Address, []any) ([]any, error) {
		return []any{members}, nil
	})

	got, err := evm.Events.GetEventMembers(context.Background(), big.NewInt(1))
	if err != nil {
		t.Fatalf("GetEventMembers: %v", err)
	}
	if len(got) != 2 || got[1].Account != members[1].Account || got[1].Role != CashierRole {
		t.Fatalf("unexpected members: %+v", got)
	}
}

func TestEventFacet_FetchOwnedEventsCallsAsOwner(t *testing.T) {
	evm, fake := newTestClient(t)
	owner := common.HexToAddress("0x16514b719274484b06d56459f97139b333bd8130")
	fake.OnCall(eventsAddr, mustABI(EventFacetName), "fetchOwnedEvents", func(from common.Address, _ []any) ([]any, error) {
		if from != owner {
			return nil, errors.New("wrong sender")
		}
		return []any{[]*big.Int{big.NewInt(1), big.NewInt(4)}}, nil
	})

	ids, err := evm.Events.FetchOwnedEvents(context.Background(), owner)
	if err != nil {
		t.Fatalf("FetchOwnedEvents: %v", err)
	}
	if len(ids) != 2 || ids[1].Int64() != 4 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestEventFacet_FetchCategoriesByEventId(t *testing.T) {
	evm, fake := newTestClient(t)
	cats := []model.Category{{
		ID:             big.NewInt(2),
		CID:            "ipfs://QmCategory",
		SaleStartDate:  big.NewInt(1666601372),
		SaleEndDate:    big.NewInt(1666601572),
		TicketsCount:   big.NewInt(50),
		TicketPrice:    big.NewInt(10),
		SellingEnabled: true,
	}}
	fake.OnCall(eventsAddr, mustABI(EventFacetName), "fetchCategoriesByEventId", func(common.Address, []any) ([]any, error) {
		return []any{cats}, nil
	})

	got, err := evm.Events.FetchCategoriesByEventId(context.Background(), big.NewInt(1))
	if err != nil {
		t.Fatalf("FetchCategoriesByEventId: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 category, got %d", len(got))
	}
	c := got[0]
	if c.ID.Int64() != 2 || c.CID != "ipfs://QmCategory" || c.TicketsCount.Int64() != 50 || !c.SellingEnabled {
		t.Fatalf("unexpected category: %+v", c)
	}
}

func TestEventFacet_CreateEventPopulates(t *testing.T) {
	evm, _ := newTestClient(t)
	params := model.EventParams{
		MaxTicketPerClient: big.NewInt(10),
		StartDate:          big.NewInt(1666601372),
		EndDate:            big.NewInt(1666666666),
	}

	tx, err := evm.Events.CreateEvent(params, "ipfs://QmEvent")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if tx.To != eventsAddr {
		t.Fatalf("tx.To = %s", tx.To.Hex())
	}
	if !bytes.Equal(tx.Data[:4], selector("createEvent((uint256,uint256,uint256),string)")) {
		t.Fatalf("unexpected selector %x", tx.Data[:4])
	}
	args, err := mustABI(EventFacetName).Methods["createEvent"].Inputs.Unpack(tx.Data[4:])
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if args[1].(string) != "ipfs://QmEvent" {
		t.Fatalf("unexpected uri arg: %v", args[1])
	}
	if tx.Value != nil {
		t.Fatalf("createEvent must carry no value, got %s", tx.Value)
	}
}

func TestEventFacet_CreateTicketCategoryAcceptsUnsetOptionals(t *testing.T) {
	evm, _ := newTestClient(t)
	data := model.CategoryContractData{
		SaleStartDate: big.NewInt(1666601372),
		SaleEndDate:   big.NewInt(1666601572),
		TicketsCount:  big.NewInt(50),
		TicketPrice:   big.NewInt(10),
	}

	tx, err := evm.Events.CreateTicketCategory(big.NewInt(1), "ipfs://QmCat", data)
	if err != nil {
		t.Fatalf("CreateTicketCategory: %v", err)
	}
	want := selector("createTicketCategory(uint256,string,(uint256,uint256,uint256,uint256,uint256[],uint256[],(uint256,uint256)))")
	if !bytes.Equal(tx.Data[:4], want) {
		t.Fatalf("unexpected selector %x", tx.Data[:4])
	}
}

func TestTicketController_BuyTicketsValueIsTotal(t *testing.T) {
	evm, _ := newTestClient(t)
	priceData := []model.PriceData{
		{Amount: big.NewInt(2), Price: big.NewInt(10)},
		{Amount: big.NewInt(1), Price: big.NewInt(5)},
	}
	place := []model.Place{{Row: big.NewInt(1), Seat: big.NewInt(1)}, {Row: big.NewInt(1), Seat: big.NewInt(2)}}

	tx, err := evm.Controller.BuyTicketsFromSingleEvent(big.NewInt(1), big.NewInt(2), priceData, place, []string{"ipfs://a", "ipfs://b"})
	if err != nil {
		t.Fatalf("BuyTicketsFromSingleEvent: %v", err)
	}
	if tx.Value == nil || tx.Value.Int64() != 25 {
		t.Fatalf("tx.Value = %v, want 25", tx.Value)
	}
	if tx.To != eventsAddr {
		t.Fatalf("controller must target the events diamond, got %s", tx.To.Hex())
	}
}

func TestDiamondFacet_FacetsAndCut(t *testing.T) {
	evm, fake := newTestClient(t)
	facets := []model.Facet{
		{FacetAddress: common.HexToAddress("0xaa"), FunctionSelectors: [][4]byte{{1, 2, 3, 4}}},
		{FacetAddress: common.HexToAddress("0xbb"), FunctionSelectors: [][4]byte{{5, 6, 7, 8}, {9, 9, 9, 9}}},
	}
	fake.OnCall(eventsAddr, mustABI(DiamondLoupeFacetName), "facets", func(common.Address, []any) ([]any, error) {
		return []any{facets}, nil
	})

	got, err := evm.Diamond.Facets(context.Background())
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}
	if len(got) != 2 || got[1].FacetAddress != facets[1].FacetAddress || len(got[1].FunctionSelectors) != 2 {
		t.Fatalf("unexpected facets: %+v", got)
	}

	cuts := []model.FacetCut{{
		FacetAddress:      common.HexToAddress("0xcc"),
		Action:            uint8(model.FacetCutAdd),
		FunctionSelectors: [][4]byte{{0xde, 0xad, 0xbe, 0xef}},
	}}
	tx, err := evm.Diamond.PopulateDiamondCut(cuts, common.Address{}, nil)
	if err != nil {
		t.Fatalf("PopulateDiamondCut: %v", err)
	}
	if !bytes.Equal(tx.Data[:4], selector("diamondCut((address,uint8,bytes4[])[],address,bytes)")) {
		t.Fatalf("unexpected selector %x", tx.Data[:4])
	}
}

func TestFacet_SubscribeEventDecodesInAbiOrder(t *testing.T) {
	evm, fake := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := make(chan *DecodedLog, 1)
	sub, err := evm.Events.SubscribeEvent(ctx, "RoleGranted", sink)
	if err != nil {
		t.Fatalf("SubscribeEvent: %v", err)
	}
	defer sub.Unsubscribe()

	account := common.HexToAddress("0x0000000000000000000000000000000000000a11")
	sender := common.HexToAddress("0x0000000000000000000000000000000000000b22")
	fake.Emit(evmfake.MustLog(mustABI(EventFacetName), eventsAddr, "RoleGranted",
		big.NewInt(3), [32]byte(ModeratorRole), account, sender))

	select {
	case got := <-sink:
		if got.Err != nil {
			t.Fatalf("unexpected decode error: %v", got.Err)
		}
		if got.Name != "RoleGranted" || len(got.Args) != 4 {
			t.Fatalf("unexpected log: %+v", got)
		}
		if got.Args[0].(*big.Int).Int64() != 3 {
			t.Fatalf("eventId = %v", got.Args[0])
		}
		if got.Args[1].([32]byte) != ModeratorRole {
			t.Fatalf("role = %x", got.Args[1])
		}
		if got.Args[2].(common.Address) != account || got.Args[3].(common.Address) != sender {
			t.Fatalf("addresses = %v %v", got.Args[2], got.Args[3])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for log")
	}
}

func TestFacet_SubscribeEventReportsUndecodableLog(t *testing.T) {
	evm, fake := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := make(chan *DecodedLog, 1)
	sub, err := evm.Events.SubscribeEvent(ctx, "EventCreated", sink)
	if err != nil {
		t.Fatalf("SubscribeEvent: %v", err)
	}
	defer sub.Unsubscribe()

	ev := mustABI(EventFacetName).Events["EventCreated"]
	fake.Emit(types.Log{Address: eventsAddr, Topics: []common.Hash{ev.ID}, Data: []byte{0x01}})

	select {
	case got := <-sink:
		if got.Err == nil {
			t.Fatal("expected decode error")
		}
		if got.Name != "EventCreated" {
			t.Fatalf("unexpected name %q", got.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for log")
	}
}

func TestFacet_SubscribeEventTransportError(t *testing.T) {
	evm, fake := newTestClient(t)
	sink := make(chan *DecodedLog)
	sub, err := evm.Tickets.SubscribeEvent(context.Background(), "Transfer", sink)
	if err != nil {
		t.Fatalf("SubscribeEvent: %v", err)
	}
	defer sub.Unsubscribe()

	want := errors.New("websocket closed")
	fake.FailSubscriptions(want)

	select {
	case err := <-sub.Err():
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription error")
	}
}

func TestFacet_SubscribeUnknownEvent(t *testing.T) {
	evm, _ := newTestClient(t)
	if _, err := evm.Events.SubscribeEvent(context.Background(), "Nope", make(chan *DecodedLog)); err == nil {
		t.Fatal("expected error for unknown event")
	}
}

func TestFacet_DecodeLog(t *testing.T) {
	evm, _ := newTestClient(t)
	lg := evmfake.MustLog(mustABI(TicketFacetName), ticketsAddr, "ApprovalForAll",
		common.HexToAddress("0x01"), common.HexToAddress("0x02"), true)

	got, err := evm.Tickets.DecodeLog(lg)
	if err != nil {
		t.Fatalf("DecodeLog: %v", err)
	}
	if got.Name != "ApprovalForAll" || got.Args[2] != true {
		t.Fatalf("unexpected decoded log: %+v", got)
	}

	if _, err := evm.Tickets.DecodeLog(types.Log{}); err == nil {
		t.Fatal("expected error for log without topics")
	}
	if _, err := evm.Tickets.DecodeLog(types.Log{Topics: []common.Hash{{0x01}}}); err == nil {
		t.Fatal("expected error for unknown topic")
	}
}
