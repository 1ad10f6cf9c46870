package listener

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/shamank/ets-sdk-go/internal/testutil/evmfake"
	"github.com/shamank/ets-sdk-go/pkg/blockchain"
	"github.com/shamank/ets-sdk-go/pkg/metadata"
	"github.com/shamank/ets-sdk-go/pkg/model"
	"github.com/shamank/ets-sdk-go/pkg/storage"
)

var (
	eventsAddr  = common.HexToAddress("0x7a3c19e2f6b0d4c1a5e8f9b2d3c4e5f6a7b8c9d0")
	ticketsAddr = common.HexToAddress("0x1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e")

	alice = common.HexToAddress("0x0000000000000000000000000000000000000aaa")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000bbb")
)

const wait = 2 * time.Second

type docFetcher struct {
	get func(url string) (*storage.Response, error)
}

func (f docFetcher) Get(_ context.Context, url string) (*storage.Response, error) { return f.get(url) }

func (docFetcher) Post(context.Context, string, any) (*storage.Response, error) {
	return nil, errors.New("unexpected POST")
}

func jsonDoc(body string) docFetcher {
	return docFetcher{get: func(string) (*storage.Response, error) {
		return &storage.Response{StatusCode: 200, Body: []byte(body)}, nil
	}}
}

type harness struct {
	fake *evmfake.Backend
	reg  *Registry
	errs chan error
}

func newHarness(t *testing.T, fetcher storage.Fetcher) *harness {
	t.Helper()
	fake := evmfake.New(43113)
	evm := blockchain.NewEVMClient(fake, big.NewInt(43113), eventsAddr, ticketsAddr)
	resolver := metadata.NewResolver(fetcher, storage.Gateway{Base: "http://gateway/"})
	errs := make(chan error, 8)
	reg := NewRegistry(resolver, SourcesFromClient(evm), WithErrors(errs))
	t.Cleanup(reg.Close)
	return &harness{fake: fake, reg: reg, errs: errs}
}

func mustABI(t *testing.T, name string) abi.ABI {
	t.Helper()
	a, err := blockchain.ParsedABI(name)
	if err != nil {
		t.Fatalf("ParsedABI(%s): %v", name, err)
	}
	return a
}

func (h *harness) emit(t *testing.T, facet string, addr common.Address, name string, args ...any) {
	t.Helper()
	h.fake.Emit(evmfake.MustLog(mustABI(t, facet), addr, name, args...))
}

func (h *harness) handlerError(t *testing.T) *HandlerError {
	t.Helper()
	select {
	case err := <-h.errs:
		var he *HandlerError
		if !errors.As(err, &he) {
			t.Fatalf("expected *HandlerError, got %T: %v", err, err)
		}
		return he
	case <-time.After(wait):
		t.Fatal("timed out waiting for handler error")
		return nil
	}
}

func (h *harness) noErrors(t *testing.T) {
	t.Helper()
	select {
	case err := <-h.errs:
		t.Fatalf("unexpected handler error: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(wait):
		t.Fatal("timed out waiting for callback")
		var zero T
		return zero
	}
}

func TestListenForRoleGrant_DeliversOnce(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	got := make(chan model.RoleChanged, 4)
	err := h.reg.ListenForRoleGrant(context.Background(), func(_ context.Context, rec model.RoleChanged) error {
		got <- rec
		return nil
	})
	if err != nil {
		t.Fatalf("ListenForRoleGrant: %v", err)
	}

	role := [32]byte(blockchain.ModeratorRole)
	h.emit(t, blockchain.EventFacetName, eventsAddr, "RoleGranted", big.NewInt(42), role, alice, bob)

	rec := receive(t, got)
	if rec.EventID.Int64() != 42 || rec.Role != role || rec.Account != alice || rec.Sender != bob {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Raw.Address != eventsAddr {
		t.Fatalf("raw log address = %s", rec.Raw.Address.Hex())
	}
	select {
	case extra := <-got:
		t.Fatalf("callback ran twice: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
	h.noErrors(t)
}

func TestListenForRoleRevoke_IgnoresGrant(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	var calls atomic.Int32
	if err := h.reg.ListenForRoleRevoke(context.Background(), func(context.Context, model.RoleChanged) error {
		calls.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("ListenForRoleRevoke: %v", err)
	}

	h.emit(t, blockchain.EventFacetName, eventsAddr, "RoleGranted", big.NewInt(1), [32]byte{}, alice, bob)
	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("revoke callback ran %d times for a grant", n)
	}
}

func TestListenForNewEvent_Enriches(t *testing.T) {
	var fetched []string
	var mu sync.Mutex
	fetcher := docFetcher{get: func(url string) (*storage.Response, error) {
		mu.Lock()
		fetched = append(fetched, url)
		mu.Unlock()
		return &storage.Response{StatusCode: 200, Body: []byte(`{"name":"Launch party"}`)}, nil
	}}
	h := newHarness(t, fetcher)
	members := []model.Member{{Account: alice, Role: blockchain.AdminRole}, {Account: bob, Role: blockchain.CashierRole}}
	h.fake.OnCall(eventsAddr, mustABI(t, blockchain.EventFacetName), "getEventMembers", func(_ common.Address, args []any) ([]any, error) {
		if args[0].(*big.Int).Int64() != 9 {
			t.Errorf("members read for event %v", args[0])
		}
		return []any{members}, nil
	})

	type delivery struct {
		rec     model.EventCreated
		members []model.Member
	}
	got := make(chan delivery, 1)
	err := h.reg.ListenForNewEvent(context.Background(), func(_ context.Context, rec model.EventCreated, m []model.Member) error {
		got <- delivery{rec, m}
		return nil
	})
	if err != nil {
		t.Fatalf("ListenForNewEvent: %v", err)
	}

	h.emit(t, blockchain.EventFacetName, eventsAddr, "EventCreated", big.NewInt(9), "ipfs://QmLaunch")

	d := receive(t, got)
	if d.rec.EventID.Int64() != 9 || d.rec.MetadataURI != "ipfs://QmLaunch" {
		t.Fatalf("unexpected record: %+v", d.rec)
	}
	if d.rec.EventMetadata["name"] != "Launch party" {
		t.Fatalf("metadata = %v", d.rec.EventMetadata)
	}
	if len(d.members) != 2 || d.members[1].Account != bob || d.members[1].Role != blockchain.CashierRole {
		t.Fatalf("members = %+v", d.members)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(fetched) != 1 || fetched[0] != "http://gateway/QmLaunch" {
		t.Fatalf("fetched %v", fetched)
	}
}

func TestListenForNewEvent_FetchFailureSkipsCallback(t *testing.T) {
	fetcher := docFetcher{get: func(string) (*storage.Response, error) {
		return &storage.Response{StatusCode: 404}, nil
	}}
	h := newHarness(t, fetcher)
	var calls atomic.Int32
	if err := h.reg.ListenForNewEvent(context.Background(), func(context.Context, model.EventCreated, []model.Member) error {
		calls.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("ListenForNewEvent: %v", err)
	}

	h.emit(t, blockchain.EventFacetName, eventsAddr, "EventCreated", big.NewInt(3), "ipfs://QmGone")

	he := h.handlerError(t)
	if he.Topic != "EventCreated" || he.Stage != StageEnrich {
		t.Fatalf("unexpected handler error: %v", he)
	}
	var fe *metadata.FetchError
	if !errors.As(he, &fe) || fe.StatusCode != 404 {
		t.Fatalf("expected 404 fetch error, got %v", he.Err)
	}
	if calls.Load() != 0 {
		t.Fatal("callback ran although enrichment failed")
	}
}

func TestListenForNewEvent_MembersFailureSkipsCallback(t *testing.T) {
	h := newHarness(t, jsonDoc(`{"name":"x"}`))
	h.fake.OnCall(eventsAddr, mustABI(t, blockchain.EventFacetName), "getEventMembers", func(common.Address, []any) ([]any, error) {
		return nil, errors.New("execution reverted")
	})
	var calls atomic.Int32
	if err := h.reg.ListenForNewEvent(context.Background(), func(context.Context, model.EventCreated, []model.Member) error {
		calls.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("ListenForNewEvent: %v", err)
	}

	h.emit(t, blockchain.EventFacetName, eventsAddr, "EventCreated", big.NewInt(3), "ipfs://QmX")

	he := h.handlerError(t)
	if he.Stage != StageEnrich || !strings.Contains(he.Error(), "execution reverted") {
		t.Fatalf("unexpected handler error: %v", he)
	}
	if calls.Load() != 0 {
		t.Fatal("callback ran although the members read failed")
	}
}

func TestListenForEventUpdate_Resolves(t *testing.T) {
	h := newHarness(t, jsonDoc(`{"name":"Renamed"}`))
	h.fake.OnCall(eventsAddr, mustABI(t, blockchain.EventFacetName), "tokenURI", func(_ common.Address, args []any) ([]any, error) {
		return []any{"ipfs://Qm" + args[0].(*big.Int).String()}, nil
	})
	got := make(chan model.EventUpdated, 1)
	if err := h.reg.ListenForEventUpdate(context.Background(), func(_ context.Context, rec model.EventUpdated) error {
		got <- rec
		return nil
	}); err != nil {
		t.Fatalf("ListenForEventUpdate: %v", err)
	}

	h.emit(t, blockchain.EventFacetName, eventsAddr, "MetadataUpdate", big.NewInt(5))

	rec := receive(t, got)
	if rec.EventID.Int64() != 5 {
		t.Fatalf("event id = %v", rec.EventID)
	}
	if rec.EventMetadata["name"] != "Renamed" || rec.EventMetadata[model.KeyCID] != "ipfs://Qm5" {
		t.Fatalf("metadata = %v", rec.EventMetadata)
	}
	if id, ok := rec.EventMetadata[model.KeyEventID].(*big.Int); !ok || id.Int64() != 5 {
		t.Fatalf("eventId = %v", rec.EventMetadata[model.KeyEventID])
	}
}

func TestListenForEventUpdate_ResolutionFailure(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	h.fake.OnCall(eventsAddr, mustABI(t, blockchain.EventFacetName), "tokenURI", func(common.Address, []any) ([]any, error) {
		return nil, errors.New("execution reverted: Event does not exist")
	})
	if err := h.reg.ListenForEventUpdate(context.Background(), func(context.Context, model.EventUpdated) error {
		t.Error("callback ran although resolution failed")
		return nil
	}); err != nil {
		t.Fatalf("ListenForEventUpdate: %v", err)
	}

	h.emit(t, blockchain.EventFacetName, eventsAddr, "MetadataUpdate", big.NewInt(77))

	he := h.handlerError(t)
	var re *metadata.ResolutionError
	if he.Stage != StageEnrich || !errors.As(he, &re) || re.ID.Int64() != 77 {
		t.Fatalf("unexpected handler error: %v", he)
	}
}

func TestCallbackErrorIsReported(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	want := errors.New("database unavailable")
	if err := h.reg.ListenForBoughtTicket(context.Background(), func(context.Context, model.TicketBought) error {
		return want
	}); err != nil {
		t.Fatalf("ListenForBoughtTicket: %v", err)
	}

	h.emit(t, blockchain.EventTicketControllerFacetName, eventsAddr, "TicketBought", big.NewInt(11), alice)

	he := h.handlerError(t)
	if he.Topic != "TicketBought" || he.Stage != StageCallback || !errors.Is(he, want) {
		t.Fatalf("unexpected handler error: %v", he)
	}
	if he.Log.BlockNumber != 100 {
		t.Fatalf("log block = %d", he.Log.BlockNumber)
	}
}

func TestCallbackPanicIsReportedAndRegistrationSurvives(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	var calls atomic.Int32
	got := make(chan model.TicketLock, 1)
	if err := h.reg.ListenForLockedTicket(context.Background(), func(_ context.Context, rec model.TicketLock) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		got <- rec
		return nil
	}); err != nil {
		t.Fatalf("ListenForLockedTicket: %v", err)
	}

	h.emit(t, blockchain.TicketFacetName, ticketsAddr, "Locked", big.NewInt(1))
	he := h.handlerError(t)
	if he.Stage != StageCallback || !strings.Contains(he.Error(), "panic: boom") {
		t.Fatalf("unexpected handler error: %v", he)
	}

	h.emit(t, blockchain.TicketFacetName, ticketsAddr, "Locked", big.NewInt(2))
	if rec := receive(t, got); rec.TicketContractID.Int64() != 2 {
		t.Fatalf("ticket = %v", rec.TicketContractID)
	}
}

func TestUndecodableLogIsReported(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	if err := h.reg.ListenForNewEvent(context.Background(), func(context.Context, model.EventCreated, []model.Member) error {
		t.Error("callback ran for an undecodable log")
		return nil
	}); err != nil {
		t.Fatalf("ListenForNewEvent: %v", err)
	}

	ev := mustABI(t, blockchain.EventFacetName).Events["EventCreated"]
	h.fake.Emit(types.Log{Address: eventsAddr, Topics: []common.Hash{ev.ID}, Data: []byte{0x01}})

	if he := h.handlerError(t); he.Stage != StageDecode {
		t.Fatalf("unexpected handler error: %v", he)
	}
}

func TestTransportErrorEndsRegistration(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	if err := h.reg.ListenForTicketTransfer(context.Background(), func(context.Context, model.TicketTransfer) error {
		return nil
	}); err != nil {
		t.Fatalf("ListenForTicketTransfer: %v", err)
	}

	want := errors.New("websocket closed")
	h.fake.FailSubscriptions(want)

	he := h.handlerError(t)
	if he.Topic != "Transfer" || he.Stage != StageSubscription || !errors.Is(he, want) {
		t.Fatalf("unexpected handler error: %v", he)
	}
	if got := he.Error(); got != "Transfer subscription: websocket closed" {
		t.Fatalf("message = %q", got)
	}
}

func TestTopicRecords(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	ctx := context.Background()

	transfers := make(chan model.TicketTransfer, 1)
	approvals := make(chan model.TicketApprovalForAll, 1)
	invites := make(chan model.InvitationSent, 1)
	refunds := make(chan model.Refund, 1)
	sells := make(chan model.CategorySellChanged, 1)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	must(h.reg.ListenForTicketTransfer(ctx, func(_ context.Context, r model.TicketTransfer) error { transfers <- r; return nil }))
	must(h.reg.ListenForTicketApprovalForAll(ctx, func(_ context.Context, r model.TicketApprovalForAll) error { approvals <- r; return nil }))
	must(h.reg.ListenForNewTicketInvitation(ctx, func(_ context.Context, r model.InvitationSent) error { invites <- r; return nil }))
	must(h.reg.ListenForRefund(ctx, func(_ context.Context, r model.Refund) error { refunds <- r; return nil }))
	must(h.reg.ListenForCategorySellChanged(ctx, func(_ context.Context, r model.CategorySellChanged) error { sells <- r; return nil }))

	h.emit(t, blockchain.TicketFacetName, ticketsAddr, "Transfer", alice, bob, big.NewInt(8))
	h.emit(t, blockchain.TicketFacetName, ticketsAddr, "ApprovalForAll", alice, bob, true)
	h.emit(t, blockchain.EventTicketControllerFacetName, eventsAddr, "InvitationSent", big.NewInt(4), []common.Address{alice, bob}, bob)
	h.emit(t, blockchain.EventFacetName, eventsAddr, "Refund", alice, big.NewInt(12))
	h.emit(t, blockchain.EventFacetName, eventsAddr, "CategorySellChanged", big.NewInt(4), big.NewInt(2), true)

	if r := receive(t, transfers); r.From != alice || r.To != bob || r.TicketContractID.Int64() != 8 {
		t.Fatalf("transfer = %+v", r)
	}
	if r := receive(t, approvals); r.Owner != alice || r.Operator != bob || !r.Approved {
		t.Fatalf("approval = %+v", r)
	}
	if r := receive(t, invites); r.EventID.Int64() != 4 || len(r.Accounts) != 2 || r.Accounts[0] != alice || r.Account != bob {
		t.Fatalf("invitation = %+v", r)
	}
	if r := receive(t, refunds); r.Account != alice || r.TicketContractID.Int64() != 12 {
		t.Fatalf("refund = %+v", r)
	}
	if r := receive(t, sells); r.EventID.Int64() != 4 || r.CategoryID.Int64() != 2 || !r.Value {
		t.Fatalf("sell changed = %+v", r)
	}
	h.noErrors(t)
}

func TestListenTopic(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	got := make(chan any, 1)
	if err := h.reg.ListenTopic(context.Background(), "TicketsBooked", func(_ context.Context, rec any) error {
		got <- rec
		return nil
	}); err != nil {
		t.Fatalf("ListenTopic: %v", err)
	}

	h.emit(t, blockchain.EventTicketControllerFacetName, eventsAddr, "TicketsBooked", big.NewInt(6), big.NewInt(3), alice)

	rec, ok := receive(t, got).(model.TicketsBooked)
	if !ok || rec.EventID.Int64() != 6 || rec.TicketCount.Int64() != 3 || rec.Account != alice {
		t.Fatalf("record = %#v", rec)
	}

	if err := h.reg.ListenTopic(context.Background(), "Nope", func(context.Context, any) error { return nil }); err == nil {
		t.Fatal("expected error for unknown topic")
	}
}

func TestTopicsCoverEveryABIEvent(t *testing.T) {
	topics := Topics()
	if len(topics) != 30 {
		t.Fatalf("got %d topics", len(topics))
	}
	for _, facet := range []string{blockchain.EventFacetName, blockchain.EventTicketControllerFacetName, blockchain.TicketFacetName} {
		for name := range mustABI(t, facet).Events {
			if !IsTopic(name) {
				t.Fatalf("%s event %s has no topic", facet, name)
			}
		}
	}
}

func TestRegistrationErrors(t *testing.T) {
	reg := NewRegistry(nil, Sources{})
	defer reg.Close()

	if err := reg.ListenForBoughtTicket(context.Background(), func(context.Context, model.TicketBought) error { return nil }); err == nil {
		t.Fatal("expected error without a controller source")
	}
	if err := reg.ListenForNewEvent(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
	h := newHarness(t, jsonDoc(`{}`))
	if err := h.reg.ListenForRoleGrant(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestClose(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	for range 3 {
		if err := h.reg.ListenForTicketApproval(context.Background(), func(context.Context, model.TicketApproval) error { return nil }); err != nil {
			t.Fatalf("ListenForTicketApproval: %v", err)
		}
	}
	if n := h.fake.Subscriptions(); n != 3 {
		t.Fatalf("live subscriptions = %d", n)
	}

	h.reg.Close()
	h.reg.Close()

	deadline := time.Now().Add(wait)
	for h.fake.Subscriptions() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriptions still live: %d", h.fake.Subscriptions())
		}
		time.Sleep(5 * time.Millisecond)
	}
	err := h.reg.ListenForTicketApproval(context.Background(), func(context.Context, model.TicketApproval) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestContextCancelEndsRegistration(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	ctx, cancel := context.WithCancel(context.Background())
	if err := h.reg.ListenForEventWithdraw(ctx, func(context.Context, model.EventWithdraw) error { return nil }); err != nil {
		t.Fatalf("ListenForEventWithdraw: %v", err)
	}
	cancel()

	deadline := time.Now().Add(wait)
	for h.fake.Subscriptions() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription outlived its context")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStopFromCallback(t *testing.T) {
	h := newHarness(t, jsonDoc(`{}`))
	done := make(chan struct{})
	err := h.reg.ListenForRoleGrant(context.Background(), func(context.Context, model.RoleChanged) error {
		h.reg.Stop()
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("ListenForRoleGrant: %v", err)
	}

	h.emit(t, blockchain.EventFacetName, eventsAddr, "RoleGranted", big.NewInt(1), [32]byte(blockchain.ModeratorRole), alice, bob)
	select {
	case <-done:
	case <-time.After(wait):
		t.Fatal("Stop called from a callback did not return")
	}

	closed := make(chan struct{})
	go func() {
		h.reg.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(wait):
		t.Fatal("Close after Stop did not return")
	}
	if err := h.reg.ListenForRoleGrant(context.Background(), func(context.Context, model.RoleChanged) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSourcesFromClientWithoutFacets(t *testing.T) {
	reg := NewRegistry(nil, SourcesFromClient(&blockchain.EVMClient{}))
	cb := func(context.Context, model.TicketBought) error { return nil }
	if err := reg.ListenForBoughtTicket(context.Background(), cb); err == nil {
		t.Fatal("expected error without a controller facet")
	}

	var typedNil *blockchain.TicketFacet
	reg2 := NewRegistry(nil, Sources{Tickets: typedNil})
	if err := reg2.ListenForTicketTransfer(context.Background(), func(context.Context, model.TicketTransfer) error { return nil }); err == nil {
		t.Fatal("expected error for a nil tickets facet")
	}

	closed := make(chan struct{})
	go func() {
		reg.Close()
		reg2.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(wait):
		t.Fatal("Close hung after a failed registration")
	}
}

// manualSource hands its sink to the test and fails on demand.
type manualSource struct {
	sinks chan chan<- *blockchain.DecodedLog
	fail  chan error
}

func (s *manualSource) SubscribeEvent(_ context.Context, _ string, sink chan<- *blockchain.DecodedLog) (event.Subscription, error) {
	s.sinks <- sink
	return event.NewSubscription(func(quit <-chan struct{}) error {
		select {
		case err := <-s.fail:
			return err
		case <-quit:
			return nil
		}
	}), nil
}

func TestTransportErrorDeliversQueuedLogs(t *testing.T) {
	src := &manualSource{sinks: make(chan chan<- *blockchain.DecodedLog, 1), fail: make(chan error)}
	errs := make(chan error, 4)
	reg := NewRegistry(nil, Sources{Tickets: src}, WithErrors(errs))
	defer reg.Close()

	release := make(chan struct{})
	got := make(chan *big.Int, 4)
	err := reg.ListenForTicketTransfer(context.Background(), func(_ context.Context, rec model.TicketTransfer) error {
		if rec.TicketContractID.Int64() == 1 {
			<-release
		}
		got <- rec.TicketContractID
		return nil
	})
	if err != nil {
		t.Fatalf("ListenForTicketTransfer: %v", err)
	}

	tickets := blockchain.NewFacet(blockchain.TicketFacetName, ticketsAddr, mustABI(t, blockchain.TicketFacetName), nil)
	sink := <-src.sinks
	for id := int64(1); id <= 3; id++ {
		d, err := tickets.DecodeLog(evmfake.MustLog(mustABI(t, blockchain.TicketFacetName), ticketsAddr, "Transfer", alice, bob, big.NewInt(id)))
		if err != nil {
			t.Fatalf("DecodeLog: %v", err)
		}
		sink <- d
	}

	want := errors.New("websocket closed")
	src.fail <- want
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case err := <-errs:
		var he *HandlerError
		if !errors.As(err, &he) || he.Stage != StageSubscription || !errors.Is(he, want) {
			t.Fatalf("unexpected handler error: %v", err)
		}
	case <-time.After(wait):
		t.Fatal("timed out waiting for the transport error")
	}
	if len(got) != 3 {
		t.Fatalf("delivered %d of 3 queued logs before the transport error", len(got))
	}
	for id := int64(1); id <= 3; id++ {
		if v := <-got; v.Int64() != id {
			t.Fatalf("delivery %d carried token %s", id, v)
		}
	}
}
