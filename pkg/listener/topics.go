package listener

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/shamank/ets-sdk-go/pkg/blockchain"
	"github.com/shamank/ets-sdk-go/pkg/model"
)

// plain lifts a builder that needs nothing but the decoded arguments.
func plain[T any](f func(a *args, d *blockchain.DecodedLog) T) builder[T] {
	return func(_ context.Context, d *blockchain.DecodedLog) (T, error) {
		a := argsOf(d)
		rec := f(a, d)
		return rec, a.err
	}
}

// newEvent pairs an EventCreated record with the team read after it.
type newEvent struct {
	rec     model.EventCreated
	members []model.Member
}

func (r *Registry) buildNewEvent(ctx context.Context, d *blockchain.DecodedLog) (newEvent, error) {
	a := argsOf(d)
	rec := model.EventCreated{EventID: a.big(0), MetadataURI: a.str(1), Raw: d.Raw}
	if a.err != nil {
		return newEvent{}, a.err
	}
	if r.resolver == nil {
		return newEvent{}, enrichError{errors.New("no metadata resolver configured")}
	}
	doc, err := r.resolver.FetchDocument(ctx, rec.MetadataURI)
	if err != nil {
		return newEvent{}, enrichError{err}
	}
	rec.EventMetadata = doc
	members, err := r.src.Events.GetEventMembers(ctx, rec.EventID)
	if err != nil {
		return newEvent{}, enrichError{fmt.Errorf("read members of event %s: %w", rec.EventID, err)}
	}
	return newEvent{rec: rec, members: members}, nil
}

func (r *Registry) buildEventUpdated(ctx context.Context, d *blockchain.DecodedLog) (model.EventUpdated, error) {
	a := argsOf(d)
	rec := model.EventUpdated{EventID: a.big(0), Raw: d.Raw}
	if a.err != nil {
		return rec, a.err
	}
	if r.resolver == nil {
		return rec, enrichError{errors.New("no metadata resolver configured")}
	}
	doc, err := r.resolver.ResolveOne(ctx, rec.EventID, r.src.Events)
	if err != nil {
		return rec, enrichError{err}
	}
	rec.EventMetadata = doc
	return rec, nil
}

func roleChanged(a *args, d *blockchain.DecodedLog) model.RoleChanged {
	return model.RoleChanged{EventID: a.big(0), Role: a.hash(1), Account: a.address(2), Sender: a.address(3), Raw: d.Raw}
}

func categoryChanged(a *args, d *blockchain.DecodedLog) model.CategoryChanged {
	return model.CategoryChanged{EventID: a.big(0), CategoryID: a.big(1), Raw: d.Raw}
}

func categoryTickets(a *args, d *blockchain.DecodedLog) model.CategoryTickets {
	return model.CategoryTickets{EventID: a.big(0), CategoryID: a.big(1), TicketsCount: a.big(2), Raw: d.Raw}
}

func ticketLock(a *args, d *blockchain.DecodedLog) model.TicketLock {
	return model.TicketLock{TicketContractID: a.big(0), Raw: d.Raw}
}

// events returns the events facet as a LogSource, nil when none is set.
func (r *Registry) events() LogSource {
	if r.src.Events == nil {
		return nil
	}
	return r.src.Events
}

// ListenForNewEvent registers cb for EventCreated. The metadata document and
// the team are read before cb runs; if either read fails cb is not called.
func (r *Registry) ListenForNewEvent(ctx context.Context, cb func(context.Context, model.EventCreated, []model.Member) error) error {
	if cb == nil {
		return errors.New("EventCreated: nil callback")
	}
	return listen(ctx, r, r.events(), "EventCreated", r.buildNewEvent, func(ctx context.Context, ev newEvent) error {
		return cb(ctx, ev.rec, ev.members)
	})
}

// ListenForEventUpdate registers cb for MetadataUpdate. The event is resolved
// again before cb runs; if resolution fails cb is not called.
func (r *Registry) ListenForEventUpdate(ctx context.Context, cb func(context.Context, model.EventUpdated) error) error {
	return listen(ctx, r, r.events(), "MetadataUpdate", r.buildEventUpdated, cb)
}

func (r *Registry) ListenForRoleGrant(ctx context.Context, cb func(context.Context, model.RoleChanged) error) error {
	return listen(ctx, r, r.events(), "RoleGranted", plain(roleChanged), cb)
}

func (r *Registry) ListenForRoleRevoke(ctx context.Context, cb func(context.Context, model.RoleChanged) error) error {
	return listen(ctx, r, r.events(), "RoleRevoked", plain(roleChanged), cb)
}

func (r *Registry) ListenForBatchMetadataUpdate(ctx context.Context, cb func(context.Context, model.BatchMetadataUpdate) error) error {
	return listen(ctx, r, r.events(), "BatchMetadataUpdate", plain(func(a *args, d *blockchain.DecodedLog) model.BatchMetadataUpdate {
		return model.BatchMetadataUpdate{FromTokenID: a.big(0), ToTokenID: a.big(1), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForRefund(ctx context.Context, cb func(context.Context, model.Refund) error) error {
	return listen(ctx, r, r.events(), "Refund", plain(func(a *args, d *blockchain.DecodedLog) model.Refund {
		return model.Refund{Account: a.address(0), TicketContractID: a.big(1), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForNewEventCashier(ctx context.Context, cb func(context.Context, model.EventCashierSet) error) error {
	return listen(ctx, r, r.events(), "EventCashierSet", plain(func(a *args, d *blockchain.DecodedLog) model.EventCashierSet {
		return model.EventCashierSet{EventID: a.big(0), Account: a.address(1), Setter: a.address(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForNewCategory(ctx context.Context, cb func(context.Context, model.CategoryCreated) error) error {
	return listen(ctx, r, r.events(), "CategoryCreated", plain(func(a *args, d *blockchain.DecodedLog) model.CategoryCreated {
		return model.CategoryCreated{EventID: a.big(0), CategoryID: a.big(1), CategoryCID: a.str(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForCategoryUpdate(ctx context.Context, cb func(context.Context, model.CategoryChanged) error) error {
	return listen(ctx, r, r.events(), "CategoryUpdated", plain(categoryChanged), cb)
}

func (r *Registry) ListenForCategoryDelete(ctx context.Context, cb func(context.Context, model.CategoryChanged) error) error {
	return listen(ctx, r, r.events(), "CategoryDeleted", plain(categoryChanged), cb)
}

func (r *Registry) ListenForCategoryTicketsAdded(ctx context.Context, cb func(context.Context, model.CategoryTickets) error) error {
	return listen(ctx, r, r.events(), "CategoryTicketsAdded", plain(categoryTickets), cb)
}

func (r *Registry) ListenForCategoryTicketsRemoved(ctx context.Context, cb func(context.Context, model.CategoryTickets) error) error {
	return listen(ctx, r, r.events(), "CategoryTicketsRemoved", plain(categoryTickets), cb)
}

func (r *Registry) ListenForCategorySellChanged(ctx context.Context, cb func(context.Context, model.CategorySellChanged) error) error {
	return listen(ctx, r, r.events(), "CategorySellChanged", plain(func(a *args, d *blockchain.DecodedLog) model.CategorySellChanged {
		return model.CategorySellChanged{EventID: a.big(0), CategoryID: a.big(1), Value: a.boolean(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForAllCategorySellChanged(ctx context.Context, cb func(context.Context, model.AllCategorySellChanged) error) error {
	return listen(ctx, r, r.events(), "AllCategorySellChanged", plain(func(a *args, d *blockchain.DecodedLog) model.AllCategorySellChanged {
		return model.AllCategorySellChanged{EventID: a.big(0), Value: a.boolean(1), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForCategorySaleDatesUpdate(ctx context.Context, cb func(context.Context, model.CategorySaleDatesUpdated) error) error {
	return listen(ctx, r, r.events(), "CategorySaleDatesUpdated", plain(func(a *args, d *blockchain.DecodedLog) model.CategorySaleDatesUpdated {
		return model.CategorySaleDatesUpdated{EventID: a.big(0), CategoryID: a.big(1), StaffMember: a.address(2), Raw: d.Raw}
	}), cb)
}

// Ticket controller topics.

func (r *Registry) ListenForBoughtTicket(ctx context.Context, cb func(context.Context, model.TicketBought) error) error {
	return listen(ctx, r, r.src.Controller, "TicketBought", plain(func(a *args, d *blockchain.DecodedLog) model.TicketBought {
		return model.TicketBought{TicketContractID: a.big(0), Account: a.address(1), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForRefundedTicket(ctx context.Context, cb func(context.Context, model.TicketRefunded) error) error {
	return listen(ctx, r, r.src.Controller, "TicketRefunded", plain(func(a *args, d *blockchain.DecodedLog) model.TicketRefunded {
		return model.TicketRefunded{EventID: a.big(0), CategoryID: a.big(1), TicketContractID: a.big(2), Account: a.address(3), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForNewEventRefundDate(ctx context.Context, cb func(context.Context, model.EventRefundDateAdded) error) error {
	return listen(ctx, r, r.src.Controller, "EventRefundDateAdded", plain(func(a *args, d *blockchain.DecodedLog) model.EventRefundDateAdded {
		return model.EventRefundDateAdded{EventID: a.big(0), Date: a.big(1), Percentage: a.big(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForRefundWithdraw(ctx context.Context, cb func(context.Context, model.RefundWithdraw) error) error {
	return listen(ctx, r, r.src.Controller, "RefundWithdraw", plain(func(a *args, d *blockchain.DecodedLog) model.RefundWithdraw {
		return model.RefundWithdraw{TicketContractID: a.big(0), Account: a.address(1), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForEventWithdraw(ctx context.Context, cb func(context.Context, model.EventWithdraw) error) error {
	return listen(ctx, r, r.src.Controller, "EventWithdraw", plain(func(a *args, d *blockchain.DecodedLog) model.EventWithdraw {
		return model.EventWithdraw{EventID: a.big(0), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForClippedTicket(ctx context.Context, cb func(context.Context, model.TicketClipped) error) error {
	return listen(ctx, r, r.src.Controller, "TicketClipped", plain(func(a *args, d *blockchain.DecodedLog) model.TicketClipped {
		return model.TicketClipped{EventID: a.big(0), TicketContractID: a.big(1), Account: a.address(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForBookedTickets(ctx context.Context, cb func(context.Context, model.TicketsBooked) error) error {
	return listen(ctx, r, r.src.Controller, "TicketsBooked", plain(func(a *args, d *blockchain.DecodedLog) model.TicketsBooked {
		return model.TicketsBooked{EventID: a.big(0), TicketCount: a.big(1), Account: a.address(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForNewTicketInvitation(ctx context.Context, cb func(context.Context, model.InvitationSent) error) error {
	return listen(ctx, r, r.src.Controller, "InvitationSent", plain(func(a *args, d *blockchain.DecodedLog) model.InvitationSent {
		return model.InvitationSent{EventID: a.big(0), Accounts: a.addresses(1), Account: a.address(2), Raw: d.Raw}
	}), cb)
}

// Ticket topics.

func (r *Registry) ListenForLockedTicket(ctx context.Context, cb func(context.Context, model.TicketLock) error) error {
	return listen(ctx, r, r.src.Tickets, "Locked", plain(ticketLock), cb)
}

func (r *Registry) ListenForUnlockedTicket(ctx context.Context, cb func(context.Context, model.TicketLock) error) error {
	return listen(ctx, r, r.src.Tickets, "Unlocked", plain(ticketLock), cb)
}

func (r *Registry) ListenForTicketTransfer(ctx context.Context, cb func(context.Context, model.TicketTransfer) error) error {
	return listen(ctx, r, r.src.Tickets, "Transfer", plain(func(a *args, d *blockchain.DecodedLog) model.TicketTransfer {
		return model.TicketTransfer{From: a.address(0), To: a.address(1), TicketContractID: a.big(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForTicketApproval(ctx context.Context, cb func(context.Context, model.TicketApproval) error) error {
	return listen(ctx, r, r.src.Tickets, "Approval", plain(func(a *args, d *blockchain.DecodedLog) model.TicketApproval {
		return model.TicketApproval{Owner: a.address(0), Approved: a.address(1), TicketContractID: a.big(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForTicketApprovalForAll(ctx context.Context, cb func(context.Context, model.TicketApprovalForAll) error) error {
	return listen(ctx, r, r.src.Tickets, "ApprovalForAll", plain(func(a *args, d *blockchain.DecodedLog) model.TicketApprovalForAll {
		return model.TicketApprovalForAll{Owner: a.address(0), Operator: a.address(1), Approved: a.boolean(2), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForTicketConsecutiveTransfer(ctx context.Context, cb func(context.Context, model.TicketConsecutiveTransfer) error) error {
	return listen(ctx, r, r.src.Tickets, "ConsecutiveTransfer", plain(func(a *args, d *blockchain.DecodedLog) model.TicketConsecutiveTransfer {
		return model.TicketConsecutiveTransfer{FromTokenID: a.big(0), ToTokenID: a.big(1), From: a.address(2), To: a.address(3), Raw: d.Raw}
	}), cb)
}

func (r *Registry) ListenForTicketConsumed(ctx context.Context, cb func(context.Context, model.TicketConsumed) error) error {
	return listen(ctx, r, r.src.Tickets, "OnConsumption", plain(func(a *args, d *blockchain.DecodedLog) model.TicketConsumed {
		return model.TicketConsumed{Consumer: a.address(0), TicketContractID: a.big(1), Amount: a.big(2), Data: a.bytes(3), Raw: d.Raw}
	}), cb)
}

// AnyCallback receives the record of any topic. For EventCreated the record
// is a NewEvent.
type AnyCallback func(ctx context.Context, record any) error

// NewEvent is the record ListenTopic delivers for EventCreated.
type NewEvent struct {
	model.EventCreated
	Members []model.Member `json:"members"`
}

func adapt[T any](cb AnyCallback) func(context.Context, T) error {
	return func(ctx context.Context, rec T) error { return cb(ctx, rec) }
}

var topicTable = map[string]func(r *Registry, ctx context.Context, cb AnyCallback) error{
	"EventCreated": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForNewEvent(ctx, func(ctx context.Context, rec model.EventCreated, members []model.Member) error {
			return cb(ctx, NewEvent{EventCreated: rec, Members: members})
		})
	},
	"MetadataUpdate": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForEventUpdate(ctx, adapt[model.EventUpdated](cb))
	},
	"RoleGranted": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForRoleGrant(ctx, adapt[model.RoleChanged](cb))
	},
	"RoleRevoked": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForRoleRevoke(ctx, adapt[model.RoleChanged](cb))
	},
	"BatchMetadataUpdate": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForBatchMetadataUpdate(ctx, adapt[model.BatchMetadataUpdate](cb))
	},
	"Refund": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForRefund(ctx, adapt[model.Refund](cb))
	},
	"EventCashierSet": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForNewEventCashier(ctx, adapt[model.EventCashierSet](cb))
	},
	"CategoryCreated": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForNewCategory(ctx, adapt[model.CategoryCreated](cb))
	},
	"CategoryUpdated": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForCategoryUpdate(ctx, adapt[model.CategoryChanged](cb))
	},
	"CategoryDeleted": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForCategoryDelete(ctx, adapt[model.CategoryChanged](cb))
	},
	"CategoryTicketsAdded": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForCategoryTicketsAdded(ctx, adapt[model.CategoryTickets](cb))
	},
	"CategoryTicketsRemoved": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForCategoryTicketsRemoved(ctx, adapt[model.CategoryTickets](cb))
	},
	"CategorySellChanged": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForCategorySellChanged(ctx, adapt[model.CategorySellChanged](cb))
	},
	"AllCategorySellChanged": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForAllCategorySellChanged(ctx, adapt[model.AllCategorySellChanged](cb))
	},
	"CategorySaleDatesUpdated": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForCategorySaleDatesUpdate(ctx, adapt[model.CategorySaleDatesUpdated](cb))
	},
	"TicketBought": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForBoughtTicket(ctx, adapt[model.TicketBought](cb))
	},
	"TicketRefunded": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForRefundedTicket(ctx, adapt[model.TicketRefunded](cb))
	},
	"EventRefundDateAdded": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForNewEventRefundDate(ctx, adapt[model.EventRefundDateAdded](cb))
	},
	"RefundWithdraw": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForRefundWithdraw(ctx, adapt[model.RefundWithdraw](cb))
	},
	"EventWithdraw": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForEventWithdraw(ctx, adapt[model.EventWithdraw](cb))
	},
	"TicketClipped": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForClippedTicket(ctx, adapt[model.TicketClipped](cb))
	},
	"TicketsBooked": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForBookedTickets(ctx, adapt[model.TicketsBooked](cb))
	},
	"InvitationSent": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForNewTicketInvitation(ctx, adapt[model.InvitationSent](cb))
	},
	"Locked": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForLockedTicket(ctx, adapt[model.TicketLock](cb))
	},
	"Unlocked": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForUnlockedTicket(ctx, adapt[model.TicketLock](cb))
	},
	"Transfer": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForTicketTransfer(ctx, adapt[model.TicketTransfer](cb))
	},
	"Approval": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForTicketApproval(ctx, adapt[model.TicketApproval](cb))
	},
	"ApprovalForAll": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForTicketApprovalForAll(ctx, adapt[model.TicketApprovalForAll](cb))
	},
	"ConsecutiveTransfer": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForTicketConsecutiveTransfer(ctx, adapt[model.TicketConsecutiveTransfer](cb))
	},
	"OnConsumption": func(r *Registry, ctx context.Context, cb AnyCallback) error {
		return r.ListenForTicketConsumed(ctx, adapt[model.TicketConsumed](cb))
	},
}

// Topics lists the log topics ListenTopic accepts, sorted.
func Topics() []string {
	out := make([]string, 0, len(topicTable))
	for t := range topicTable {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ListenTopic registers cb for the named topic with the record types of the
// typed ListenFor methods.
func (r *Registry) ListenTopic(ctx context.Context, topic string, cb AnyCallback) error {
	reg, ok := topicTable[topic]
	if !ok {
		return fmt.Errorf("unknown topic %q", topic)
	}
	if cb == nil {
		return fmt.Errorf("%s: nil callback", topic)
	}
	return reg(r, ctx, cb)
}

// IsTopic reports whether ListenTopic accepts topic.
func IsTopic(topic string) bool {
	return slices.Contains(Topics(), topic)
}
