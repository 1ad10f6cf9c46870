// Package listener subscribes callbacks to the logs of the events, ticket
// controller and tickets contracts.
//
// Every ListenFor method opens one subscription and converts each decoded log
// into a typed record from package model before calling back:
//
//	reg := listener.NewRegistry(resolver, listener.SourcesFromClient(evm),
//		listener.WithErrors(errs))
//	defer reg.Close()
//
//	err := reg.ListenForRoleGrant(ctx, func(ctx context.Context, rec model.RoleChanged) error {
//		log.Printf("event %s: role %x granted to %s", rec.EventID, rec.Role, rec.Account)
//		return nil
//	})
//
// EventCreated and MetadataUpdate records are enriched with the event's
// metadata document before the callback runs; when that fails the callback is
// skipped. Decode, enrichment, callback and transport failures are reported
// as *HandlerError on the channel given to WithErrors, or logged when none was
// given.
//
// Close waits for running callbacks, so a callback that wants to end every
// registration calls Stop instead.
package listener
