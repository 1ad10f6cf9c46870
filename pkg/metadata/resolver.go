package metadata

import (
	"context"
	"errors"
	"iter"
	"math/big"
	"slices"
	"time"

	"github.com/shamank/ets-sdk-go/pkg/model"
	"github.com/shamank/ets-sdk-go/pkg/storage"
	"go.uber.org/zap"
)

// URIReader reads the content locator of an identifier. EventFacet and
// TicketFacet implement it.
type URIReader interface {
	TokenURI(ctx context.Context, id *big.Int) (string, error)
}

// CategoryReader lists the on-chain categories of an event.
type CategoryReader interface {
	FetchCategoriesByEventId(ctx context.Context, eventID *big.Int) ([]model.Category, error)
}

// Policy selects how batch resolution reacts to a failed item.
type Policy int

const (
	// FailFast stops at the first failure and returns only that error.
	FailFast Policy = iota
	// ContinueOnError resolves every item and returns the successes together
	// with a *BatchError.
	ContinueOnError
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail_fast"
	case ContinueOnError:
		return "continue"
	default:
		return "unknown"
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy sets the batch policy. The default is FailFast.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) { r.policy = p }
}

// Resolver maps identifiers to metadata records. It holds no mutable state:
// every call reads the locator and fetches the document again.
type Resolver struct {
	fetcher storage.Fetcher
	gateway storage.Gateway
	policy  Policy
}

// NewResolver returns a resolver fetching documents through fetcher after
// rewriting locators with gateway.
func NewResolver(fetcher storage.Fetcher, gateway storage.Gateway, opts ...Option) *Resolver {
	r := &Resolver{fetcher: fetcher, gateway: gateway}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the configured batch policy.
func (r *Resolver) Policy() Policy { return r.policy }

// Gateway returns the locator rewriter.
func (r *Resolver) Gateway() storage.Gateway { return r.gateway }

// ResolveOne reads the content locator of id from src, fetches the document it
// points to and returns it with eventId and cid set. A failed read is
// returned as *ResolutionError, a failed fetch as *FetchError.
func (r *Resolver) ResolveOne(ctx context.Context, id *big.Int, src URIReader) (model.MetadataRecord, error) {
	if id == nil {
		return nil, &ResolutionError{Err: errors.New("nil identifier")}
	}
	id = new(big.Int).Set(id)

	uri, err := src.TokenURI(ctx, id)
	if err != nil {
		return nil, &ResolutionError{ID: id, Err: err}
	}

	rec, err := r.FetchDocument(ctx, uri)
	if err != nil {
		return nil, err
	}
	rec[model.KeyEventID] = id
	rec[model.KeyCID] = uri
	return rec, nil
}

// FetchDocument rewrites uri through the gateway and fetches the JSON object
// it points to. Nothing is merged into the result.
func (r *Resolver) FetchDocument(ctx context.Context, uri string) (model.MetadataRecord, error) {
	url := r.gateway.Rewrite(uri)

	start := time.Now()
	resp, err := r.fetcher.Get(ctx, url)
	fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		fetchTotal.WithLabelValues("error").Inc()
		return nil, &FetchError{URL: url, Err: err}
	}
	if !resp.OK() {
		fetchTotal.WithLabelValues("status").Inc()
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	rec, err := model.ParseMetadataRecord(resp.Body)
	if err != nil {
		fetchTotal.WithLabelValues("decode").Inc()
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	fetchTotal.WithLabelValues("ok").Inc()
	zap.L().Debug("fetched metadata document", zap.String("url", url))
	return rec, nil
}

// ResolveMany resolves ids one after another, in order.
func (r *Resolver) ResolveMany(ctx context.Context, ids []*big.Int, src URIReader) ([]model.MetadataRecord, error) {
	return r.ResolveSeq(ctx, slices.Values(ids), src)
}

// ResolveSeq resolves the identifiers of seq one after another. Each item is
// complete before the next one starts. Under FailFast the first failure is
// returned alone and later items are never read; under ContinueOnError the
// successes are returned in input order with a *BatchError. An empty seq
// yields an empty, non-nil slice.
func (r *Resolver) ResolveSeq(ctx context.Context, seq iter.Seq[*big.Int], src URIReader) ([]model.MetadataRecord, error) {
	return resolveBatch(ctx, r.policy, seq, identity, func(id *big.Int) (model.MetadataRecord, error) {
		return r.ResolveOne(ctx, id, src)
	})
}

// ResolveCategories fetches the document of every category of eventID and
// merges the on-chain category fields into it. The batch policy applies.
func (r *Resolver) ResolveCategories(ctx context.Context, eventID *big.Int, src CategoryReader) ([]model.MetadataRecord, error) {
	cats, err := src.FetchCategoriesByEventId(ctx, eventID)
	if err != nil {
		return nil, &ResolutionError{ID: eventID, Err: err}
	}

	return resolveBatch(ctx, r.policy, slices.Values(cats), categoryID, func(c model.Category) (model.MetadataRecord, error) {
		rec, err := r.FetchDocument(ctx, c.CID)
		if err != nil {
			return nil, err
		}
		rec[model.KeyID] = c.ID
		rec[model.KeyCID] = c.CID
		rec[model.KeyTicketsCount] = c.TicketsCount
		rec[model.KeySaleStartDate] = c.SaleStartDate
		rec[model.KeySaleEndDate] = c.SaleEndDate
		rec[model.KeyTicketPrice] = c.TicketPrice
		rec[model.KeySellingEnabled] = c.SellingEnabled
		return rec, nil
	})
}

func identity(id *big.Int) *big.Int { return id }

func categoryID(c model.Category) *big.Int { return c.ID }

func resolveBatch[T any](ctx context.Context, policy Policy, seq iter.Seq[T], idOf func(T) *big.Int, resolve func(T) (model.MetadataRecord, error)) ([]model.MetadataRecord, error) {
	out := []model.MetadataRecord{}
	var batch BatchError
	i := 0
	for item := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := resolve(item)
		if err != nil {
			if policy == FailFast {
				return nil, err
			}
			batch.Items = append(batch.Items, ItemError{Index: i, ID: idOf(item), Err: err})
		} else {
			out = append(out, rec)
		}
		i++
	}
	if len(batch.Items) > 0 {
		return out, &batch
	}
	return out, nil
}
