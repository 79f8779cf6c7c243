// Package getter resolves rule properties of Plex library items into typed
// values. Each evaluation is a stateless pipeline: look up the property,
// resolve the item's metadata, run the property's algorithm.
package getter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/sweepr/internal/catalog"
	"github.com/vmunix/sweepr/internal/plex"
)

// Evaluator resolves property ids against library items. It is safe for
// concurrent use.
type Evaluator struct {
	catalog     *catalog.Catalog
	app         catalog.ApplicationID
	provider    Provider
	resolver    *Resolver
	handlers    map[string]propertyFunc
	concurrency int
	log         *slog.Logger
}

// Option customizes an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Evaluator) {
		if log != nil {
			e.log = log
		}
	}
}

// WithConcurrency bounds the number of sibling fetches in flight while
// walking a show or season. 1 walks sequentially.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.concurrency = max(n, 1)
	}
}

// WithApplication selects the catalog application to resolve ids in.
func WithApplication(app catalog.ApplicationID) Option {
	return func(e *Evaluator) {
		e.app = app
	}
}

// New creates an evaluator. Every property the catalog declares for the
// application must have an algorithm.
func New(cat *catalog.Catalog, provider Provider, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		catalog:     cat,
		app:         catalog.ApplicationPlex,
		provider:    provider,
		handlers:    properties,
		concurrency: 1,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "getter")
	e.resolver = NewResolver(provider, e.log)

	var missing []string
	for _, d := range cat.Properties(e.app) {
		if _, ok := e.handlers[d.Name]; !ok {
			missing = append(missing, d.Name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %v", ErrNoHandler, missing)
	}
	return e, nil
}

// Evaluate resolves one property of item. It never fails: any error along
// the way is logged and reported as Unknown.
func (e *Evaluator) Evaluate(ctx context.Context, propertyID int, item plex.MediaItem, dataType plex.DataType, rule *RuleContext) (v Value) {
	desc, err := e.catalog.Lookup(e.app, propertyID)
	if err != nil {
		e.log.Warn("property lookup failed", "property_id", propertyID, "error", err)
		return Unknown()
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("property evaluation panicked", "property", desc.Name, "rating_key", item.RatingKey, "error", r)
			v = Unknown()
		}
	}()

	v, err = e.evaluate(ctx, desc, item, dataType, rule)
	if err != nil {
		e.log.Warn("property evaluation failed", "property", desc.Name, "rating_key", item.RatingKey, "error", err)
		return Unknown()
	}
	return v
}

func (e *Evaluator) evaluate(ctx context.Context, desc catalog.Descriptor, item plex.MediaItem, dataType plex.DataType, rule *RuleContext) (Value, error) {
	fn, ok := e.handlers[desc.Name]
	if !ok {
		return Value{}, fmt.Errorf("%s: %w", desc.Name, ErrNoHandler)
	}

	res, err := e.resolver.Resolve(ctx, item.RatingKey)
	if err != nil {
		return Value{}, err
	}

	return fn(ctx, e, &input{
		item:     item,
		resolved: res,
		dataType: dataType,
		rule:     rule,
	})
}

// EvaluateMany resolves several properties of one item concurrently. Each
// result is independent of the others.
func (e *Evaluator) EvaluateMany(ctx context.Context, propertyIDs []int, item plex.MediaItem, dataType plex.DataType, rule *RuleContext) map[int]Value {
	var mu sync.Mutex
	out := make(map[int]Value, len(propertyIDs))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, id := range propertyIDs {
		g.Go(func() error {
			v := e.Evaluate(ctx, id, item, dataType, rule)
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
