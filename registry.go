package chisel

import (
	"reflect"
	"sync"
	"time"

	list "github.com/bahlo/generic-list-go"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/inf.v0"

	"github.com/reoring/chisel/isotime"
	"github.com/reoring/chisel/schema"
	"github.com/reoring/chisel/typedesc"
)

// ExtractPolicy controls how record extraction treats properties that are
// absent from an instance and have no default.
type ExtractPolicy int

const (
	// ExtractOmitAbsent leaves absent properties out of the result.
	ExtractOmitAbsent ExtractPolicy = iota
	// ExtractAbsentAsNull writes absent properties as null.
	ExtractAbsentAsNull
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSchemas sets the provider records are looked up in. Defaults to
// schema.DefaultRegistry().
func WithSchemas(p schema.Provider) RegistryOption {
	return func(r *Registry) {
		if p != nil {
			r.schemas = p
		}
	}
}

// WithLogger sets the logger strategy builds are reported to at V(1).
func WithLogger(l logr.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithExtractPolicy sets the record extraction policy.
func WithExtractPolicy(p ExtractPolicy) RegistryOption {
	return func(r *Registry) { r.policy = p }
}

// goTyper is implemented by providers that know which Go types stand for
// which declarations, such as *schema.Registry.
type goTyper interface {
	TypeForGo(rt reflect.Type) (*typedesc.Type, bool)
}

// Registry resolves type descriptors to strategies. Lookups go through the
// custom overrides, the builtin table and the cache, in that order; misses
// are built and memoized. Safe for concurrent use.
type Registry struct {
	schemas schema.Provider
	log     logr.Logger
	policy  ExtractPolicy
	builtin map[string]Strategy

	mu     sync.RWMutex
	custom map[string]Strategy
	// cache[0] holds lenient resolutions, cache[1] strict ones, so a
	// lenient passthrough never answers a strict lookup.
	cache [2]map[string]Strategy
	built int
	// While records are being prepared, every cache write is journaled so a
	// failed record can evict the composites that captured it.
	inflight int
	journal  []cacheEntry
}

type cacheEntry struct {
	slot int
	key  string
	s    Strategy
}

// NewRegistry returns a registry with no custom strategies.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas: schema.DefaultRegistry(),
		log:     logr.Discard(),
		custom:  map[string]Strategy{},
		cache:   [2]map[string]Strategy{{}, {}},
	}
	for _, o := range opts {
		o(r)
	}
	r.builtin = builtinStrategies(r)
	return r
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// Default returns the process-wide registry used by the package-level
// entry points. It reads schemas from schema.DefaultRegistry().
func Default() *Registry {
	defaultRegistryOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// Stats reports memoization counters.
type Stats struct {
	Cached int // strategies held in the cache
	Built  int // composite strategies built since creation
}

// Stats returns the current counters.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Cached: len(r.cache[0]) + len(r.cache[1]), Built: r.built}
}

// Add registers s for exactly t. It takes precedence over builtin and
// built strategies. The cache is dropped so composites pick up s.
func (r *Registry) Add(t *typedesc.Type, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[t.Key()] = s
	r.cache = [2]map[string]Strategy{{}, {}}
	r.journal = r.journal[:0]
}

// Resolve is GetFor in strict mode.
func (r *Registry) Resolve(t *typedesc.Type) (Strategy, error) { return r.GetFor(t, true) }

func slot(strict bool) int {
	if strict {
		return 1
	}
	return 0
}

// GetFor returns the strategy for t. With strict false, types chisel does
// not understand resolve to the passthrough strategy instead of failing.
// Those passthrough resolutions are not cached; every other composite
// resolution is.
func (r *Registry) GetFor(t *typedesc.Type, strict bool) (Strategy, error) {
	if t == nil {
		return nil, Issues{newIssue(CodeUnsupportedType, "<nil>")}
	}
	key := t.Key()
	r.mu.RLock()
	s, ok := r.custom[key]
	if !ok {
		s, ok = r.builtin[key]
	}
	if !ok {
		s, ok = r.cache[slot(strict)][key]
	}
	r.mu.RUnlock()
	if ok {
		return s, nil
	}
	return r.build(t, strict)
}

func (r *Registry) build(t *typedesc.Type, strict bool) (Strategy, error) {
	if typedesc.IsRecord(t) {
		if typedesc.IsGeneric(t) {
			return nil, errInvalidType(t, "generic record without type arguments")
		}
		return r.buildRecord(t, strict)
	}
	var (
		s   Strategy
		err error
	)
	origin := typedesc.Origin(t)
	switch {
	case origin == t:
		switch t.Kind() {
		case typedesc.KindEnum:
			s = newEnumStrategy(t)
		case typedesc.KindNamedTuple:
			s, err = r.buildNamedTuple(t, strict)
		case typedesc.KindTypedDict:
			s, err = r.buildTypedDict(t, strict)
		default:
			return r.fallback(t, strict)
		}
	case typedesc.IsOptional(t):
		var inner Strategy
		if inner, err = r.GetFor(typedesc.UnwrapOptional(t), strict); err == nil {
			s = &optionalStrategy{inner: inner}
		}
	case t.Kind() == typedesc.KindUnion:
		s, err = r.buildUnion(t, strict)
	case typedesc.IsCollectionLike(t):
		s, err = r.buildList(t, strict)
	case t.Kind() == typedesc.KindTuple:
		s, err = r.buildTuple(t, strict)
	case t.Kind() == typedesc.KindDict:
		s, err = r.buildDict(t, strict)
	case t.Kind() == typedesc.KindOrderedDict:
		var d *dictStrategy
		if d, err = r.buildDict(t, strict); err == nil {
			s = &orderedDictStrategy{*d}
		}
	default:
		return r.fallback(t, strict)
	}
	if err != nil {
		return nil, err
	}
	return r.store(t, strict, s), nil
}

func (r *Registry) fallback(t *typedesc.Type, strict bool) (Strategy, error) {
	if strict {
		return nil, errUnsupported(t)
	}
	return Dummy(), nil
}

// store memoizes s for t unless another goroutine got there first, in
// which case the stored strategy is returned.
func (r *Registry) store(t *typedesc.Type, strict bool, s Strategy) Strategy {
	key := t.Key()
	r.mu.Lock()
	if prev, ok := r.cache[slot(strict)][key]; ok {
		r.mu.Unlock()
		return prev
	}
	r.cache[slot(strict)][key] = s
	r.record(slot(strict), key, s)
	r.built++
	r.mu.Unlock()
	r.log.V(1).Info("built strategy", "type", t.String(), "strategy", reflect.TypeOf(s).String(), "strict", strict)
	return s
}

// buildRecord publishes the record strategy before resolving its members
// so self-referencing records find it in the cache. If prepare fails, the
// record and everything cached while it was in flight are evicted.
func (r *Registry) buildRecord(t *typedesc.Type, strict bool) (Strategy, error) {
	key := t.Key()
	rs := newRecordStrategy(t, r.policy)
	r.mu.Lock()
	if prev, ok := r.cache[slot(strict)][key]; ok {
		r.mu.Unlock()
		return prev, nil
	}
	r.inflight++
	mark := len(r.journal)
	r.cache[slot(strict)][key] = rs
	r.record(slot(strict), key, rs)
	r.mu.Unlock()

	err := rs.prepare(r, strict)
	r.mu.Lock()
	if err != nil {
		r.evictSince(mark)
	} else {
		r.built++
	}
	r.inflight--
	if r.inflight == 0 {
		r.journal = r.journal[:0]
	}
	r.mu.Unlock()
	rs.finish(err)
	if err != nil {
		return nil, err
	}
	r.log.V(1).Info("built strategy", "type", t.String(), "strategy", "record", "strict", strict, "fields", len(rs.fields))
	return rs, nil
}

// record journals a cache write. Callers hold r.mu.
func (r *Registry) record(slot int, key string, s Strategy) {
	if r.inflight > 0 {
		r.journal = append(r.journal, cacheEntry{slot: slot, key: key, s: s})
	}
}

// evictSince drops the cache entries journaled from mark on that still hold
// the journaled strategy. Callers hold r.mu.
func (r *Registry) evictSince(mark int) {
	if mark > len(r.journal) {
		return
	}
	for _, e := range r.journal[mark:] {
		if r.cache[e.slot][e.key] == e.s {
			delete(r.cache[e.slot], e.key)
		}
	}
	r.journal = r.journal[:mark]
}

// TypeOf infers the descriptor of a runtime value. Values that implement
// typedesc.Typed report their own descriptor; Go types registered with the
// schema provider resolve to their declarations.
func (r *Registry) TypeOf(v any) (*typedesc.Type, bool) {
	switch x := v.(type) {
	case nil:
		return typedesc.None, true
	case typedesc.Typed:
		return x.TypeDescriptor(), true
	case bool:
		return typedesc.Bool, true
	case string:
		return typedesc.String, true
	case []byte:
		return typedesc.Bytes, true
	case *inf.Dec:
		return typedesc.Decimal, true
	case uuid.UUID:
		return typedesc.UUID, true
	case isotime.Date:
		return typedesc.Date, true
	case isotime.Time:
		return typedesc.Time, true
	case time.Time:
		return typedesc.DateTime, true
	case time.Duration:
		return typedesc.Duration, true
	case []any:
		return typedesc.List, true
	case Tuple:
		return typedesc.TupleOf(typedesc.Any, typedesc.Ellipsis), true
	case Set:
		return typedesc.Set, true
	case FrozenSet:
		return typedesc.FrozenSet, true
	case *list.List[any]:
		return typedesc.Deque, true
	case *orderedmap.OrderedMap[any, any]:
		return typedesc.OrderedDict, true
	case map[string]any, map[any]any:
		return typedesc.Dict, true
	}
	t, err := typedesc.FromGo(reflect.TypeOf(v), r.namedGoType)
	if err != nil {
		return nil, false
	}
	return t, true
}

func (r *Registry) namedGoType(rt reflect.Type) (*typedesc.Type, bool) {
	gt, ok := r.schemas.(goTyper)
	if !ok {
		return nil, false
	}
	if rt.Kind() == reflect.Pointer && rt.Elem().Kind() == reflect.Struct {
		rt = rt.Elem()
	}
	return gt.TypeForGo(rt)
}
