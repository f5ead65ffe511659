package valuetype

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrUnknownType is wrapped by every lookup failure.
var ErrUnknownType = errors.New("valuetype: unknown value type")

// Manager owns the type namespace. Names are case sensitive; a later Register
// for the same name replaces the earlier item (and its nullable sibling) in
// place, keeping the original iteration position.
//
// Registration is expected to finish before read traffic starts, but the map
// is guarded so concurrent readers and writers stay memory safe.
type Manager struct {
	mu     sync.RWMutex
	items  map[string]*Item
	order  []string
	logger logrus.FieldLogger
	opts   Options
}

// New constructs a manager. The built-in catalog is registered unless
// WithoutBuiltinTypes is supplied.
func New(options ...Option) *Manager {
	cfg := NewOptions(options...)
	m := &Manager{
		items:  make(map[string]*Item),
		logger: cfg.Logger,
		opts:   cfg,
	}
	if !cfg.DisableBuiltinTypes {
		RegisterBuiltins(m, cfg.Validators)
	}
	return m
}

// Options returns the resolved configuration.
func (m *Manager) Options() Options {
	return m.opts
}

// Register stores name and its NullableName sibling built from def. It
// returns the manager to allow chaining.
func (m *Manager) Register(name string, def Definition) *Manager {
	nullableName := NullableName(name)

	m.mu.Lock()
	replaced := m.setLocked(name, NewItem(name, def))
	m.setLocked(nullableName, NewItem(nullableName, def.nullable()))
	m.mu.Unlock()

	entry := m.logger.WithField("type", name)
	if replaced {
		entry.Debug("valuetype: replaced value type")
	} else {
		entry.Debug("valuetype: registered value type")
	}
	return m
}

func (m *Manager) setLocked(name string, item *Item) bool {
	_, exists := m.items[name]
	if !exists {
		m.order = append(m.order, name)
	}
	m.items[name] = item
	return exists
}

// Get returns the item registered under name. An unknown name is a caller
// bug: Get panics with an error wrapping ErrUnknownType. Use Has or Lookup for
// untrusted names.
func (m *Manager) Get(name string) *Item {
	item, ok := m.Lookup(name)
	if !ok {
		panic(fmt.Errorf("%w: %q does not exist", ErrUnknownType, name))
	}
	return item
}

// Lookup returns the item registered under name without panicking.
func (m *Manager) Lookup(name string) (*Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[name]
	return item, ok
}

// Has reports whether name is registered.
func (m *Manager) Has(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Value resolves name with Get and runs the item's pipeline.
func (m *Manager) Value(name string, input, params any, format ...bool) ValueResult {
	return m.Get(name).Value(input, params, format...)
}

// Check resolves name with Get and runs the item's check.
func (m *Manager) Check(name string, input, params any) CheckResult {
	return m.Get(name).Check(input, params)
}

// CheckParams validates params for name. Unknown names are reported as an
// error wrapping ErrUnknownType rather than a panic because params are
// validated while binding field declarations, before any data flows.
func (m *Manager) CheckParams(name string, params any) error {
	item, ok := m.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q does not exist", ErrUnknownType, name)
	}
	return item.CheckParams(params)
}

// ForEach calls fn for every registered item in insertion order until fn
// returns false. fn runs outside the manager lock.
func (m *Manager) ForEach(fn func(name string, item *Item) bool) {
	if fn == nil {
		return
	}
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	items := make([]*Item, len(names))
	for idx, name := range names {
		items[idx] = m.items[name]
	}
	m.mu.RUnlock()

	for idx, name := range names {
		if !fn(name, items[idx]) {
			return
		}
	}
}

// Names lists registered names in insertion order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.order...)
}

// Len returns the number of registered names, nullable siblings included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order)
}
