package handle

import (
	"reflect"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/serialization"
)

type entry struct {
	value any
	kind  module.Kind
	live  bool
}

// Table owns the values behind issued handles. It is safe for concurrent use.
type Table struct {
	entries   []entry
	free      []uint32
	observers []subscription
	nextSub   uint64
	count     int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

func NewTable() *Table {
	return &Table{}
}

// Insert stores value under a new handle of kind k. Slots freed by Remove
// are reused before the table grows.
func (t *Table) Insert(k module.Kind, value any) (serialization.Handle, error) {
	if k == nil || !module.IsHandle(k) {
		spec := ""
		if k != nil {
			spec = k.Spec()
		}
		return serialization.Handle{}, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			Spec(spec).
			Detail("%q is not a handle kind", spec).
			Build()
	}
	k, _ = module.Unwrap(k)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return serialization.Handle{}, errors.New(errors.PhaseConvert, errors.KindInvalidHandle).
			Spec(k.Spec()).
			Detail("handle table is closed").
			Build()
	}
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
		t.entries[idx] = entry{value: value, kind: k, live: true}
	} else {
		idx = uint32(len(t.entries))
		t.entries = append(t.entries, entry{value: value, kind: k, live: true})
	}
	t.count++
	t.mu.Unlock()

	h := serialization.NewHandle(uint64(idx) + 1)
	Logger().Debug("handle created", zap.Uint32("slot", idx), zap.String("kind", k.Spec()))
	t.notify(Event{Type: EventCreated, Handle: h, Kind: k, Value: value})
	return h, nil
}

// slot returns the entry index for h. Callers hold mu.
func (t *Table) slot(h serialization.Handle) (uint32, bool) {
	if !h.IsValid() || h.Value() == 0 || h.Value() > uint64(len(t.entries)) {
		return 0, false
	}
	idx := uint32(h.Value() - 1)
	return idx, t.entries[idx].live
}

// Get returns the value behind h.
func (t *Table) Get(h serialization.Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.slot(h)
	if !ok {
		return nil, false
	}
	return t.entries[idx].value, true
}

// GetTyped returns the value behind h only when it was inserted with kind k.
func (t *Table) GetTyped(h serialization.Handle, k module.Kind) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.slot(h)
	if !ok || !matches(k, t.entries[idx].kind) {
		return nil, false
	}
	return t.entries[idx].value, true
}

// KindOf returns the kind h was inserted with.
func (t *Table) KindOf(h serialization.Handle) (module.Kind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.slot(h)
	if !ok {
		return nil, false
	}
	return t.entries[idx].kind, true
}

func matches(want, got module.Kind) bool {
	if want == nil {
		return false
	}
	want, _ = module.Unwrap(want)
	if want == module.Handle {
		return true
	}
	return want.Spec() == got.Spec()
}

// Remove drops h and returns its value.
func (t *Table) Remove(h serialization.Handle) (any, bool) {
	t.mu.Lock()
	idx, ok := t.slot(h)
	if !ok {
		t.mu.Unlock()
		return nil, false
	}
	e := t.entries[idx]
	t.entries[idx] = entry{}
	t.free = append(t.free, idx)
	t.count--
	t.mu.Unlock()

	if d, ok := e.value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventDropped, Handle: h, Kind: e.kind, Value: e.value})
	return e.value, true
}

// Resolve maps the handle list of a decoded message to table values. Invalid
// handles resolve to nil; handles the table never issued are an error.
func (t *Table) Resolve(handles []serialization.Handle) ([]any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	values := make([]any, len(handles))
	var errs error
	for i, h := range handles {
		if !h.IsValid() {
			continue
		}
		idx, ok := t.slot(h)
		if !ok {
			errs = multierr.Append(errs, errors.New(errors.PhaseDecode, errors.KindInvalidHandle).
				Value(h.Value()).
				Detail("handle %d at index %d is not in the table", h.Value(), i).
				Build())
			continue
		}
		values[i] = t.entries[idx].value
	}
	return values, errs
}

// Each calls fn for every live entry in handle order until fn returns false.
func (t *Table) Each(fn func(serialization.Handle, module.Kind, any) bool) {
	t.mu.RLock()
	live := make([]Event, 0, t.count)
	for i, e := range t.entries {
		if e.live {
			live = append(live, Event{Handle: serialization.NewHandle(uint64(i) + 1), Kind: e.kind, Value: e.value})
		}
	}
	t.mu.RUnlock()

	for _, e := range live {
		if !fn(e.Handle, e.Kind, e.Value) {
			return
		}
	}
}

type subscription struct {
	id uint64
	o  Observer
}

// Subscribe registers o for lifecycle events and returns a function that
// removes exactly this registration.
func (t *Table) Subscribe(o Observer) (cancel func()) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.nextSub++
	id := t.nextSub
	t.observers = append(t.observers, subscription{id: id, o: o})
	return func() { t.unsubscribe(func(s subscription) bool { return s.id == id }) }
}

// Unsubscribe removes the first registration of o. Observers of an
// uncomparable type, such as ObserverFunc, can only be removed through the
// function returned by Subscribe.
func (t *Table) Unsubscribe(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	t.unsubscribe(func(s subscription) bool {
		return reflect.TypeOf(s.o) == reflect.TypeOf(o) && s.o == o
	})
}

func (t *Table) unsubscribe(match func(subscription) bool) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, s := range t.observers {
		if match(s) {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Clear drops every live handle.
func (t *Table) Clear() {
	var handles []serialization.Handle
	t.Each(func(h serialization.Handle, _ module.Kind, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close drops every live handle and rejects further inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.Clear()
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, s := range t.observers {
		s.o.OnHandleEvent(e)
	}
}
