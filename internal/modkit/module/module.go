// Package module is the contract every API feature module satisfies, plus the
// lookups api.Mount uses to hand one module's ports to another
package module

import (
	"reflect"
	"sync"

	phttp "caisse/internal/platform/net/http"
)

// Module is a mountable feature: pos, scanner, meta
type Module interface {
	Name() string
	// Ports is the module's exported port bundle, nil when it exports none
	Ports() any
	MountRoutes(r phttp.Router)
}

// PortsOf finds a T in m's ports: the bundle itself, or an exported field of it
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return zero, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for bootstrap, where a missing port is a wiring bug
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		var zero T
		panic("module " + m.Name() + " exports no " + reflect.TypeOf(&zero).Elem().String())
	}
	return v
}

var (
	mu       sync.RWMutex
	registry = map[string]any{}
)

// Register records the ports mounted under name, replacing any earlier entry
func Register(name string, ports any) {
	mu.Lock()
	registry[name] = ports
	mu.Unlock()
}

// PortsAs returns the ports registered under name when they are a T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := registry[name]
	mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Reset empties the registry between tests
func Reset() {
	mu.Lock()
	registry = map[string]any{}
	mu.Unlock()
}
