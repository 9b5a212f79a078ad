package digo

import (
	"fmt"
	"reflect"
	"runtime"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor is a registered function together with the declared names and
// defaults of its parameters. Parameter types come from the function
// signature; names exist so callers can override individual arguments.
type Constructor struct {
	fn       reflect.Value
	name     string
	params   []param
	hasError bool
	external bool
}

type param struct {
	name       string
	typ        reflect.Type
	factory    factoryBinder
	target     reflect.Type
	def        reflect.Value
	hasDefault bool
}

// newConstructor inspects fn and applies the parameter names and defaults of
// reg. iface is only used to label errors.
func newConstructor(iface string, fn any, reg *registration) (*Constructor, error) {
	if fn == nil {
		return nil, &RegistrationTypeError{Type: iface, Constructor: "<nil>", Reason: "constructor is nil"}
	}

	v := reflect.ValueOf(fn)
	typ := v.Type()
	if typ.Kind() != reflect.Func {
		return nil, &RegistrationTypeError{Type: iface, Constructor: typ.String(), Reason: "constructor must be a function"}
	}
	if v.IsNil() {
		return nil, &RegistrationTypeError{Type: iface, Constructor: typ.String(), Reason: "constructor is nil"}
	}

	c := &Constructor{
		fn:   v,
		name: funcName(v),
	}
	fail := func(format string, args ...any) error {
		return &RegistrationTypeError{Type: iface, Constructor: c.name, Reason: fmt.Sprintf(format, args...)}
	}

	// a trailing variadic parameter is left for the function to default
	numIn := typ.NumIn()
	if typ.IsVariadic() {
		numIn--
	}

	if len(reg.names) > numIn {
		return nil, fail("%d parameter names given for %d parameters", len(reg.names), numIn)
	}

	c.params = make([]param, numIn)
	index := make(map[string]int, numIn)
	for i := 0; i < numIn; i++ {
		p := param{
			name: fmt.Sprintf("arg%d", i),
			typ:  typ.In(i),
		}
		if i < len(reg.names) && reg.names[i] != "" {
			p.name = reg.names[i]
		}
		if _, dup := index[p.name]; dup {
			return nil, fail("duplicate parameter name %q", p.name)
		}
		index[p.name] = i

		if p.typ.Kind() == reflect.Pointer && p.typ.Elem().Implements(factoryBinderType) {
			return nil, fail("parameter %q: use %s, not %s", p.name, p.typ.Elem(), p.typ)
		}
		if p.typ.Implements(factoryBinderType) {
			p.factory = reflect.Zero(p.typ).Interface().(factoryBinder)
			p.target = p.factory.factoryTarget()
		}
		c.params[i] = p
	}

	for name, value := range reg.defaults {
		i, ok := index[name]
		if !ok {
			return nil, fail("default for unknown parameter %q", name)
		}
		p := &c.params[i]
		if value == nil {
			p.def = reflect.Zero(p.typ)
		} else {
			dv := reflect.ValueOf(value)
			if !dv.Type().AssignableTo(p.typ) {
				return nil, fail("default for %q is %s, not assignable to %s", name, dv.Type(), p.typ)
			}
			p.def = dv
		}
		p.hasDefault = true
	}

	if n := typ.NumOut(); n > 0 && typ.Out(n-1) == errorType {
		c.hasError = true
	}

	return c, nil
}

// checkResult verifies that c produces a value assignable to iface, with the
// shape func(...) T or func(...) (T, error).
func (c *Constructor) checkResult(iface reflect.Type) error {
	typ := c.fn.Type()
	fail := func(reason string) error {
		return &RegistrationTypeError{Type: iface.String(), Constructor: c.name, Reason: reason}
	}

	switch typ.NumOut() {
	case 1:
		if c.hasError {
			return fail("constructor must return a value, not only an error")
		}
	case 2:
		if !c.hasError {
			return fail("second return value must be error")
		}
	default:
		return fail("constructor must return (T) or (T, error)")
	}

	if out := typ.Out(0); !out.AssignableTo(iface) {
		return fail(fmt.Sprintf("returns %s, which does not implement %s", out, iface))
	}
	return nil
}

// Name returns the fully qualified function name of the constructor.
func (c *Constructor) Name() string {
	return c.name
}

// Params describes the parameters as "name type" pairs in declaration order.
func (c *Constructor) Params() []string {
	out := make([]string, len(c.params))
	for i, p := range c.params {
		out[i] = p.name + " " + p.typ.String()
	}
	return out
}

// arguments assembles the call arguments of c. The lookup order per
// parameter is: factory marker, override by name, registered type, declared
// default. Injected factories resolve in factoryScope, where nil means the
// current scope of the goroutine calling Get.
func (r *Resolver) arguments(c *Constructor, overrides Overrides, scope, factoryScope *Scope) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(c.params))

	for i, p := range c.params {
		if p.factory != nil {
			target := p.target
			args[i] = reflect.ValueOf(p.factory.bindFactory(func(o Overrides) (any, error) {
				return r.resolve(target, o, factoryScope)
			}))
			continue
		}

		if value, ok := overrides[p.name]; ok {
			if value == nil {
				args[i] = reflect.Zero(p.typ)
				continue
			}
			v := reflect.ValueOf(value)
			if !v.Type().AssignableTo(p.typ) {
				return nil, &TypeMismatchError{Expected: p.typ.String(), Got: v.Type().String()}
			}
			args[i] = v
			continue
		}

		if r.registry.Contains(p.typ) {
			instance, err := r.resolve(p.typ, nil, scope)
			if err != nil {
				return nil, err
			}
			args[i] = valueFor(instance, p.typ)
			continue
		}

		if p.hasDefault {
			args[i] = p.def
			continue
		}

		return nil, &MissingDependencyError{Param: p.name, Type: p.typ.String(), Constructor: c.name}
	}

	return args, nil
}

// invoke calls c with args and returns its non-error results. A non-nil
// trailing error is returned as is.
func (c *Constructor) invoke(args []reflect.Value) ([]reflect.Value, error) {
	results := c.fn.Call(args)
	if c.hasError {
		last := results[len(results)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		results = results[:len(results)-1]
	}
	return results, nil
}

// build constructs one instance of iface with c. Failures while resolving
// arguments propagate unchanged; an error returned by the constructor itself
// is wrapped in InitializationError.
func (r *Resolver) build(iface reflect.Type, c *Constructor, overrides Overrides, scope, factoryScope *Scope) (any, error) {
	args, err := r.arguments(c, overrides, scope, factoryScope)
	if err != nil {
		return nil, err
	}

	results, err := c.invoke(args)
	if err != nil {
		return nil, &InitializationError{Type: iface.String(), Err: err}
	}

	r.logger.Debug("created instance", "type", iface.String(), "constructor", c.name)
	return results[0].Interface(), nil
}

// instanceConstructor returns a constructor that always yields instance.
// Pre-built instances are registered as singletons built by it.
func instanceConstructor(t reflect.Type, instance any) (*Constructor, error) {
	if instance != nil {
		if it := reflect.TypeOf(instance); !it.AssignableTo(t) {
			return nil, &RegistrationTypeError{
				Type:        t.String(),
				Constructor: "instance of " + it.String(),
				Reason:      "instance does not implement " + t.String(),
			}
		}
	}

	v := valueFor(instance, t)
	fn := reflect.MakeFunc(reflect.FuncOf(nil, []reflect.Type{t}, false), func([]reflect.Value) []reflect.Value {
		return []reflect.Value{v}
	})
	return &Constructor{fn: fn, name: "instance of " + t.String(), external: true}, nil
}

// valueFor converts a resolved instance into an argument of type t, mapping
// nil to the zero value.
func valueFor(instance any, t reflect.Type) reflect.Value {
	if instance == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(instance)
}

func funcName(v reflect.Value) string {
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return v.Type().String()
}
