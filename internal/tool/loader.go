package tool

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const capabilityFuncName = "Capabilities"

// LoadCapabilityModule interprets a Go source file and collects the
// capabilities it declares via an exported
// Capabilities() map[string]func(map[string]string) (string, error)
// function. Anything not conforming to that contract is rejected at load
// time; the module never gets to register arbitrary callables.
func LoadCapabilityModule(path string) (map[string]InvokeFunc, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: module reference is empty", ErrCapabilityModule)
	}
	code, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCapabilityModule, trimmed, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCapabilityModule, trimmed)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCapabilityModule, trimmed, err)
	}
	if _, err := i.EvalPath(trimmed); err != nil {
		return nil, fmt.Errorf("%w: interpret %s: %v", ErrCapabilityModule, trimmed, err)
	}
	fnValue, err := i.Eval(capabilityFuncName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must define %s() map[string]func(map[string]string) (string, error): %v",
			ErrCapabilityModule, trimmed, capabilityFuncName, err)
	}
	caps, convErr := invokeCapabilityFunc(fnValue)
	if convErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCapabilityModule, trimmed, convErr)
	}
	return caps, nil
}

func invokeCapabilityFunc(value reflect.Value) (map[string]InvokeFunc, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", capabilityFuncName)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", capabilityFuncName)
	}
	if value.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must take no arguments", capabilityFuncName)
	}
	results := value.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return map[string]func(map[string]string) (string, error)[, error]", capabilityFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned a non-error second value", capabilityFuncName)
	}
	raw := results[0]
	if direct, ok := raw.Interface().(map[string]func(map[string]string) (string, error)); ok {
		caps := make(map[string]InvokeFunc, len(direct))
		for name, fn := range direct {
			if err := validateCapabilityName(name); err != nil {
				return nil, err
			}
			caps[name] = InvokeFunc(fn)
		}
		return caps, nil
	}
	if raw.Kind() != reflect.Map {
		return nil, fmt.Errorf("%s must return a map keyed by capability name", capabilityFuncName)
	}
	invokeType := reflect.TypeOf(InvokeFunc(nil))
	caps := make(map[string]InvokeFunc, raw.Len())
	iter := raw.MapRange()
	for iter.Next() {
		key, ok := iter.Key().Interface().(string)
		if !ok {
			return nil, fmt.Errorf("%s map keys must be strings", capabilityFuncName)
		}
		if err := validateCapabilityName(key); err != nil {
			return nil, err
		}
		entry := iter.Value()
		if entry.Kind() == reflect.Interface {
			entry = entry.Elem()
		}
		if !entry.IsValid() || entry.Kind() != reflect.Func || !entry.Type().ConvertibleTo(invokeType) {
			return nil, fmt.Errorf("capability %s does not satisfy func(map[string]string) (string, error)", key)
		}
		fn := entry.Convert(invokeType).Interface().(InvokeFunc)
		caps[key] = fn
	}
	return caps, nil
}

func validateCapabilityName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("capability name is empty")
	}
	return nil
}
