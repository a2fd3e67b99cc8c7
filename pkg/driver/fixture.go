package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"iterati/pkg/vm"
)

// File is the on-disk shape of a conformance fixture: a flat list of
// independent scenarios.
type File struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario describes one drive of the iteration protocol: a source to
// iterate, an optional view method and early-exit bound, and either
// the values expected in order or a fragment of the expected error.
type Scenario struct {
	Name      string        `yaml:"name"`
	Source    Source        `yaml:"source"`
	View      string        `yaml:"view,omitempty"`
	Take      int           `yaml:"take,omitempty"`
	Want      []interface{} `yaml:"want,omitempty"`
	WantError string        `yaml:"wantError,omitempty"`
}

// Source describes the value a scenario iterates. Kind selects the
// constructor; the other fields feed it.
type Source struct {
	Kind     string        `yaml:"kind"` // array, string, map, set, list, value
	Elements []interface{} `yaml:"elements,omitempty"`
	Entries  []Entry       `yaml:"entries,omitempty"`
	Text     string        `yaml:"text,omitempty"`
	Value    interface{}   `yaml:"value,omitempty"`
}

// Entry is one key-value pair of a map source.
type Entry struct {
	Key   interface{} `yaml:"key"`
	Value interface{} `yaml:"value"`
}

// Result pairs a scenario name with its outcome. A nil Err means the
// scenario passed.
type Result struct {
	Scenario string
	Err      error
}

// RunFile loads a fixture file and runs every scenario, at most jobs
// at a time (0 means no limit). Scenarios are independent, so each one
// runs in its own session on its own goroutine; results come back in
// file order. The returned error covers loading and engine setup only,
// per-scenario failures live in the results.
func RunFile(ctx context.Context, path string, jobs int) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("%s: no scenarios", path)
	}

	results := make([]Result, len(file.Scenarios))
	group, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		group.SetLimit(jobs)
	}
	for i, scenario := range file.Scenarios {
		i, scenario := i, scenario
		results[i].Scenario = scenario.Name
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			session, err := New()
			if err != nil {
				return err
			}
			results[i].Err = session.Run(scenario)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run executes one scenario against this session and reports whether
// the observed outcome matches the expected one.
func (s *Session) Run(scenario Scenario) error {
	got, err := s.collect(scenario)

	if scenario.WantError != "" {
		if err == nil {
			return fmt.Errorf("expected an error containing %q, iteration succeeded with %d value(s)", scenario.WantError, len(got))
		}
		if !strings.Contains(err.Error(), scenario.WantError) {
			return fmt.Errorf("expected an error containing %q, got %q", scenario.WantError, err.Error())
		}
		return nil
	}
	if err != nil {
		return err
	}

	want := make([]vm.Value, len(scenario.Want))
	for i, raw := range scenario.Want {
		value, err := toValue(raw)
		if err != nil {
			return fmt.Errorf("want[%d]: %v", i, err)
		}
		want[i] = value
	}
	if len(got) != len(want) {
		return fmt.Errorf("expected %d value(s), got %d: %s", len(want), len(got), inspectAll(got))
	}
	for i := range want {
		if !valueEqual(got[i], want[i]) {
			return fmt.Errorf("value %d: expected %s, got %s", i, want[i].Inspect(), got[i].Inspect())
		}
	}
	return nil
}

// collect drives the protocol for one scenario and gathers the yielded
// values in order. With a Take bound the drive exits early through
// IteratorClose; otherwise the source is drained to exhaustion.
func (s *Session) collect(scenario Scenario) ([]vm.Value, error) {
	machine := s.vmInstance

	source, err := s.buildSource(scenario.Source)
	if err != nil {
		return nil, err
	}

	iterable := source
	if scenario.View != "" {
		iterable, err = machine.Invoke(source, scenario.View, nil)
		if err != nil {
			return nil, err
		}
	}

	if scenario.Take <= 0 {
		return machine.IterableToList(iterable)
	}

	iterator, err := machine.GetIterator(iterable)
	if err != nil {
		return nil, err
	}
	var got []vm.Value
	for len(got) < scenario.Take {
		value, done, err := machine.IteratorStep(iterator)
		if err != nil {
			return nil, err
		}
		if done {
			return got, nil
		}
		got = append(got, value)
	}
	// Leaving the loop early is an abrupt exit, so the iterator gets
	// its cleanup call. The break completion coming back unchanged is
	// the expected outcome; anything else is the close step's verdict.
	closeErr := machine.IteratorClose(iterator, vm.NewBreakCompletion(""))
	var abrupt *vm.AbruptCompletion
	if closeErr != nil && (!errors.As(closeErr, &abrupt) || abrupt.Action != vm.ActionBreak) {
		return nil, closeErr
	}
	debugPrintf("// [Driver] %s: early exit after %d value(s)\n", scenario.Name, len(got))
	return got, nil
}

// buildSource constructs the scenario's source value.
func (s *Session) buildSource(src Source) (vm.Value, error) {
	machine := s.vmInstance
	switch src.Kind {
	case "array":
		elements, err := toValues(src.Elements)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewArrayFromSlice(elements), nil

	case "string":
		return vm.NewString(src.Text), nil

	case "map":
		mapValue := vm.NewMap()
		mapObj := mapValue.AsMap()
		for _, entry := range src.Entries {
			key, err := toValue(entry.Key)
			if err != nil {
				return vm.Undefined, err
			}
			value, err := toValue(entry.Value)
			if err != nil {
				return vm.Undefined, err
			}
			mapObj.Set(key, value)
		}
		return mapValue, nil

	case "set":
		setValue := vm.NewSet()
		setObj := setValue.AsSet()
		for _, raw := range src.Elements {
			value, err := toValue(raw)
			if err != nil {
				return vm.Undefined, err
			}
			setObj.Add(value)
		}
		return setValue, nil

	case "list":
		elements, err := toValues(src.Elements)
		if err != nil {
			return vm.Undefined, err
		}
		return machine.CreateListIterator(elements), nil

	case "value":
		return toValue(src.Value)

	default:
		return vm.Undefined, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// toValue converts a decoded yaml scalar or sequence to a guest value.
func toValue(raw interface{}) (vm.Value, error) {
	switch v := raw.(type) {
	case nil:
		return vm.Null, nil
	case bool:
		return vm.BooleanValue(v), nil
	case int:
		return vm.IntegerValue(int32(v)), nil
	case int64:
		return vm.IntegerValue(int32(v)), nil
	case float64:
		return vm.NumberValue(v), nil
	case string:
		return vm.NewString(v), nil
	case []interface{}:
		elements, err := toValues(v)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewArrayFromSlice(elements), nil
	default:
		return vm.Undefined, fmt.Errorf("unsupported fixture value %T", raw)
	}
}

func toValues(raw []interface{}) ([]vm.Value, error) {
	values := make([]vm.Value, len(raw))
	for i, item := range raw {
		value, err := toValue(item)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// valueEqual compares two guest values: arrays element-wise, anything
// else by SameValueZero.
func valueEqual(a, b vm.Value) bool {
	if a.IsArray() && b.IsArray() {
		left, right := a.AsArray(), b.AsArray()
		if left.Length() != right.Length() {
			return false
		}
		for i := 0; i < left.Length(); i++ {
			if !valueEqual(left.Get(i), right.Get(i)) {
				return false
			}
		}
		return true
	}
	return a.Is(b)
}

func inspectAll(values []vm.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
