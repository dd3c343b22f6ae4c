package config

import (
	"errors"
	"flag"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
)

// skippedConfigFlags are command line only; the config file may neither set nor document them.
var skippedConfigFlags = []string{"print_version", "config_file", "convert_file"}

// valueToString converts a config entry to its string representation suitable for flag setting.
func valueToString(v *structpb.Value) (string, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'g', -1, 64), nil
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue), nil
	case *structpb.Value_StructValue, *structpb.Value_ListValue:
		return "", errors.New("nested structs and lists are not supported")
	default:
		return "", errors.New("value is not set")
	}
}

// parseConfig decodes a .txtpb config into flag values.
func parseConfig(content []byte) (map[ /*flagName*/ string] /*flagValue*/ string, error) {
	conf := new(structpb.Struct)
	if err := prototext.Unmarshal(content, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	values := make(map[string]string, len(conf.GetFields()))
	for name, value := range conf.GetFields() {
		stringValue, err := valueToString(value)
		if err != nil {
			return nil, fmt.Errorf("failed to convert '%s': %w", name, err)
		}
		values[name] = stringValue
	}
	return values, nil
}

// setConfigFlags sets the given values to the global flag variables, in name order. Either every value is applied or,
// on error, every targeted flag is put back to its previous value.
func setConfigFlags(values map[ /*flagName*/ string] /*flagValue*/ string) error {
	names := slices.Sorted(maps.Keys(values))
	prevValues := make(map[ /*flagName*/ string] /*flagValue*/ string, len(names))
	for _, name := range names {
		if slices.Contains(skippedConfigFlags, name) {
			return fmt.Errorf("flag '%s' can only be set on the command line", name)
		}
		f := flag.Lookup(name)
		if f == nil {
			return fmt.Errorf("config file sets unknown flag '%s'", name)
		}
		prevValues[name] = f.Value.String()
	}
	for _, name := range names {
		if err := flag.Set(name, values[name]); err != nil {
			restoreFlags(prevValues)
			return fmt.Errorf("failed to set flag %s: %w", name, err)
		}
	}
	return nil
}

// restoreFlags puts back flag values recorded with Value.String().
func restoreFlags(prevValues map[ /*flagName*/ string] /*flagValue*/ string) {
	for name, prevValue := range prevValues {
		_ = flag.Lookup(name).Value.Set(prevValue)
	}
}

// ValidateFile checks the config file at `path` without applying it. An error exists in the results for each entry
// that is unsupported, targets an unknown flag, or holds a value the flag rejects.
func ValidateFile(path string) []error {
	values, err := readFile(path)
	if err != nil {
		return []error{err}
	}
	errs := make([]error, 0)
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if slices.Contains(skippedConfigFlags, name) {
			errs = append(errs, fmt.Errorf("flag '%s' can only be set on the command line", name))
			continue
		}
		f := flag.Lookup(name)
		if f == nil {
			errs = append(errs, fmt.Errorf("config file sets unknown flag '%s'", name))
			continue
		}
		// Set and roll back to learn whether the flag accepts the value.
		prevValue := f.Value.String()
		// A rejected value may still have overwritten the flag, so restore on both paths.
		setErr := f.Value.Set(values[name])
		_ = f.Value.Set(prevValue)
		if setErr != nil {
			errs = append(errs, fmt.Errorf("flag '%s' rejects value '%s': %w", name, values[name], setErr))
		}
	}
	return errs
}

// CollectUnregisteredFlags collects all flags that have no entry in the config file at `path`.
// An error exists in the results corresponding to each unregistered flag.
func CollectUnregisteredFlags(path string) []error {
	values, err := readFile(path)
	if err != nil {
		return []error{err}
	}
	errs := make([]error, 0)
	flag.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "test.") { // Skip test flags.
			return
		}
		if slices.Contains(skippedConfigFlags, f.Name) {
			return
		}
		if _, flagHasConfigEntry := values[f.Name]; !flagHasConfigEntry {
			errs = append(errs, fmt.Errorf("flag '%s' has no entry in config file %s", f.Name, path))
		}
	})
	return errs
}
