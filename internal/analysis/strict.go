package analysis

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var unmarshalerType = reflect.TypeFor[yaml.Unmarshaler]()

// decodeStrict decodes node into out and rejects mapping keys that match no
// yaml tag of the target. Node.Decode does not inherit KnownFields from the
// document decoder, so every custom hook goes through here. label names the
// target in errors and defaults to its type name.
func decodeStrict(node *yaml.Node, out any, label string) error {
	if err := checkKnownFields(node, reflect.TypeOf(out), label); err != nil {
		return err
	}
	return node.Decode(out)
}

// checkKnownFields walks node against t. Types with their own UnmarshalYAML
// are left to their hook, which checks itself.
func checkKnownFields(node *yaml.Node, t reflect.Type, label string) error {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.AliasNode {
		return checkKnownFields(node.Alias, t, label)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		if node.Kind != yaml.MappingNode {
			return nil
		}
		if label == "" {
			label = t.Name()
		}
		fields := yamlFields(t)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Value == "<<" {
				continue
			}
			ft, ok := fields[key.Value]
			if !ok {
				return fmt.Errorf("line %d: field %s not found in %s (known: %s)", key.Line, key.Value, label, knownList(fields))
			}
			if err := checkKnownFields(val, ft, ""); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if node.Kind != yaml.SequenceNode {
			return nil
		}
		for _, item := range node.Content {
			if err := checkKnownFields(item, t.Elem(), ""); err != nil {
				return err
			}
		}
	case reflect.Map:
		if node.Kind != yaml.MappingNode {
			return nil
		}
		for i := 1; i < len(node.Content); i += 2 {
			if err := checkKnownFields(node.Content[i], t.Elem(), ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// yamlFields maps the yaml keys of a struct to their field types.
func yamlFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = strings.ToLower(f.Name)
		}
		fields[name] = f.Type
	}
	return fields
}

func knownList(fields map[string]reflect.Type) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
