package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var jsonAPI = jsoniter.Config{UseNumber: true}.Froze()

// parseDocument parses a JSON or YAML document into values the encoder accepts.
// JSON numbers keep their precision: integers become int64 or *big.Int.
func parseDocument(format string, data []byte) (any, error) {
	var v any
	switch format {
	case formatJSON:
		if err := jsonAPI.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("invalid JSON document: %w", err)
		}
	case formatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML document: %w", err)
		}
		yv, err := fromYAML(&doc)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML document: %w", err)
		}
		return yv, nil
	default:
		return nil, fmt.Errorf("unknown input format %q (want %s or %s)", format, formatJSON, formatYAML)
	}
	return normalize(v)
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return parseNumber(x.String())
	case []any:
		for i, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
		return x, nil
	case map[string]any:
		for k, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	case map[any]any:
		for k, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	default:
		return v, nil
	}
}

func parseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if i, ok := new(big.Int).SetString(s, 10); ok {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}

// fromYAML converts a YAML node tree into values the encoder accepts. Integers
// outside the int64 and uint64 ranges become *big.Int, as in JSON documents.
func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil // Empty document.
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.MappingNode:
		return yamlMapping(n)
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node kind %d", n.Line, n.Kind)
	}
}

func yamlScalar(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	if _, ok := v.(float64); !ok {
		return v, nil
	}
	if n.Style&yaml.TaggedStyle != 0 && n.ShortTag() == "!!float" {
		return v, nil
	}
	// Integers beyond uint64 resolve as floats; keep them exact.
	if i, ok := new(big.Int).SetString(strings.ReplaceAll(n.Value, "_", ""), 0); ok {
		return i, nil
	}
	return v, nil
}

// yamlMapping returns map[string]any when every key is a string and map[any]any
// otherwise. Merge keys ("<<") copy entries the mapping doesn't set itself.
func yamlMapping(n *yaml.Node) (any, error) {
	keys := make([]any, 0, len(n.Content)/2)
	values := make([]any, 0, len(n.Content)/2)
	var merged []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if kn.Kind == yaml.ScalarNode && kn.ShortTag() == "!!merge" {
			merged = append(merged, vn)
			continue
		}
		k, err := fromYAML(kn)
		if err != nil {
			return nil, err
		}
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, fmt.Errorf("line %d: mapping key of type %T is not supported", kn.Line, k)
		}
		v, err := fromYAML(vn)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}

	m := make(map[any]any, len(keys))
	for i, k := range keys {
		m[k] = values[i]
	}
	for _, mn := range merged {
		if mn.Kind == yaml.AliasNode {
			mn = mn.Alias
		}
		sources := []*yaml.Node{mn}
		if mn.Kind == yaml.SequenceNode {
			sources = mn.Content
		}
		for _, src := range sources {
			sv, err := fromYAML(src)
			if err != nil {
				return nil, err
			}
			if err := mergeInto(m, sv); err != nil {
				return nil, fmt.Errorf("line %d: %w", mn.Line, err)
			}
		}
	}

	strKeys := make(map[string]any, len(m))
	for k, v := range m {
		s, ok := k.(string)
		if !ok {
			return m, nil
		}
		strKeys[s] = v
	}
	return strKeys, nil
}

func mergeInto(m map[any]any, src any) error {
	switch x := src.(type) {
	case map[string]any:
		for k, v := range x {
			if _, ok := m[k]; !ok {
				m[k] = v
			}
		}
	case map[any]any:
		for k, v := range x {
			if _, ok := m[k]; !ok {
				m[k] = v
			}
		}
	default:
		return fmt.Errorf("merge value of type %T is not a mapping", src)
	}
	return nil
}
