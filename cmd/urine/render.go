package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/holmberd/go-urine/encoder"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// writeYAML renders a decoded value as a YAML document. Values without a YAML
// counterpart are written with local tags such as !tuple, !range or !class.
func writeYAML(w io.Writer, v any) error {
	node, err := render(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func render(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(x)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(x, 10)), nil
	case uint64:
		return scalar("!!int", strconv.FormatUint(x, 10)), nil
	case *big.Int:
		return scalar("!!int", x.String()), nil
	case float64:
		return scalar("!!float", formatFloat(x)), nil
	case complex128:
		return scalar("!complex", strconv.FormatComplex(x, 'g', -1, 128)), nil
	case string:
		return scalar("!!str", x), nil
	case []byte:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(x)), nil
	case encoder.ByteArray:
		return scalar("!bytearray", base64.StdEncoding.EncodeToString(x)), nil
	case []any:
		return renderSequence("!!seq", x)
	case encoder.Tuple:
		return renderSequence("!tuple", x)
	case encoder.Set:
		return renderSequence("!set", x)
	case encoder.FrozenSet:
		return renderSequence("!frozenset", x)
	case encoder.Dict:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, item := range x {
			k, err := render(item.Key)
			if err != nil {
				return nil, err
			}
			val, err := render(item.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, k, val)
		}
		return node, nil
	case encoder.Range:
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!range", Content: []*yaml.Node{
			scalar("!!str", "start"), scalar("!!int", strconv.FormatInt(x.Start, 10)),
			scalar("!!str", "stop"), scalar("!!int", strconv.FormatInt(x.Stop, 10)),
			scalar("!!str", "step"), scalar("!!int", strconv.FormatInt(x.Step, 10)),
		}}, nil
	case *encoder.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!class", Content: []*yaml.Node{
			scalar("!!str", "__class__"), scalar("!!str", x.Class),
		}}
		for _, a := range x.Attrs {
			val, err := render(a.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalar("!!str", a.Name), val)
		}
		return node, nil
	case time.Time:
		return scalar("!!timestamp", x.Format(time.RFC3339Nano)), nil
	case proto.Message:
		data, err := protojson.Marshal(x)
		if err != nil {
			return nil, err
		}
		return scalar("!proto", string(data)), nil
	default:
		return nil, fmt.Errorf("cannot render value of type %T", v)
	}
}

func renderSequence(tag string, items []any) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: tag}
	for _, item := range items {
		n, err := render(item)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, n)
	}
	return node, nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep integral floats distinguishable from integers.
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		s += ".0"
	}
	return s
}
