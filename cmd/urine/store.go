package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/holmberd/go-urine/datastore"
	"github.com/holmberd/go-urine/encoder"
	"github.com/holmberd/go-urine/keyfactory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) buildKey(kind, id string) (*keyfactory.Key, error) {
	return keyfactory.NewKeyBuilderWithNamespace(a.namespace).WithKind(kind).WithID(id).Build()
}

func newPutCmd(a *app) *cobra.Command {
	var (
		format string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "put <kind> <id> [file]",
		Short: "Encode a JSON or YAML document and store it in Redis",
		Long: `Put encodes a document like the encode command and stores it under
the key "<kind>:<id>". An id of "-" generates a random id, which is printed.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id := args[0], args[1]
			if id == "-" {
				id = keyfactory.GenerateRandomKey()
			}
			key, err := a.buildKey(kind, id)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args[2:])
			if err != nil {
				return err
			}
			doc, err := parseDocument(format, input)
			if err != nil {
				return err
			}

			ds, closeDS, err := a.datastore()
			if err != nil {
				return err
			}
			defer closeDS()
			if err := ds.Put(cmd.Context(), key, doc, ttl); err != nil {
				return err
			}
			a.logger.Info("stored document", zap.String("key", key.RedisKey()))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key.RedisKey())
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "input format: json or yaml")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expire the key after this duration (0 keeps it)")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Fetch a stored document and print it as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.buildKey(args[0], args[1])
			if err != nil {
				return err
			}
			ds, closeDS, err := a.datastore()
			if err != nil {
				return err
			}
			defer closeDS()

			data, err := ds.GetRaw(cmd.Context(), key)
			if errors.Is(err, datastore.ErrKeyNotFound) {
				return fmt.Errorf("no document stored under %q", key.RedisKey())
			}
			if err != nil {
				return err
			}
			v, err := a.enc.Decoder(encoder.OrderedDicts()).Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode %q: %w", key.RedisKey(), err)
			}
			return writeYAML(cmd.OutOrStdout(), v)
		},
	}
}
