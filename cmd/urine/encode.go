package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		format string
		asHex  bool
	)
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a JSON or YAML document",
		Long: `Encode reads a JSON or YAML document from a file or stdin and writes
the encoded bytes to stdout. Objects are encoded as dicts with sorted keys.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := parseDocument(format, input)
			if err != nil {
				return err
			}
			data, err := a.enc.Encode(doc)
			if err != nil {
				return fmt.Errorf("failed to encode document: %w", err)
			}
			a.logger.Debug("encoded document", zap.Int("input_bytes", len(input)), zap.Int("bytes", len(data)))

			out := cmd.OutOrStdout()
			if asHex {
				_, err = fmt.Fprintln(out, hex.EncodeToString(data))
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "input format: json or yaml")
	cmd.Flags().BoolVar(&asHex, "hex", false, "write hex instead of raw bytes")
	return cmd
}
