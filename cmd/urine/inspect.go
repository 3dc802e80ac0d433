package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"text/tabwriter"

	"github.com/holmberd/go-urine/encoder"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var fromHex bool
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Decode encoded data and print it as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if fromHex {
				data, err = hex.DecodeString(string(bytes.Join(bytes.Fields(data), nil)))
				if err != nil {
					return fmt.Errorf("invalid hex input: %w", err)
				}
			}
			v, err := a.enc.Decoder(encoder.OrderedDicts()).Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode input: %w", err)
			}
			return writeYAML(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&fromHex, "hex", false, "read hex instead of raw bytes")
	return cmd
}

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the wire type tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tNAME")
			for _, tag := range encoder.Tags() {
				fmt.Fprintf(tw, "0x%02x\t%s\n", uint8(tag), tag)
			}
			return tw.Flush()
		},
	}
}
