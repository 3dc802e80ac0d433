package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/holmberd/go-urine/datastore"
	"github.com/holmberd/go-urine/encoder"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// app holds the global flags and the state built from them before a subcommand runs.
type app struct {
	redisAddr string
	namespace string
	verbose   bool

	logger *zap.Logger
	enc    *encoder.Encoder
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "urine",
		Short:         "Encode, inspect and store documents in the urine binary format",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.redisAddr, "redis-addr", "localhost:6379", "Redis server address used by put and get")
	flags.StringVar(&a.namespace, "namespace", "", "key namespace used by put and get")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable development logging to stderr")

	root.AddCommand(
		newEncodeCmd(a),
		newInspectCmd(a),
		newTagsCmd(),
		newPutCmd(a),
		newGetCmd(a),
	)
	return root
}

func (a *app) setup() error {
	a.logger = zap.NewNop()
	if a.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		a.logger = logger
	}

	a.enc = encoder.New(encoder.WithLogger(a.logger))
	if err := encoder.Register[time.Time](a.enc, encoder.TimeExtension{}); err != nil {
		return err
	}
	if err := encoder.RegisterProto[*timestamppb.Timestamp](a.enc); err != nil {
		return err
	}
	if err := encoder.RegisterProto[*durationpb.Duration](a.enc); err != nil {
		return err
	}
	return nil
}

// datastore connects to Redis. The returned close function releases the connection.
func (a *app) datastore() (*datastore.Client, func(), error) {
	rsClient := redis.NewClient(&redis.Options{Addr: a.redisAddr})
	ds, err := datastore.NewClient(rsClient, a.enc, datastore.WithLogger(a.logger))
	if err != nil {
		_ = rsClient.Close()
		return nil, nil, err
	}
	return ds, func() { _ = rsClient.Close() }, nil
}

// readInput reads the file named by the first argument, or stdin when no file is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
