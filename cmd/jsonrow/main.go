package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rowkit/jsonrow/jsonrow"
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "jsonrow",
	Short: "Schema-driven JSON row codec",
	Long: `jsonrow converts between JSON documents and structured rows
described by a compact type string, e.g.:

  jsonrow transcode --schema 'ROW<id BIGINT, name STRING, score DECIMAL(10, 2)>' < in.ndjson

Codec behavior is tuned with repeated --option flags using the codec's
option keys, e.g. --option ignore-parse-errors=true.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildCodec assembles a codec from the --schema and --option flags.
func buildCodec(schema string, options []string) (*jsonrow.Codec, error) {
	rowType, err := jsonrow.ParseType(schema)
	if err != nil {
		return nil, err
	}
	config := make(map[string]string, len(options))
	for _, opt := range options {
		k, v, ok := strings.Cut(opt, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --option %q, expected key=value", opt)
		}
		config[k] = v
	}
	return jsonrow.NewFromConfig(rowType, config)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
