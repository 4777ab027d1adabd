package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var transcodeCmd = &cobra.Command{
	Use:   "transcode",
	Short: "Decode NDJSON on stdin and re-encode it to stdout",
	Long: `Reads one JSON document per line from stdin, decodes each
against the schema, and writes the re-encoded document to stdout.
Records skipped under ignore-parse-errors are logged and omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, _ := cmd.Flags().GetString("schema")
		options, _ := cmd.Flags().GetStringArray("option")

		codec, err := buildCodec(schema, options)
		if err != nil {
			return err
		}

		out := bufio.NewWriter(os.Stdout)
		defer out.Flush()

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}
			record, err := codec.Decode(raw)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if record == nil {
				logger.Warn("record skipped", zap.Int("line", line))
				continue
			}
			encoded, err := codec.Encode(record)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			out.Write(encoded)
			out.WriteByte('\n')
		}
		return scanner.Err()
	},
}

func init() {
	transcodeCmd.Flags().String("schema", "", "row type string, e.g. 'ROW<id BIGINT, name STRING>'")
	transcodeCmd.Flags().StringArray("option", nil, "codec option key=value (repeatable)")
	_ = transcodeCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(transcodeCmd)
}
