package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Decode NDJSON on stdin and report a summary",
	Long: `Reads one JSON document per line from stdin and decodes each
against the schema. Decode failures are logged per line; a summary is
printed at the end. Exits non-zero if any record failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, _ := cmd.Flags().GetString("schema")
		options, _ := cmd.Flags().GetStringArray("option")

		codec, err := buildCodec(schema, options)
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		var ok, skipped, failed, line int
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}
			record, err := codec.Decode(raw)
			switch {
			case err != nil:
				failed++
				logger.Error("decode failed", zap.Int("line", line), zap.Error(err))
			case record == nil:
				skipped++
				logger.Warn("record skipped", zap.Int("line", line))
			default:
				ok++
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "ok=%d skipped=%d failed=%d\n", ok, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d record(s) failed to decode", failed)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("schema", "", "row type string, e.g. 'ROW<id BIGINT, name STRING>'")
	validateCmd.Flags().StringArray("option", nil, "codec option key=value (repeatable)")
	_ = validateCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(validateCmd)
}
