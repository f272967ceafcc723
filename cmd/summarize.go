package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chxlky/trello-report/internal/board"
	"github.com/chxlky/trello-report/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var summaryOut string

var summarizeCmd = &cobra.Command{
	Use:   "summarize <export.json>",
	Short: "Summarize a Trello board JSON export by list",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summaryOut, "out", "o", "", "also write the summary to this file")
}

// decodeExport reads an exported board. UTF-8 is assumed unless a byte order
// mark says UTF-16.
func decodeExport(r io.Reader) (*models.Board, error) {
	reader := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	var b models.Board
	if err := json.NewDecoder(reader).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode board export: %w", err)
	}
	return &b, nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	zap.L().Info("Reading board export", zap.String("file", args[0]))
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	raw, err := decodeExport(f)
	if err != nil {
		return err
	}

	renderer, err := rendererFromConfig(cfg.Report)
	if err != nil {
		return err
	}
	summary := renderer.RenderExport(board.Normalize(raw))

	if summaryOut != "" {
		if err := os.WriteFile(summaryOut, []byte(summary.Body), 0o644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}
