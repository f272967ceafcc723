package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:         "report",
	Short:       "Fetch the board once and write all reports",
	Annotations: map[string]string{credentialsAnnotation: "required"},
	RunE:        runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close()

	set, err := d.pipeline.Run(ctx)
	if err != nil {
		zap.L().Error("Report run failed", zap.Error(err))
		return err
	}
	zap.L().Info("Reports written", zap.String("dir", cfg.Output.Dir), zap.Int("reports", len(set.All())))
	return nil
}
