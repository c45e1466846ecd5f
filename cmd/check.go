package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/luci-doctor/internal/luci"
	"github.com/xkilldash9x/luci-doctor/internal/notify"
	"github.com/xkilldash9x/luci-doctor/internal/selfcheck"
)

var checkModel string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the endpoint catalog and report firmware support.",
	Long: `check logs into the router, probes every endpoint in the fixed catalog
exactly once, and prints a support report with a pre-filled issue-tracker
link. Mutating endpoints (reboot, firmware flash, wifi reconfiguration)
are never invoked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client := newClient()
		if _, err := client.Login(ctx); err != nil {
			return fmt.Errorf("login to %s failed: %w", client.Address(), err)
		}
		defer client.Logout(ctx)

		model := checkModel
		if model == "" {
			model = detectModel(ctx, client)
		}

		sink, err := notify.New(cfg.Report.Notify, cfg.Report.NotifyFile, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}

		sweep := selfcheck.New(
			client,
			notify.NewStaticMetadata(cfg.Report.IssueTracker),
			sink,
			logger,
		)

		report, err := sweep.Run(ctx, model)
		if err != nil {
			return err
		}

		logger.Info("report ready", zap.String("link", report.Link))
		return nil
	},
}

// detectModel asks the router for its model over init_info, falling back to
// "unknown" when the endpoint itself is unsupported.
func detectModel(ctx context.Context, client *luci.Client) string {
	data, err := client.InitInfo(ctx)
	if err == nil {
		if model, ok := data["model"].(string); ok && model != "" {
			return model
		}
		if hardware, ok := data["hardware"].(string); ok && hardware != "" {
			return hardware
		}
	}
	logger.Warn("could not detect router model", zap.Error(err))
	return "unknown"
}

func init() {
	checkCmd.Flags().StringVar(&checkModel, "model", "", "router model (detected via init_info when empty)")
	rootCmd.AddCommand(checkCmd)
}
