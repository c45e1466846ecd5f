package cmd

import (
	"context"
	"fmt"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/luci-doctor/internal/luci"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the router's misystem/status payload.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(cmd, (*luci.Client).Status)
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Print the router's device list.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(cmd, (*luci.Client).DeviceList)
	},
}

// runRead wraps one authenticated read: login, call, pretty-print, logout.
func runRead(cmd *cobra.Command, call func(*luci.Client, context.Context) (luci.Response, error)) error {
	ctx := cmd.Context()

	client := newClient()
	if _, err := client.Login(ctx); err != nil {
		return fmt.Errorf("login to %s failed: %w", client.Address(), err)
	}
	defer client.Logout(ctx)

	data, err := call(client, ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(devicesCmd)
}
