package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/luci-doctor/internal/config"
	"github.com/xkilldash9x/luci-doctor/internal/luci"
	"github.com/xkilldash9x/luci-doctor/internal/observability"
)

var (
	cfgFile string

	// cfg and logger are populated by the root PersistentPreRunE and shared
	// by every subcommand.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "luci-doctor",
	Short: "Diagnose MiWiFi router firmware support over the Luci HTTP API.",
	Long: `luci-doctor authenticates against a MiWiFi-class router's proprietary
Luci HTTP API and probes a fixed catalog of endpoints to determine which
ones the firmware supports, producing a report suitable for a support
request.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env next to the binary is a convenient place for the router
		// password; absence is not an error.
		_ = godotenv.Load()

		if err := initializeViper(); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		logger = observability.NewLogger(cfg.Logger)
		logger.Debug("configuration loaded",
			zap.String("router", cfg.Router.Address),
			zap.Duration("timeout", cfg.Router.Timeout),
		)
		return nil
	},
}

// Execute runs the root command tree.
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("address", luci.DefaultAddress, "router address (hostname or IP)")
	rootCmd.PersistentFlags().String("password", "", "router admin password")
	rootCmd.PersistentFlags().Duration("timeout", luci.DefaultTimeout, "per-request timeout")

	_ = viper.BindPFlag("router.address", rootCmd.PersistentFlags().Lookup("address"))
	_ = viper.BindPFlag("router.password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("router.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

// initializeViper wires defaults, config file discovery, and env binding.
func initializeViper() error {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LUCI_DOCTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults, env, and flags carry the day.
	}
	return nil
}

// newClient builds a Luci client from the loaded configuration.
func newClient() *luci.Client {
	return luci.NewClient(luci.Config{
		Address:  cfg.Router.Address,
		Password: cfg.Router.Password,
		Timeout:  cfg.Router.Timeout,
	}, logger)
}
