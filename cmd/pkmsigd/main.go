package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/pkmsig/app"
	"github.com/iov-one/pkmsig/commands"
	"github.com/iov-one/pkmsig/commands/server"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/x/multisig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome         = "home"
	flagLogLevel     = "log_level"
	flagDebug        = "debug"
	flagBind         = "bind"
	flagMetricsAddr  = "metrics_addr"
	flagForce        = "force"
	flagBech32Prefix = "bech32_prefix"
	flagTicker       = "ticker"
	flagDecimals     = "decimals"
	flagProposalTTL  = "proposal_ttl"
	flagOut          = "out"
)

var rootCmd = &cobra.Command{
	Use:           "pkmsigd",
	Short:         "passkey multisig wallet ABCI application",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".pkmsig")
	rootCmd.PersistentFlags().String(flagHome, defaultHome, "directory to store files under")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level: debug, info, error or none")
	rootCmd.PersistentFlags().Bool(flagDebug, false, "include stack traces in ABCI errors")

	viper.SetEnvPrefix("PKMSIG")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		initCommand(),
		startCommand(),
		validateCommand(),
		testgenCommand(),
		versionCommand(),
	)
}

func newLogger() (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	opt, err := log.AllowLevel(viper.GetString(flagLogLevel))
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt).With("module", app.Name), nil
}

func initCommand() *cobra.Command {
	def := multisig.DefaultConfiguration()
	cmd := &cobra.Command{
		Use:   "init",
		Short: "add the application state to an existing tendermint genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			conf := multisig.Configuration{
				Bech32Prefix: viper.GetString(flagBech32Prefix),
				Ticker:       strings.ToUpper(viper.GetString(flagTicker)),
				Decimals:     viper.GetUint32(flagDecimals),
				ProposalTTL:  viper.GetInt64(flagProposalTTL),
			}
			gen := func([]string) (json.RawMessage, error) {
				return app.GenInitOptions(conf)
			}
			return server.InitCmd(gen, logger, viper.GetString(flagHome), viper.GetBool(flagForce), args)
		},
	}
	cmd.Flags().Bool(flagForce, false, "overwrite an existing app_state")
	cmd.Flags().String(flagBech32Prefix, def.Bech32Prefix, "human readable part of wallet addresses")
	cmd.Flags().String(flagTicker, def.Ticker, "ticker of the wallet currency")
	cmd.Flags().Uint32(flagDecimals, def.Decimals, "decimal places of the wallet currency")
	cmd.Flags().Int64(flagProposalTTL, def.ProposalTTL, "seconds a proposal stays valid, 0 for forever")
	mustBind(cmd)
	return cmd
}

func startCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "run the abci server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			conf := server.StartConfig{
				Home:        viper.GetString(flagHome),
				Bind:        viper.GetString(flagBind),
				MetricsAddr: viper.GetString(flagMetricsAddr),
				Debug:       viper.GetBool(flagDebug),
			}
			return server.StartCmd(app.GenerateApp, logger, conf)
		},
	}
	cmd.Flags().String(flagBind, "tcp://localhost:26658", "address server listens on")
	cmd.Flags().String(flagMetricsAddr, "", "address prometheus metrics are served on, empty to disable")
	mustBind(cmd)
	return cmd
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [genesis.json...]",
		Short: "check that the app_state of genesis files can be loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{server.GenesisPath(viper.GetString(flagHome))}
			}
			if err := server.ValidateGenesis(app.Initializers(), args); err != nil {
				return err
			}
			fmt.Println("genesis is valid")
			return nil
		},
	}
}

func testgenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testgen",
		Short: "write example messages in json and binary encoding",
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.TestGenCmd(app.Examples(), viper.GetString(flagOut))
		},
	}
	cmd.Flags().String(flagOut, "testdata", "output directory")
	mustBind(cmd)
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the application version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(weave.Version())
		},
	}
}

func mustBind(cmd *cobra.Command) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
