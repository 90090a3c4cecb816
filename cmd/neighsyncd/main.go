// neighsyncd mirrors kernel neighbor state into APPL_DB NEIGH_TABLE.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praveen-li/sonic-swss/pkg/neighsync"
	"github.com/praveen-li/sonic-swss/pkg/settings"
	"github.com/praveen-li/sonic-swss/pkg/swss"
	"github.com/praveen-li/sonic-swss/pkg/util"
	"github.com/praveen-li/sonic-swss/pkg/version"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "neighsyncd",
	Short:   "Publish kernel neighbor state into APPL_DB",
	Version: version.Info(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "/etc/sonic/swss.yaml", "settings file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override configured log level")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "neighsyncd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := settings.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := util.SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.LogJSON {
		util.SetJSONFormat()
	}

	appDB := swss.NewDBConnector(cfg.RedisAddr, swss.ApplDB)
	if err := appDB.Connect(ctx); err != nil {
		return err
	}
	defer appDB.Close()

	return neighsync.New(appDB).Run(ctx)
}
