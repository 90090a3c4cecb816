// orchagent runs the interface reconciler against the forwarding plane.
// It drains INTF_TABLE from APPL_DB, maintains router interfaces and
// their derived routes, and serves resource counters over /metrics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/praveen-li/sonic-swss/pkg/orchagent/crm"
	"github.com/praveen-li/sonic-swss/pkg/orchagent/intfsorch"
	"github.com/praveen-li/sonic-swss/pkg/orchagent/port"
	"github.com/praveen-li/sonic-swss/pkg/orchagent/sai"
	"github.com/praveen-li/sonic-swss/pkg/orchagent/vrf"
	"github.com/praveen-li/sonic-swss/pkg/settings"
	"github.com/praveen-li/sonic-swss/pkg/swss"
	"github.com/praveen-li/sonic-swss/pkg/util"
	"github.com/praveen-li/sonic-swss/pkg/version"
)

// retryInterval paces drain cycles so deferred events are retried even
// when the bus is quiet.
const retryInterval = time.Second

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "orchagent",
	Short:   "SONiC interface orchestration agent",
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
		fmt.Fprintf(os.Stderr, "orchagent: %v\n", err)
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
	cfgDB := swss.NewDBConnector(cfg.RedisAddr, swss.ConfigDB)
	for _, db := range []*swss.DBConnector{appDB, cfgDB} {
		if err := db.Connect(ctx); err != nil {
			return err
		}
		defer db.Close()
	}

	mac, err := cfg.ParsedRouterMAC()
	if err != nil {
		return err
	}

	// No hardware driver attached: the virtual switch stands in, the way
	// sonic-sairedis's vslib does on a virtual platform.
	sw := sai.NewVSwitch()
	registry := prometheus.NewRegistry()
	gateway := sai.NewGateway(sw, crm.NewCounters(registry))

	defaultVRF, err := gateway.CreateVirtualRouter()
	if err != nil {
		return fmt.Errorf("creating default virtual router: %w", err)
	}
	vrfs := vrf.NewDirectory(defaultVRF)

	ports := port.NewDirectory()
	ports.SetCPUPort(port.Port{Alias: "CPU", PortID: sw.AllocObjectID()})
	if err := loadPorts(ctx, cfgDB, sw, ports); err != nil {
		return err
	}

	consumer := swss.NewConsumer()
	orch := intfsorch.New(consumer, gateway, ports, vrfs, mac)

	errorTable := swss.NewProducerStateTable(appDB, swss.IntfErrorTableName)
	orch.SetErrorSink(func(key, op, reason string) {
		if err := errorTable.Set(ctx, key, map[string]string{
			"op":     op,
			"reason": reason,
		}); err != nil {
			util.Errorf("Publishing error record for %s: %v", key, err)
		}
	})

	intfEvents := swss.NewConsumerStateTable(ctx, appDB, swss.IntfTableName)
	defer intfEvents.Close()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(retryInterval)
		defer ticker.Stop()
		util.Infof("orchagent draining %s", swss.IntfTableName)
		for {
			events, err := intfEvents.Pops(ctx)
			if err != nil {
				return err
			}
			for _, ev := range events {
				consumer.AddEvent(ev)
			}
			orch.DoTask()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			case <-intfEvents.Notifications():
			}
		}
	})

	return g.Wait()
}

// loadPorts seeds the port directory from CONFIG_DB. Ongoing port
// lifecycle is owned by the port manager; this is the boot snapshot.
func loadPorts(ctx context.Context, cfgDB *swss.DBConnector, sw *sai.VSwitch, ports *port.Directory) error {
	load := func(table string, kind port.Kind) error {
		tbl := swss.NewTable(cfgDB, table, "|")
		keys, err := tbl.Keys(ctx)
		if err != nil {
			return err
		}
		for _, alias := range keys {
			fields, _, err := tbl.Get(ctx, alias)
			if err != nil {
				return err
			}
			p := port.Port{Alias: alias, Kind: kind, MTU: 9100}
			if mtu := fields["mtu"]; mtu != "" {
				fmt.Sscanf(mtu, "%d", &p.MTU)
			}
			switch kind {
			case port.Phy:
				p.PortID = sw.AllocObjectID()
			case port.Lag:
				p.LagID = sw.AllocObjectID()
			case port.Vlan:
				p.VlanID = sw.AllocObjectID()
			}
			ports.Set(p)
			util.WithIntf(alias).Debugf("Loaded %s port, mtu %d", kind, p.MTU)
		}
		return nil
	}

	if err := load("PORT", port.Phy); err != nil {
		return err
	}
	if err := load("PORTCHANNEL", port.Lag); err != nil {
		return err
	}
	return load("VLAN", port.Vlan)
}
