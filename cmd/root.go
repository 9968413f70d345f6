package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"snaplb/balancer"
	"snaplb/config"
	"snaplb/selector"
	"snaplb/stats"
	"snaplb/topology"
)

var (
	cfgPath  string // Path to the YAML config file
	logLevel string // Log verbosity level
	interval time.Duration
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "snaplb",
	Short: "Thread-aware load-balancing snapshot engine",
}

// runCmd wires the etcd topology to a balancer and logs selections, which
// is mainly useful for watching snapshot rebuilds against a live etcd.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the balancer against an etcd-backed topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		factory, err := selector.NewFactory(cfg.Strategy)
		if err != nil {
			return err
		}

		topo, err := topology.NewEtcdTopology(cfg.Etcd.Endpoints)
		if err != nil {
			return err
		}
		defer topo.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		priSet := topology.NewPrioritySet(len(cfg.Priorities))
		priSet.SetLoads(cfg.Loads())
		if err := topo.Sync(ctx, cfg.Etcd.Service, priSet); err != nil {
			return err
		}

		st := stats.New()
		lb := balancer.New(priSet, factory, st)
		if err := lb.Initialize(); err != nil {
			return err
		}
		go topo.Watch(ctx, cfg.Etcd.Service, priSet)

		logrus.Infof("balancer running: service=%s strategy=%s priorities=%d",
			cfg.Etcd.Service, cfg.Strategy, len(cfg.Priorities))

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logrus.Infof("shutting down, panic selections: %d", st.PanicCount())
				return nil
			case <-ticker.C:
				sel := lb.NewSelector()
				if host := sel.ChooseHost(nil); host != nil {
					logrus.Infof("selected %s (priority %d, healthy=%t)", host.Addr, host.Priority, host.Healthy)
				} else {
					logrus.Warn("no host available")
				}
			}
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&cfgPath, "config", "snaplb.yaml", "path to config file")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "selection interval")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
