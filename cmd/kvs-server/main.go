// Command kvs-server runs the TCP front-end over a chosen storage
// engine (spec §6).
package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kvd/internal/config"
	"kvd/internal/pool"
	"kvd/internal/server"
)

func main() {
	v := viper.New()
	root := &cobra.Command{
		Use:   "kvs-server",
		Short: "Run the kvd TCP key-value server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(config.ResolveServerFlags(v))
		},
	}
	if err := config.BindServerFlags(root, v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags config.ServerFlags) error {
	logger, err := config.NewLogger(flags.LogLevel)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()

	eng, cloneEngine, err := config.OpenEngine(flags.DataDir, flags.Engine, logger, reg)
	if err != nil {
		return err
	}
	defer eng.Close()

	level.Info(logger).Log("msg", "engine opened", "kind", eng.Kind(), "dir", flags.DataDir)

	p := pool.NewSharedQueuePool(0, pool.WithLogger(logger), pool.WithRegisterer(reg))
	defer p.Shutdown()

	srv := server.New(flags.Addr, cloneEngine, p,
		server.WithLogger(logger), server.WithRegisterer(reg))

	return srv.Run()
}
