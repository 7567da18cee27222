// Command kvs-cli operates directly on a local engine with no network
// hop (spec §6, "CLI (embedded, no network)"). Its exit-code contract on
// a remove miss differs from kvs-client: the message goes to stdout,
// not stderr.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"kvd/internal/config"
	"kvd/internal/engine"
)

func main() {
	var dataDir, kind string

	root := &cobra.Command{Use: "kvs-cli"}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", ".", "data directory")
	root.PersistentFlags().StringVar(&kind, "engine", "", "storage engine kind (kvs or sled); default sled if the data directory has no prior persisted choice")

	root.AddCommand(
		localSetCmd(&dataDir, &kind),
		localGetCmd(&dataDir, &kind),
		localRmCmd(&dataDir, &kind),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openLocalEngine(dataDir, kind string) (engine.Engine, error) {
	logger, err := config.NewLogger("error")
	if err != nil {
		return nil, err
	}
	eng, _, err := config.OpenEngine(dataDir, kind, logger, prometheus.NewRegistry())
	return eng, err
}

func localSetCmd(dataDir, kind *string) *cobra.Command {
	return &cobra.Command{
		Use:  "set KEY VALUE",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openLocalEngine(*dataDir, *kind)
			if err != nil {
				return err
			}
			defer eng.Close()
			return eng.Set(args[0], args[1])
		},
	}
}

// localGetCmd: hit prints the value then newline; miss prints
// "Key not found" to stdout; exit 0 either way.
func localGetCmd(dataDir, kind *string) *cobra.Command {
	return &cobra.Command{
		Use:  "get KEY",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openLocalEngine(*dataDir, *kind)
			if err != nil {
				return err
			}
			defer eng.Close()

			value, ok, err := eng.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Key not found")
				return nil
			}
			fmt.Println(value)
			return nil
		},
	}
}

// localRmCmd: success exits 0; miss prints "Key not found" to stdout and
// exits non-zero.
func localRmCmd(dataDir, kind *string) *cobra.Command {
	return &cobra.Command{
		Use:  "rm KEY",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openLocalEngine(*dataDir, *kind)
			if err != nil {
				return err
			}
			defer eng.Close()

			err = eng.Remove(args[0])
			if err == nil {
				return nil
			}
			var kerr *engine.Error
			if errors.As(err, &kerr) && kerr.Kind == engine.KindKeyNotFound {
				fmt.Println("Key not found")
				os.Exit(1)
			}
			return err
		},
	}
}
