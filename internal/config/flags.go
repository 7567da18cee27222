package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServerFlags holds the resolved server configuration after flag and
// environment binding (spec §6: "--addr", "--engine", "--log-level").
type ServerFlags struct {
	Addr     string
	Engine   string
	LogLevel string
	DataDir  string
}

// BindServerFlags registers the server's persistent flags on cmd and
// binds them into v, so KVD_ADDR / KVD_ENGINE / KVD_LOG_LEVEL /
// KVD_DATA_DIR environment variables and flags resolve through the same
// viper instance.
func BindServerFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String("addr", "127.0.0.1:4000", "TCP address to listen on")
	flags.String("engine", "", "storage engine kind (kvs or sled); default sled if the data directory has no prior persisted choice")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("data-dir", "./data", "data directory")

	v.SetEnvPrefix("kvd")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

// ResolveServerFlags reads the bound flags back out of v.
func ResolveServerFlags(v *viper.Viper) ServerFlags {
	return ServerFlags{
		Addr:     v.GetString("addr"),
		Engine:   v.GetString("engine"),
		LogLevel: v.GetString("log-level"),
		DataDir:  v.GetString("data-dir"),
	}
}
