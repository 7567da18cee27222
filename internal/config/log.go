package config

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NewLogger builds the go-kit logger shared by the server and CLI,
// filtered to levelName ("debug", "info", "warn", "error").
func NewLogger(levelName string) (log.Logger, error) {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var filter level.Option
	switch levelName {
	case "debug":
		filter = level.AllowDebug()
	case "info", "":
		filter = level.AllowInfo()
	case "warn":
		filter = level.AllowWarn()
	case "error":
		filter = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", levelName)
	}
	return level.NewFilter(logger, filter), nil
}
