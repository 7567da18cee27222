package config

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"kvd/internal/engine"
	"kvd/internal/kvs"
	"kvd/internal/sled"
)

// OpenEngine opens the named engine kind ("kvs" or "sled") rooted at
// dataDir, after verifying/persisting the choice via EnsureEngineKind.
// Alongside the opened engine.Engine it returns a clone factory: calling
// it yields a fresh handle sharing the same underlying storage, safe to
// hand to a different goroutine (e.g. one per server connection).
// engine.Engine itself carries no Clone method - clone semantics differ
// in concreteness across engine kinds, so the factory closes over the
// concrete *kvs.Store or *sled.Store instead.
//
// kindName may be "", meaning the caller didn't request a kind
// explicitly: it resolves to whatever is already persisted in dataDir,
// or "sled" if dataDir hasn't been initialized yet (spec §6: "--engine
// kvs|sled (default sled if no prior choice persisted)").
func OpenEngine(dataDir, kindName string, logger log.Logger, reg prometheus.Registerer) (engine.Engine, func() engine.Engine, error) {
	kind := engine.Kind(kindName)
	if kindName == "" {
		resolved, err := DefaultEngineKind(dataDir)
		if err != nil {
			return nil, nil, err
		}
		kind = resolved
	}
	if kind != engine.KindKVS && kind != engine.KindSled {
		return nil, nil, fmt.Errorf("unknown engine kind %q (want %q or %q)", kind, engine.KindKVS, engine.KindSled)
	}
	if err := EnsureEngineKind(dataDir, kind); err != nil {
		return nil, nil, err
	}

	switch kind {
	case engine.KindKVS:
		st, err := kvs.Open(dataDir, kvs.WithLogger(logger), kvs.WithRegisterer(reg))
		if err != nil {
			return nil, nil, err
		}
		return st, func() engine.Engine { return st.Clone() }, nil
	default:
		st, err := sled.Open(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() engine.Engine { return st.Clone() }, nil
	}
}
