package repository

import (
	"context"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const memoryCleanupInterval = time.Minute

var (
	ErrUnknownStore = errors.New("unknown session store")

	_ scs.CtxStore = (*RedisStore)(nil)
)

type Params struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

// New returns the session store selected by session.store and ties its
// background resources to the fx lifecycle.
func New(p Params) (scs.Store, error) {
	switch p.Config.Session.Store {
	case config.StoreMemory:
		ms := memstore.NewWithCleanupInterval(memoryCleanupInterval)
		p.LC.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				ms.StopCleanup()
				return nil
			},
		})
		p.Log.Info("using in-memory session store")
		return ms, nil

	case config.StoreRedis:
		rc := p.Config.Redis
		store := NewRedisStore(newRedisClient(rc), rc.Prefix)
		p.LC.Append(fx.Hook{
			OnStart: store.Ping,
			OnStop: func(_ context.Context) error {
				return store.Close()
			},
		})
		p.Log.Info("using redis session store", zap.String("addr", rc.Addr))
		return store, nil
	}

	return nil, errors.Wrap(ErrUnknownStore, p.Config.Session.Store)
}
