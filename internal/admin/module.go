package admin

import (
	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/ghaggin/openvpn-admin/internal/template"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(
		New,
		NewController,
		template.New,
		newCredentialSource,
		newProber,
	),
)

func newCredentialSource(c *config.Config) CredentialSource {
	return config.NewCredentialReader(c)
}

func newProber(c *config.Config, log *zap.Logger) Prober {
	return NewTCPProber(c, log)
}
