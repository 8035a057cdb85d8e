package components

import (
	"shopcore/internal/infra/gateway"
	"shopcore/internal/infra/uow"
	"shopcore/internal/pkg/config"
	"shopcore/internal/pkg/signature"
	"shopcore/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		// UnitOfWork owns the repositories; nothing else touches the pool.
		uow.NewPostgresUoW,
		fx.Annotate(
			NewGatewayClient,
			fx.As(new(shared.PaymentGateway)),
		),
		NewSignatureVerifier,
	),
)

func NewGatewayClient(cfg config.Config) *gateway.Client {
	return gateway.NewClient(cfg.Gateway)
}

func NewSignatureVerifier(cfg config.Config) *signature.Verifier {
	return signature.NewVerifier(cfg.Gateway.WebhookSecret)
}
