package webhook

import (
	"go.uber.org/fx"

	notificationlog "github.com/DFXswiss/dfx-gateway/internal/app/service/notification_log"
	"github.com/DFXswiss/dfx-gateway/internal/platform/dfx/signature"
)

var Module = fx.Options(
	fx.Provide(func() signature.Verifier { return signature.NewRSAVerifier() }),
	fx.Provide(func(s *notificationlog.Service) NotificationLogger { return s }),
	fx.Provide(NewTransitioner),
	fx.Provide(NewHandler),
)
