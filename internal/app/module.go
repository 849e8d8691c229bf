package app

import (
	"github.com/DFXswiss/dfx-gateway/internal/app/api/server"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/checkout"
	notificationlog "github.com/DFXswiss/dfx-gateway/internal/app/service/notification_log"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/reconcile"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/webhook"
	"github.com/DFXswiss/dfx-gateway/internal/platform/db"
	"github.com/DFXswiss/dfx-gateway/internal/platform/lock"
	"github.com/DFXswiss/dfx-gateway/pkg/config"
	"github.com/DFXswiss/dfx-gateway/pkg/logger"
	"time"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	order.Module,
	lock.Module,
	notificationlog.Module,
	reconcile.Module,
	webhook.Module,
	checkout.Module,
)
