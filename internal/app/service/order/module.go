package order

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(func(db *gorm.DB, log *zap.SugaredLogger) Store {
		return NewGormStore(db, log)
	}),
)
