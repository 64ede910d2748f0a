package postgres

import (
	"log"

	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.PaymentsConfig) *gorm.DB {
	dsn := cfg.PaymentsDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if cfg.PaymentsDB.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			log.Fatalf("failed to automigrate: %v\n", err)
		}
	}

	return db
}

// AutoMigrate creates every table and index from the gorm models. Production
// deployments use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
