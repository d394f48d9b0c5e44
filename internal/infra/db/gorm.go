package db

import (
	"fmt"
	"os"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect() (*gorm.DB, error) {
	// DATABASE_URL があれば最優先で使う
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	user := getenv("POSTGRES_USER", "postgres")
	pass := getenv("POSTGRES_PASSWORD", "postgres")
	name := getenv("POSTGRES_DB", "app")
	ssl := getenv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, ssl,
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// SeedMaster は配送料金と都市のマスタを投入する。
// 既にある行は上書きしない（再起動で安全）。
func SeedMaster(db *gorm.DB, hubCity string) error {
	deliveryTypes := []model.DeliveryType{
		{Code: model.DeliveryWithinHub, Name: "Within " + hubCity, Price: decimal.NewFromInt(350)},
		{Code: model.DeliveryOutsideHub, Name: "Outside " + hubCity, Price: decimal.NewFromInt(500)},
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&deliveryTypes).Error; err != nil {
		return err
	}

	cities := []model.City{
		{Name: hubCity},
		{Name: "Kandy"},
		{Name: "Galle"},
		{Name: "Jaffna"},
		{Name: "Negombo"},
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&cities).Error
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
