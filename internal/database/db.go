package database

import (
	"fmt"
	"log"
	"strings"

	"seafood-backend/internal/config"
	"seafood-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

// Open connects to postgres, or to sqlite when the DSN looks like a file
// ("file:..." or "*.db").
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if IsSQLite(dsn) {
		dialector = sqlite.Open(dsn)
	} else {
		dialector = postgres.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db")
}

func Init(cfg *config.Config) {
	var err error

	DB, err = Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Could not connect to the database: %v", err)
	}
	log.Println("Database connection established.")
}

// Migrate creates or updates every table and seeds the reserved services.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.SequenceCounter{},
		// Partners
		&models.Client{},
		&models.Supplier{},
		&models.Prospect{},
		// Catalog
		&models.ServiceCategory{},
		&models.ServiceSubCategory{},
		&models.Service{},
		// Reception & classification
		&models.Reception{},
		&models.Classification{},
		&models.ClassificationItem{},
		// Ledger
		&models.Cashbox{},
		&models.CashboxTransaction{},
		&models.BankAccount{},
		&models.BankTransaction{},
		// Procurement
		&models.PurchaseRequest{},
		&models.PurchaseRequestItem{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return SeedReservedServices(db)
}

// ReservedServices are the system services occupying codes 1000-1010.
var ReservedServices = []models.Service{
	{Code: 1000, Name: "Reception"},
	{Code: 1001, Name: "Weighing"},
	{Code: 1002, Name: "Storage"},
	{Code: 1003, Name: "Transit"},
	{Code: 1004, Name: "Sorting"},
	{Code: 1005, Name: "Classification"},
	{Code: 1006, Name: "Freezing tunnel"},
	{Code: 1007, Name: "Cold room storage"},
	{Code: 1008, Name: "Glazing"},
	{Code: 1009, Name: "Packaging"},
	{Code: 1010, Name: "Loading"},
}

// SeedReservedServices inserts the reserved services that are missing.
// Existing rows with those codes are left alone.
func SeedReservedServices(db *gorm.DB) error {
	for _, s := range ReservedServices {
		s.IsSystem = true
		s.IsActive = true
		err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
			Create(&s).Error
		if err != nil {
			return fmt.Errorf("reserved service %d could not be seeded: %w", s.Code, err)
		}
	}
	return nil
}
