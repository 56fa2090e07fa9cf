package storage

import (
	"log"
	"os"

	"agrimarket-server/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connecting to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.FarmerProfile{},
		&models.SellerProfile{},
		&models.Land{},
		&models.Equipment{},
		&models.Product{},
		&models.RentalRequest{},
		&models.ChatMessage{},
		&models.Order{},
		&models.Payment{},
		&models.MandiPrice{},
	)
	if err != nil {
		log.Panic("error migrating db: " + err.Error())
	}
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
