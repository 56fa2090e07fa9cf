package routes

import (
	"os"
	"strconv"
	"testing"
	"time"

	"agrimarket-server/models"
	"agrimarket-server/realtime"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps storage.DB for a fresh in-memory SQLite database. Max one
// open connection so every query sees the same memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
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
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	previous := storage.DB
	storage.DB = db
	t.Cleanup(func() {
		storage.DB = previous
		sqlDB.Close()
	})
	return db
}

func signTestToken(t *testing.T, id uint, role string) string {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), time.Hour)
	token, err := signer.Sign(utils.AccessToken{ID: id, Role: role})
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return string(token)
}

func accessTokenMiddleware() iris.Handler {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	verifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	return verifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})
}

// publishedEvent records one Publisher call for assertions.
type publishedEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

type recordingPublisher struct {
	events []publishedEvent
}

var _ realtime.Publisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) PublishToRoom(room, event string, payload interface{}) {
	p.events = append(p.events, publishedEvent{Room: room, Event: event, Payload: payload})
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func newTestApp() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()
	return app
}

func createTestUser(t *testing.T, name, email, role string) models.User {
	t.Helper()
	user := models.User{
		Name:               name,
		Email:              email,
		Password:           "hashed",
		Role:               role,
		VerificationStatus: models.VerificationApproved,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestEquipment(t *testing.T, ownerID uint, pricePerDay, shippingCharge float64) models.Equipment {
	t.Helper()
	equipment := models.Equipment{
		OwnerID:        ownerID,
		Name:           "Test Tractor",
		Category:       "tractor",
		Images:         []byte(`["https://example.com/tractor.jpg"]`),
		PricePerDay:    pricePerDay,
		ShippingCharge: shippingCharge,
		Negotiable:     true,
		Availability:   true,
		Location:       "Nashik",
		Approved:       true,
	}
	if err := storage.DB.Create(&equipment).Error; err != nil {
		t.Fatalf("failed to create equipment: %v", err)
	}
	return equipment
}

func createTestRentalRequest(t *testing.T, equipment models.Equipment, renterID uint, status string) models.RentalRequest {
	t.Helper()
	request := models.RentalRequest{
		EquipmentID:         equipment.ID,
		OwnerID:             equipment.OwnerID,
		RenterID:            renterID,
		StartDate:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		ProposedPricePerDay: 500,
		ShippingCharge:      equipment.ShippingCharge,
		Status:              status,
	}
	if err := storage.DB.Create(&request).Error; err != nil {
		t.Fatalf("failed to create rental request: %v", err)
	}
	return request
}
