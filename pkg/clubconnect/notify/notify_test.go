package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/auth"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	user := models.User{Email: email, PasswordHash: "hash", Name: "Test User", Role: models.RoleStudent}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func TestEnqueueWritesPendingRow(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")

	err := Enqueue(db, user.ID, models.NotificationApproval, "Welcome", "Your application was approved.")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	var n models.Notification
	if err := db.First(&n).Error; err != nil {
		t.Fatalf("Expected a notification row: %v", err)
	}
	if n.Status != models.DeliveryPending {
		t.Errorf("Expected status pending, got %s", n.Status)
	}
	if n.Retry != 0 {
		t.Errorf("Expected retry 0, got %d", n.Retry)
	}
}

func TestEnqueueRollsBackWithTransaction(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")

	db.Transaction(func(tx *gorm.DB) error {
		if err := Enqueue(tx, user.ID, models.NotificationApproval, "Welcome", "Approved."); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		return errors.New("abort")
	})

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no notification after rollback, got %d", count)
	}
}

func TestDrainOnceDelivers(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	Enqueue(db, user.ID, models.NotificationApproval, "Welcome", "Approved.")

	var delivered []string
	sender := func(ctx context.Context, n *models.Notification, email string) error {
		delivered = append(delivered, email)
		return nil
	}

	relayer := NewRelayer(db, sender)
	relayer.DrainOnce(context.Background())

	if len(delivered) != 1 || delivered[0] != "user@example.com" {
		t.Fatalf("Expected delivery to user@example.com, got %v", delivered)
	}

	var n models.Notification
	db.First(&n)
	if n.Status != models.DeliverySent {
		t.Errorf("Expected status sent, got %s", n.Status)
	}
}

func TestDrainOnceSkipsSentRows(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	db.Create(&models.Notification{UserID: user.ID, Type: models.NotificationApproval, Title: "Old", Status: models.DeliverySent})

	calls := 0
	sender := func(ctx context.Context, n *models.Notification, email string) error {
		calls++
		return nil
	}

	NewRelayer(db, sender).DrainOnce(context.Background())

	if calls != 0 {
		t.Errorf("Expected no delivery attempts for sent rows, got %d", calls)
	}
}

func TestDrainOnceRetriesAndFails(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	Enqueue(db, user.ID, models.NotificationApproval, "Welcome", "Approved.")

	sender := func(ctx context.Context, n *models.Notification, email string) error {
		return errors.New("smtp unreachable")
	}

	relayer := NewRelayer(db, sender)
	relayer.DrainOnce(context.Background())

	var n models.Notification
	db.First(&n)
	if n.Retry != 1 {
		t.Errorf("Expected retry 1 after one failure, got %d", n.Retry)
	}
	if n.Status != models.DeliveryPending {
		t.Errorf("Expected status still pending, got %s", n.Status)
	}

	// Exhaust the remaining attempts
	for i := 0; i < maxRetries-1; i++ {
		relayer.DrainOnce(context.Background())
	}

	db.First(&n)
	if n.Status != models.DeliveryFailed {
		t.Errorf("Expected status failed after %d attempts, got %s", maxRetries, n.Status)
	}
	if n.Retry != maxRetries {
		t.Errorf("Expected retry %d, got %d", maxRetries, n.Retry)
	}
}

func TestMultiSenderFansOut(t *testing.T) {
	var calls []string
	ok := func(ctx context.Context, n *models.Notification, email string) error {
		calls = append(calls, "ok")
		return nil
	}
	bad := func(ctx context.Context, n *models.Notification, email string) error {
		calls = append(calls, "bad")
		return errors.New("boom")
	}
	alsoBad := func(ctx context.Context, n *models.Notification, email string) error {
		calls = append(calls, "also_bad")
		return errors.New("later")
	}

	sender := MultiSender(ok, bad, alsoBad)
	err := sender(context.Background(), &models.Notification{}, "user@example.com")

	// Every sender runs; the first error wins
	if err == nil || err.Error() != "boom" {
		t.Errorf("Expected the first error, got %v", err)
	}
	if len(calls) != 3 {
		t.Errorf("Expected all 3 senders to run, got %v", calls)
	}
}

func TestListScopedToCurrentUser(t *testing.T) {
	db := setupTestDB(t)
	me := createTestUser(t, db, "me@example.com")
	other := createTestUser(t, db, "other@example.com")
	Enqueue(db, me.ID, models.NotificationApproval, "Mine", "For me.")
	Enqueue(db, other.ID, models.NotificationApproval, "Theirs", "Not for me.")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/notifications")
	group.Use(auth.AuthMiddleware())
	NewHandler(db).RegisterRoutes(group)

	token, _ := auth.GenerateToken(me.ID, me.Email, string(me.Role))
	req, _ := http.NewRequest("GET", "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response []NotificationResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if len(response) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(response))
	}
	if response[0].Title != "Mine" {
		t.Errorf("Expected my notification, got %s", response[0].Title)
	}
}

func TestLogSender(t *testing.T) {
	n := models.Notification{UserID: 1, Type: models.NotificationApproval, Title: "Welcome"}
	if err := LogSender(context.Background(), &n, "user@example.com"); err != nil {
		t.Errorf("LogSender should never fail, got %v", err)
	}
}
