package memberships

import (
	"bytes"
	"encoding/json"
	"fmt"
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

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestClub(t *testing.T, db *gorm.DB, name string, leaderID *uint) models.Club {
	club := models.Club{
		Name:     name,
		Status:   models.ClubStatusActive,
		LeaderID: leaderID,
	}
	if err := db.Create(&club).Error; err != nil {
		t.Fatalf("Failed to create test club: %v", err)
	}
	return club
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	clubs := r.Group("/clubs")
	clubs.Use(auth.AuthMiddleware())
	handler.RegisterClubRoutes(clubs)

	memberships := r.Group("/memberships")
	memberships.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(memberships)

	return r
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Email, string(user.Role))
	return "Bearer " + token
}

func TestApply(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	leader := createTestUser(t, db, "leader@example.com", models.RoleClubLeader)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", &leader.ID)

	req, _ := http.NewRequest("POST", fmt.Sprintf("/clubs/%d/apply", club.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var response MembershipResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if response.Status != "pending" {
		t.Errorf("Expected status pending, got %s", response.Status)
	}
	if response.JoinedAt != "" {
		t.Errorf("Expected joined_at to be empty, got %s", response.JoinedAt)
	}

	// The club's leader gets an outbox notification
	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", leader.ID, models.NotificationApplication).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 application notification for the leader, got %d", count)
	}
}

func TestApplyDuplicate(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	req, _ := http.NewRequest("POST", fmt.Sprintf("/clubs/%d/apply", club.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// A second application must fail while any row exists, whatever its status
	req, _ = http.NewRequest("POST", fmt.Sprintf("/clubs/%d/apply", club.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Membership{}).Where("user_id = ? AND club_id = ?", student.ID, club.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 membership row, got %d", count)
	}
}

func TestApplyAfterRejectionStillBlocked(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	db.Create(&models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipRejected})

	req, _ := http.NewRequest("POST", fmt.Sprintf("/clubs/%d/apply", club.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for re-application after rejection, got %d", resp.Code)
	}
}

func TestApplyClubNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)

	req, _ := http.NewRequest("POST", "/clubs/999/apply", nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestApproveSetsJoinedAt(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	membership := models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipPending}
	db.Create(&membership)

	body := DecideRequest{Action: "approve"}
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("PUT", fmt.Sprintf("/memberships/%d", membership.ID), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Membership
	db.First(&updated, membership.ID)
	if updated.Status != models.MembershipAccepted {
		t.Errorf("Expected status accepted, got %s", updated.Status)
	}
	if updated.JoinedAt == nil {
		t.Error("Expected joined_at to be set on approval")
	}

	// The applicant gets an approval notification
	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", student.ID, models.NotificationApproval).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 approval notification, got %d", count)
	}
}

func TestRejectLeavesJoinedAtNull(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	membership := models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipPending}
	db.Create(&membership)

	body := DecideRequest{Action: "reject", Reason: "Roster is full"}
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("PUT", fmt.Sprintf("/memberships/%d", membership.ID), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Membership
	db.First(&updated, membership.ID)
	if updated.Status != models.MembershipRejected {
		t.Errorf("Expected status rejected, got %s", updated.Status)
	}
	if updated.JoinedAt != nil {
		t.Error("Expected joined_at to remain null on rejection")
	}

	var notification models.Notification
	db.Where("user_id = ? AND type = ?", student.ID, models.NotificationRejection).First(&notification)
	if notification.ID == 0 {
		t.Error("Expected a rejection notification")
	}
}

func TestApproveAlreadyDecided(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	membership := models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipPending}
	db.Create(&membership)

	service := NewService(db)
	actor := Actor{UserID: admin.ID, Role: admin.Role}

	if _, err := service.Decide(actor, membership.ID, ActionApprove, ""); err != nil {
		t.Fatalf("First approve failed: %v", err)
	}

	// The second approve finds the row no longer pending and must fail
	// instead of re-firing side effects
	if _, err := service.Decide(actor, membership.ID, ActionApprove, ""); err != ErrInvalidAction {
		t.Errorf("Expected ErrInvalidAction on second approve, got %v", err)
	}

	var count int64
	db.Model(&models.Notification{}).Where("type = ?", models.NotificationApproval).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 approval notification, got %d", count)
	}
}

func TestDecideWrongLeaderForbidden(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	leader := createTestUser(t, db, "leader@example.com", models.RoleClubLeader)
	other := createTestUser(t, db, "other@example.com", models.RoleClubLeader)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", &leader.ID)
	createTestClub(t, db, "Debate Club", &other.ID)

	membership := models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipPending}
	db.Create(&membership)

	body := DecideRequest{Action: "approve"}
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("PUT", fmt.Sprintf("/memberships/%d", membership.ID), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(other))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d: %s", resp.Code, resp.Body.String())
	}

	var unchanged models.Membership
	db.First(&unchanged, membership.ID)
	if unchanged.Status != models.MembershipPending {
		t.Errorf("Expected membership to remain pending, got %s", unchanged.Status)
	}
}

func TestLeaderCanDecideOwnClub(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	leader := createTestUser(t, db, "leader@example.com", models.RoleClubLeader)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", &leader.ID)

	membership := models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipPending}
	db.Create(&membership)

	body := DecideRequest{Action: "approve"}
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("PUT", fmt.Sprintf("/memberships/%d", membership.ID), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(leader))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRemoveThenReapply(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	membership := models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipAccepted}
	db.Create(&membership)

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/memberships/%d", membership.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// The pair is freed: a fresh application succeeds
	req, _ = http.NewRequest("POST", fmt.Sprintf("/clubs/%d/apply", club.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 after removal, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRemoveNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	req, _ := http.NewRequest("DELETE", "/memberships/999", nil)
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestLeave(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	db.Create(&models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipAccepted})

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/clubs/%d/membership", club.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Leaving again finds nothing
	req, _ = http.NewRequest("DELETE", fmt.Sprintf("/clubs/%d/membership", club.ID), nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestListRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)

	req, _ := http.NewRequest("GET", "/memberships", nil)
	req.Header.Set("Authorization", getAuthHeader(student))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestListOrderingAndCounts(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	club := createTestClub(t, db, "Chess Club", nil)

	accepted := createTestUser(t, db, "accepted@example.com", models.RoleStudent)
	pending := createTestUser(t, db, "pending@example.com", models.RoleStudent)
	rejected := createTestUser(t, db, "rejected@example.com", models.RoleStudent)

	db.Create(&models.Membership{UserID: accepted.ID, ClubID: club.ID, Status: models.MembershipAccepted})
	db.Create(&models.Membership{UserID: rejected.ID, ClubID: club.ID, Status: models.MembershipRejected})
	db.Create(&models.Membership{UserID: pending.ID, ClubID: club.ID, Status: models.MembershipPending})

	req, _ := http.NewRequest("GET", "/memberships", nil)
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response ListResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if len(response.Memberships) != 3 {
		t.Fatalf("Expected 3 memberships, got %d", len(response.Memberships))
	}
	// Pending applications surface first in triage views
	if response.Memberships[0].Status != "pending" {
		t.Errorf("Expected first membership to be pending, got %s", response.Memberships[0].Status)
	}
	if response.Counts["pending"] != 1 || response.Counts["accepted"] != 1 || response.Counts["rejected"] != 1 {
		t.Errorf("Unexpected counts: %v", response.Counts)
	}
}

func TestListSearchByEmail(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	club := createTestClub(t, db, "Chess Club", nil)

	alice := createTestUser(t, db, "alice@example.com", models.RoleStudent)
	bob := createTestUser(t, db, "bob@example.com", models.RoleStudent)
	db.Create(&models.Membership{UserID: alice.ID, ClubID: club.ID, Status: models.MembershipPending})
	db.Create(&models.Membership{UserID: bob.ID, ClubID: club.ID, Status: models.MembershipPending})

	req, _ := http.NewRequest("GET", "/memberships?q=alice", nil)
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var response ListResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if len(response.Memberships) != 1 {
		t.Fatalf("Expected 1 membership, got %d", len(response.Memberships))
	}
	if response.Memberships[0].UserEmail != "alice@example.com" {
		t.Errorf("Expected alice's membership, got %s", response.Memberships[0].UserEmail)
	}
}

func TestListPendingScopedToLeader(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	leader := createTestUser(t, db, "leader@example.com", models.RoleClubLeader)
	other := createTestUser(t, db, "other@example.com", models.RoleClubLeader)
	s1 := createTestUser(t, db, "s1@example.com", models.RoleStudent)
	s2 := createTestUser(t, db, "s2@example.com", models.RoleStudent)

	myClub := createTestClub(t, db, "Chess Club", &leader.ID)
	otherClub := createTestClub(t, db, "Debate Club", &other.ID)

	db.Create(&models.Membership{UserID: s1.ID, ClubID: myClub.ID, Status: models.MembershipPending})
	db.Create(&models.Membership{UserID: s2.ID, ClubID: otherClub.ID, Status: models.MembershipPending})

	req, _ := http.NewRequest("GET", "/memberships/pending", nil)
	req.Header.Set("Authorization", getAuthHeader(leader))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response []MembershipResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if len(response) != 1 {
		t.Fatalf("Expected 1 pending membership, got %d", len(response))
	}
	if response[0].ClubID != myClub.ID {
		t.Errorf("Expected membership of club %d, got %d", myClub.ID, response[0].ClubID)
	}
}

func TestBulkApprove(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	s1 := createTestUser(t, db, "s1@example.com", models.RoleStudent)
	s2 := createTestUser(t, db, "s2@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	m1 := models.Membership{UserID: s1.ID, ClubID: club.ID, Status: models.MembershipPending}
	m2 := models.Membership{UserID: s2.ID, ClubID: club.ID, Status: models.MembershipPending}
	db.Create(&m1)
	db.Create(&m2)

	body := BulkDecideRequest{MembershipIDs: []uint{m1.ID, m2.ID}, Action: "approve"}
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("POST", "/memberships/bulk", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Membership{}).Where("status = ?", models.MembershipAccepted).Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 accepted memberships, got %d", count)
	}

	db.Model(&models.Notification{}).Where("type = ?", models.NotificationApproval).Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 approval notifications, got %d", count)
	}
}

func TestBulkRejectsWholeBatchWhenOneNotPending(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	s1 := createTestUser(t, db, "s1@example.com", models.RoleStudent)
	s2 := createTestUser(t, db, "s2@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	m1 := models.Membership{UserID: s1.ID, ClubID: club.ID, Status: models.MembershipPending}
	m2 := models.Membership{UserID: s2.ID, ClubID: club.ID, Status: models.MembershipAccepted}
	db.Create(&m1)
	db.Create(&m2)

	body := BulkDecideRequest{MembershipIDs: []uint{m1.ID, m2.ID}, Action: "approve"}
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("POST", "/memberships/bulk", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}

	// All-or-nothing: the pending row is untouched
	var m models.Membership
	db.First(&m, m1.ID)
	if m.Status != models.MembershipPending {
		t.Errorf("Expected membership to remain pending, got %s", m.Status)
	}

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no notifications from a rejected batch, got %d", count)
	}
}

func TestBulkAcrossClubsRejectedForLeader(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	leader := createTestUser(t, db, "leader@example.com", models.RoleClubLeader)
	other := createTestUser(t, db, "other@example.com", models.RoleClubLeader)
	s1 := createTestUser(t, db, "s1@example.com", models.RoleStudent)
	s2 := createTestUser(t, db, "s2@example.com", models.RoleStudent)

	myClub := createTestClub(t, db, "Chess Club", &leader.ID)
	otherClub := createTestClub(t, db, "Debate Club", &other.ID)

	m1 := models.Membership{UserID: s1.ID, ClubID: myClub.ID, Status: models.MembershipPending}
	m2 := models.Membership{UserID: s2.ID, ClubID: otherClub.ID, Status: models.MembershipPending}
	db.Create(&m1)
	db.Create(&m2)

	body := BulkDecideRequest{MembershipIDs: []uint{m1.ID, m2.ID}, Action: "approve"}
	jsonBody, _ := json.Marshal(body)

	req, _ := http.NewRequest("POST", "/memberships/bulk", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(leader))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}

	// Neither row moves, including the one the leader could have decided alone
	var count int64
	db.Model(&models.Membership{}).Where("status = ?", models.MembershipPending).Count(&count)
	if count != 2 {
		t.Errorf("Expected both memberships to remain pending, got %d pending", count)
	}
}

func TestBulkReject(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	s1 := createTestUser(t, db, "s1@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)

	m1 := models.Membership{UserID: s1.ID, ClubID: club.ID, Status: models.MembershipPending}
	db.Create(&m1)

	service := NewService(db)
	results, err := service.BulkDecide(Actor{UserID: admin.ID, Role: admin.Role}, []uint{m1.ID}, ActionReject, "Roster is full")
	if err != nil {
		t.Fatalf("BulkDecide failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	var m models.Membership
	db.First(&m, m1.ID)
	if m.Status != models.MembershipRejected {
		t.Errorf("Expected status rejected, got %s", m.Status)
	}
	if m.JoinedAt != nil {
		t.Error("Expected joined_at to remain null on rejection")
	}
}

func TestExportCSV(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	student := createTestUser(t, db, "student@example.com", models.RoleStudent)
	club := createTestClub(t, db, "Chess Club", nil)
	db.Create(&models.Membership{UserID: student.ID, ClubID: club.ID, Status: models.MembershipAccepted})

	req, _ := http.NewRequest("GET", "/memberships/export", nil)
	req.Header.Set("Authorization", getAuthHeader(admin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv content type, got %s", ct)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("student@example.com")) {
		t.Error("Expected exported CSV to contain the member's email")
	}
}
