package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartspace/smartspace-be/models"
)

// testBase is the deterministic "now" every service test starts from.
var testBase = time.Date(2025, 8, 15, 8, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2025, 8, 15, hour, minute, 0, 0, time.UTC)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.OneTimePassword{},
		&models.Space{},
		&models.Event{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakeClock is a controllable time source for deterministic tests.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{cur: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.cur = t
	c.mu.Unlock()
}

// scheduledStatus records a deferred space flag update request.
type scheduledStatus struct {
	EventID uint
	SpaceID uint
	Status  models.SpaceStatus
}

// fakeNotifier records every dispatch so tests can assert on side effects
// without Redis or a websocket hub.
type fakeNotifier struct {
	mu        sync.Mutex
	submitted []uint
	approved  []uint
	rejected  []uint
	scheduled []scheduledStatus
	codes     map[string]string // email -> last verification code
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{codes: make(map[string]string)}
}

func (f *fakeNotifier) BookingSubmitted(_ context.Context, event *models.Event, _ *models.Space, _ *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, event.ID)
}

func (f *fakeNotifier) BookingApproved(_ context.Context, event *models.Event, _ *models.Space, _ *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, event.ID)
}

func (f *fakeNotifier) BookingRejected(_ context.Context, event *models.Event, _ *models.Space, _ *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, event.ID)
}

func (f *fakeNotifier) VerificationCode(_ context.Context, user *models.User, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[user.Email] = code
}

func (f *fakeNotifier) ScheduleSpaceStatus(_ context.Context, eventID, spaceID uint, status models.SpaceStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, scheduledStatus{EventID: eventID, SpaceID: spaceID, Status: status})
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := models.User{
		Email:      email,
		Password:   "hashed",
		FirstName:  "Test",
		LastName:   "User",
		Role:       role,
		IsVerified: true,
		IsActive:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createSpace(t *testing.T, db *gorm.DB, name string, status models.SpaceStatus) *models.Space {
	t.Helper()
	space := models.Space{
		Name:         name,
		Location:     "Floor 2",
		Capacity:     20,
		PricePerHour: 50,
		Status:       status,
	}
	if err := db.Create(&space).Error; err != nil {
		t.Fatalf("create space: %v", err)
	}
	return &space
}

func createEvent(t *testing.T, db *gorm.DB, userID, spaceID uint, start, end time.Time, status models.EventStatus) *models.Event {
	t.Helper()
	event := models.Event{
		EventName:      "Fixture Event",
		StartDatetime:  start,
		EndDatetime:    end,
		OrganizerName:  "Org",
		OrganizerEmail: "org@example.com",
		EventType:      models.EventMeeting,
		Status:         status,
		UserID:         userID,
		SpaceID:        spaceID,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	return &event
}

func validRequest(spaceID uint, start, end time.Time) BookingRequest {
	return BookingRequest{
		SpaceID:        spaceID,
		EventName:      "Quarterly Review",
		StartDatetime:  start,
		EndDatetime:    end,
		OrganizerName:  "Dana",
		OrganizerEmail: "dana@example.com",
		EventType:      models.EventMeeting,
	}
}
