package test

import (
	"os"
	"testing"
	"time"

	"main/model"
	"main/repository"
	"main/test/testutils"

	"github.com/google/uuid"
)

func setupClickRepo(t *testing.T) (*repository.ClickRepo, func()) {
	t.Helper()
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)

	db := client.Database(os.Getenv("MONGO_DB"))
	testutils.DropCollections(t, db, "clicks")

	return &repository.ClickRepo{MongoCollection: db.Collection("clicks")}, cleanup
}

func sampleClick(deviceID, button, page string, ts time.Time) *model.Click {
	return &model.Click{
		ID:         uuid.New().String(),
		DeviceID:   deviceID,
		SessionID:  "session_1700000000000_abcdefghi",
		Button:     button,
		Page:       page,
		Browser:    "Chrome",
		OS:         "Windows",
		DeviceType: model.DeviceTypeDesktop,
		Timestamp:  ts,
	}
}

func TestClickListingAndPagination(t *testing.T) {
	repo, cleanup := setupClickRepo(t)
	defer cleanup()

	deviceID := uuid.New().String()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		click := sampleClick(deviceID, "Save", "Editor", base.Add(time.Duration(i)*time.Minute))
		if err := repo.InsertClick(click); err != nil {
			t.Fatal("insert failed:", err)
		}
	}
	other := sampleClick(uuid.New().String(), "Open", "Dashboard", base)
	if err := repo.InsertClick(other); err != nil {
		t.Fatal("insert failed:", err)
	}

	clicks, total, err := repo.ListClicks(repository.ClickFilter{}, 1, 4)
	if err != nil {
		t.Fatal("list failed:", err)
	}
	if total != 6 {
		t.Errorf("expected total 6, got %d", total)
	}
	if len(clicks) != 4 {
		t.Errorf("expected page of 4, got %d", len(clicks))
	}
	for i := 1; i < len(clicks); i++ {
		if clicks[i].Timestamp.After(clicks[i-1].Timestamp) {
			t.Error("expected newest-first ordering")
		}
	}

	clicks, total, err = repo.ListClicks(repository.ClickFilter{DeviceID: deviceID}, 2, 4)
	if err != nil {
		t.Fatal("filtered list failed:", err)
	}
	if total != 5 {
		t.Errorf("expected 5 clicks for device, got %d", total)
	}
	if len(clicks) != 1 {
		t.Errorf("expected 1 click on second page, got %d", len(clicks))
	}

	clicks, total, err = repo.ListClicks(repository.ClickFilter{Button: "Open"}, 1, 10)
	if err != nil {
		t.Fatal("button filter failed:", err)
	}
	if total != 1 || clicks[0].Page != "Dashboard" {
		t.Errorf("unexpected button filter result: total=%d", total)
	}

	// From inclusive, To exclusive
	windowed, total, err := repo.ListClicks(repository.ClickFilter{
		From: base.Add(1 * time.Minute),
		To:   base.Add(3 * time.Minute),
	}, 1, 10)
	if err != nil {
		t.Fatal("window filter failed:", err)
	}
	if total != 2 {
		t.Errorf("expected 2 clicks in window, got %d", total)
	}
	for _, c := range windowed {
		if c.Timestamp.Before(base.Add(1*time.Minute)) || !c.Timestamp.Before(base.Add(3*time.Minute)) {
			t.Errorf("click outside window: %v", c.Timestamp)
		}
	}
}

func TestClickRoundTrip(t *testing.T) {
	repo, cleanup := setupClickRepo(t)
	defer cleanup()

	ts := time.Now().UTC().Truncate(time.Millisecond)
	click := sampleClick(uuid.New().String(), "Save", "Editor", ts)
	click.Coordinates = model.Coordinates{X: 412, Y: 87}
	click.Referrer = "https://portal.example.edu/"
	click.URL = "https://portal.example.edu/editor"
	click.Country = "CH"

	if err := repo.InsertClick(click); err != nil {
		t.Fatal("insert failed:", err)
	}

	got, err := repo.GetClick(click.ID)
	if err != nil {
		t.Fatal("fetch failed:", err)
	}
	if got == nil {
		t.Fatal("click not found")
	}
	if got.Coordinates != click.Coordinates {
		t.Errorf("coordinates changed: %+v != %+v", got.Coordinates, click.Coordinates)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp changed: %v != %v", got.Timestamp, ts)
	}
	if got.Country != "CH" || got.Referrer != click.Referrer || got.URL != click.URL {
		t.Error("string fields did not round-trip")
	}
}

func TestClickValidationAndDeletion(t *testing.T) {
	repo, cleanup := setupClickRepo(t)
	defer cleanup()

	if err := repo.InsertClick(nil); err == nil {
		t.Error("expected error for nil click")
	}
	if err := repo.InsertClick(&model.Click{ID: uuid.New().String()}); err == nil {
		t.Error("expected error for click without device_id")
	}

	click := sampleClick(uuid.New().String(), "Save", "Editor", time.Now().UTC())
	if err := repo.InsertClick(click); err != nil {
		t.Fatal("insert failed:", err)
	}

	if err := repo.DeleteClick(click.ID); err != nil {
		t.Fatal("delete failed:", err)
	}
	if err := repo.DeleteClick(click.ID); err == nil {
		t.Error("expected error deleting twice")
	}

	for i := 0; i < 3; i++ {
		if err := repo.InsertClick(sampleClick(uuid.New().String(), "X", "Y", time.Now().UTC())); err != nil {
			t.Fatal("insert failed:", err)
		}
	}
	deleted, err := repo.DeleteAll()
	if err != nil {
		t.Fatal("bulk delete failed:", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	_, total, err := repo.ListClicks(repository.ClickFilter{}, 1, 10)
	if err != nil {
		t.Fatal("list failed:", err)
	}
	if total != 0 {
		t.Errorf("expected empty collection, got %d", total)
	}
}
