package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"main/handler"
	"main/model"
	"main/repository"
	"main/services"
	"main/test/testutils"
	"main/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupTrackRouter(t *testing.T) (*gin.Engine, *repository.DeviceRepo, *repository.ClickRepo, func()) {
	t.Helper()
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)

	db := client.Database(os.Getenv("MONGO_DB"))
	testutils.DropCollections(t, db, "devices", "clicks")
	if err := repository.SetupIndexes(db); err != nil {
		t.Fatalf("Failed to set up indexes: %v", err)
	}

	deviceRepo := &repository.DeviceRepo{MongoCollection: db.Collection("devices")}
	clickRepo := &repository.ClickRepo{MongoCollection: db.Collection("clicks")}

	tracking := usecase.NewTrackingService(
		deviceRepo,
		clickRepo,
		services.NewDeviceDetector(),
		services.NewGeoResolver(false),
	)
	trackHandler := handler.NewTrackHandler(tracking)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/track/click", trackHandler.TrackClick)
	router.POST("/api/track/session", trackHandler.TrackSession)

	return router, deviceRepo, clickRepo, cleanup
}

func clickPayload(deviceID, button, page string) map[string]interface{} {
	return map[string]interface{}{
		"device_id":   deviceID,
		"user_agent":  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"button":      button,
		"page":        page,
		"coordinates": map[string]int{"x": 10, "y": 20},
		"session_id":  "session_1700000000000_abcdefghi",
	}
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTrackClickCreatesDeviceAndClick(t *testing.T) {
	router, deviceRepo, clickRepo, cleanup := setupTrackRouter(t)
	defer cleanup()

	deviceID := "abc123"
	w := postJSON(router, "/api/track/click", clickPayload(deviceID, "Save", "Editor"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	device, err := deviceRepo.GetByDeviceID(deviceID)
	if err != nil {
		t.Fatal("device fetch failed:", err)
	}
	if device == nil {
		t.Fatal("device was not created")
	}
	if device.SessionCount != 1 {
		t.Errorf("expected session_count 1, got %d", device.SessionCount)
	}
	if device.TotalClicks != 1 {
		t.Errorf("expected total_clicks 1, got %d", device.TotalClicks)
	}
	if device.Browser.Name != "Chrome" {
		t.Errorf("expected detector to fill browser, got %q", device.Browser.Name)
	}
	if device.Device.Type != model.DeviceTypeDesktop {
		t.Errorf("expected desktop classification, got %q", device.Device.Type)
	}

	clicks, total, err := clickRepo.ListClicks(repository.ClickFilter{DeviceID: deviceID}, 1, 10)
	if err != nil {
		t.Fatal("click list failed:", err)
	}
	if total != 1 {
		t.Fatalf("expected one click, got %d", total)
	}
	if clicks[0].Button != "Save" || clicks[0].Page != "Editor" {
		t.Errorf("unexpected click: %+v", clicks[0])
	}
}

func TestRepeatClicksDoNotAddSessions(t *testing.T) {
	router, deviceRepo, _, cleanup := setupTrackRouter(t)
	defer cleanup()

	deviceID := "abc123"
	for i := 0; i < 3; i++ {
		w := postJSON(router, "/api/track/click", clickPayload(deviceID, "Save", "Editor"))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	}

	device, err := deviceRepo.GetByDeviceID(deviceID)
	if err != nil {
		t.Fatal("device fetch failed:", err)
	}
	if device.TotalClicks != 3 {
		t.Errorf("expected total_clicks 3, got %d", device.TotalClicks)
	}
	if device.SessionCount != 1 {
		t.Errorf("clicks must not add sessions, got session_count %d", device.SessionCount)
	}
}

func TestTrackSessionIncrementsSessions(t *testing.T) {
	router, deviceRepo, _, cleanup := setupTrackRouter(t)
	defer cleanup()

	payload := clickPayload("sess-device", "", "")
	delete(payload, "button")
	delete(payload, "page")
	delete(payload, "coordinates")

	w := postJSON(router, "/api/track/session", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for first session, got %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(router, "/api/track/session", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for known device, got %d", w.Code)
	}

	device, err := deviceRepo.GetByDeviceID("sess-device")
	if err != nil {
		t.Fatal("device fetch failed:", err)
	}
	if device.SessionCount != 2 {
		t.Errorf("expected session_count 2, got %d", device.SessionCount)
	}
	if device.TotalClicks != 0 {
		t.Errorf("sessions must not add clicks, got %d", device.TotalClicks)
	}
}

func TestTrackClickRejectsMalformedPayload(t *testing.T) {
	router, deviceRepo, clickRepo, cleanup := setupTrackRouter(t)
	defer cleanup()

	missingDevice := clickPayload("", "Save", "Editor")
	delete(missingDevice, "device_id")
	w := postJSON(router, "/api/track/click", missingDevice)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing device_id, got %d", w.Code)
	}

	missingUA := clickPayload("abc123", "Save", "Editor")
	delete(missingUA, "user_agent")
	w = postJSON(router, "/api/track/click", missingUA)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing user_agent, got %d", w.Code)
	}

	badType := clickPayload("abc123", "Save", "Editor")
	badType["device"] = map[string]string{"type": "toaster"}
	w = postJSON(router, "/api/track/click", badType)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid device type, got %d", w.Code)
	}

	// No partial writes
	device, err := deviceRepo.GetByDeviceID("abc123")
	if err != nil {
		t.Fatal("device fetch failed:", err)
	}
	if device != nil {
		t.Error("rejected payload must not create a device")
	}
	_, total, err := clickRepo.ListClicks(repository.ClickFilter{}, 1, 10)
	if err != nil {
		t.Fatal("click list failed:", err)
	}
	if total != 0 {
		t.Errorf("rejected payloads must not create clicks, got %d", total)
	}
}

func TestConcurrentFirstClicksSingleDevice(t *testing.T) {
	router, deviceRepo, _, cleanup := setupTrackRouter(t)
	defer cleanup()

	deviceID := "xyz999"
	const writers = 8

	var wg sync.WaitGroup
	codes := make(chan int, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := postJSON(router, "/api/track/click", clickPayload(deviceID, "Save", "Editor"))
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusCreated {
			t.Errorf("expected 201 from every concurrent report, got %d", code)
		}
	}

	count, err := deviceRepo.MongoCollection.CountDocuments(context.Background(), bson.M{"device_id": deviceID})
	if err != nil {
		t.Fatal("count failed:", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one device after concurrent reports, got %d", count)
	}

	device, err := deviceRepo.GetByDeviceID(deviceID)
	if err != nil {
		t.Fatal("device fetch failed:", err)
	}
	if device.TotalClicks != writers {
		t.Errorf("expected total_clicks %d, got %d", writers, device.TotalClicks)
	}
}

func TestUniqueIndexPresent(t *testing.T) {
	_, deviceRepo, _, cleanup := setupTrackRouter(t)
	defer cleanup()

	// A second raw insert with the same device_id must violate the index.
	doc := bson.M{"device_id": uuid.New().String()}
	if _, err := deviceRepo.MongoCollection.InsertOne(context.Background(), doc); err != nil {
		t.Fatal("first insert failed:", err)
	}
	_, err := deviceRepo.MongoCollection.InsertOne(context.Background(), doc)
	if !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key error, got %v", err)
	}
}
