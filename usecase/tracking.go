package usecase

import (
	"errors"
	"log"
	"net/http"
	"time"

	"main/dto"
	"main/model"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/google/uuid"
)

// TrackingService is the ingestion path: session boundaries and clicks.
// Device writes go through the repository's atomic upserts, so concurrent
// reports for the same device_id are safe without any locking here.
type TrackingService struct {
	DeviceRepo *repository.DeviceRepo
	ClickRepo  *repository.ClickRepo
	Detector   *services.DeviceDetector
	Geo        *services.GeoResolver
}

func NewTrackingService(
	deviceRepo *repository.DeviceRepo,
	clickRepo *repository.ClickRepo,
	detector *services.DeviceDetector,
	geo *services.GeoResolver,
) *TrackingService {
	return &TrackingService{
		DeviceRepo: deviceRepo,
		ClickRepo:  clickRepo,
		Detector:   detector,
		Geo:        geo,
	}
}

// buildDevice merges the client-parsed snapshot with the server-side
// detector. The client wins wherever it sent something; the detector fills
// browser/OS/type when the payload carried only the raw user agent.
func (s *TrackingService) buildDevice(info *dto.DeviceInfo, header http.Header, ip string) *model.Device {
	device := info.ToDevice()
	detected := s.Detector.Detect(info.UserAgent, header.Get("Accept-Language"))

	if device.Browser.Name == "" {
		device.Browser = detected.Browser
	}
	if device.OS.Name == "" {
		device.OS = detected.OS
	}
	if info.Device.Type == "" {
		device.Device.Type = detected.Device.Type
	}
	if device.Language == "" {
		device.Language = detected.Language
	}
	if device.Connection.EffectiveType == "" {
		device.Connection.EffectiveType = "unknown"
	}
	if device.Location == nil && s.Geo != nil {
		device.Location = s.Geo.Resolve(header, ip)
	}
	return device
}

// RecordSession handles one session-boundary event: exactly one
// session_count increment per call. Callers own the once-per-session
// contract; the store does not enforce it.
func (s *TrackingService) RecordSession(req *dto.TrackSessionRequest, header http.Header, ip string) (*model.Device, bool, error) {
	device := s.buildDevice(&req.DeviceInfo, header, ip)
	return s.DeviceRepo.FindOrCreate(device)
}

// RecordClick ensures the device record exists, bumps its click counter
// and appends the click document. Clicks never touch session_count.
func (s *TrackingService) RecordClick(req *dto.TrackClickRequest, header http.Header, ip string) (*model.Click, error) {
	device := s.buildDevice(&req.DeviceInfo, header, ip)

	persisted, err := s.DeviceRepo.EnsureDevice(device)
	if err != nil {
		return nil, err
	}

	if err := s.DeviceRepo.IncrementClickCount(persisted.DeviceID); err != nil {
		// The device was just upserted; losing it here means someone ran
		// the bulk delete mid-flight. The click is still worth keeping.
		log.Printf("Warning: click increment failed for device %s: %v", persisted.DeviceID, err)
	}

	country := ""
	if persisted.Location != nil {
		country = persisted.Location.Country
	}

	click := &model.Click{
		ID:          uuid.New().String(),
		DeviceID:    persisted.DeviceID,
		SessionID:   req.SessionID,
		Button:      req.Button,
		Page:        req.Page,
		Coordinates: req.Coordinates,
		Referrer:    req.Referrer,
		URL:         req.URL,
		IPAddress:   ip,
		Country:     country,
		Browser:     persisted.Browser.Name,
		OS:          persisted.OS.Name,
		DeviceType:  persisted.Device.Type,
		UserAgent:   req.UserAgent,
		Timestamp:   time.Now().UTC(),
	}

	if err := s.ClickRepo.InsertClick(click); err != nil {
		return nil, err
	}

	utils.TrackClick(req.Page)
	return click, nil
}

// Stats read path, cache-first when a cache is wired.

var ErrStatsUnavailable = errors.New("device statistics unavailable")

type StatsService struct {
	DeviceRepo *repository.DeviceRepo
	Cache      *services.StatsCache
}

func NewStatsService(deviceRepo *repository.DeviceRepo, cache *services.StatsCache) *StatsService {
	return &StatsService{DeviceRepo: deviceRepo, Cache: cache}
}

func (s *StatsService) GetDeviceStats() (*model.DeviceStats, error) {
	if s.Cache != nil {
		if stats, err := s.Cache.GetDeviceStats(); err == nil && stats != nil {
			utils.TrackCacheOperation("device_stats", true)
			return stats, nil
		}
		utils.TrackCacheOperation("device_stats", false)
	}

	stats, err := s.DeviceRepo.GetDeviceStats()
	if err != nil {
		return nil, ErrStatsUnavailable
	}

	if s.Cache != nil {
		if err := s.Cache.SetDeviceStats(stats); err != nil {
			log.Printf("Warning: failed to cache device stats: %v", err)
		}
	}
	return stats, nil
}

func (s *StatsService) GetPopularDevices(limit int) ([]model.PopularDevice, error) {
	// limit=0 legitimately means "no rows"; only a negative limit falls
	// back to the default.
	if limit < 0 {
		limit = 10
	}

	if s.Cache != nil {
		if popular, err := s.Cache.GetPopularDevices(limit); err == nil && popular != nil {
			utils.TrackCacheOperation("popular_devices", true)
			return popular, nil
		}
		utils.TrackCacheOperation("popular_devices", false)
	}

	popular, err := s.DeviceRepo.GetPopularDevices(limit)
	if err != nil {
		return nil, ErrStatsUnavailable
	}

	if s.Cache != nil {
		if err := s.Cache.SetPopularDevices(limit, popular); err != nil {
			log.Printf("Warning: failed to cache popular devices: %v", err)
		}
	}
	return popular, nil
}
