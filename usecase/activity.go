package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"main/dto"
	"main/model"
	"main/repository"
	"main/services"
)

// ActivityService backs the guest-activity viewer: paginated click
// listings with device context, CSV export and the deletion escape
// hatches. Read-only apart from the deletes.
type ActivityService struct {
	ClickRepo  *repository.ClickRepo
	DeviceRepo *repository.DeviceRepo
	Cache      *services.StatsCache
}

func NewActivityService(clickRepo *repository.ClickRepo, deviceRepo *repository.DeviceRepo, cache *services.StatsCache) *ActivityService {
	return &ActivityService{
		ClickRepo:  clickRepo,
		DeviceRepo: deviceRepo,
		Cache:      cache,
	}
}

type ActivityQuery struct {
	Page     int
	PageSize int
	Filter   repository.ClickFilter
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (q *ActivityQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
}

func (s *ActivityService) ListClicks(query ActivityQuery) (*dto.ActivityPageResponse, error) {
	query.normalize()

	clicks, total, err := s.ClickRepo.ListClicks(query.Filter, query.Page, query.PageSize)
	if err != nil {
		return nil, err
	}

	totalPages := (total + int64(query.PageSize) - 1) / int64(query.PageSize)

	return &dto.ActivityPageResponse{
		Clicks:      dto.ToClickRows(clicks),
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: int64(query.Page),
	}, nil
}

var csvHeader = []string{
	"timestamp", "button", "page", "device_id", "session_id",
	"browser", "os", "device_type", "country", "referrer", "url",
}

// ExportCSV streams every click matching the filter as CSV, newest first.
func (s *ActivityService) ExportCSV(ctx context.Context, w io.Writer, filter repository.ClickFilter) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	err := s.ClickRepo.IterateClicks(ctx, filter, func(click *model.Click) error {
		return writer.Write([]string{
			click.Timestamp.Format(time.RFC3339),
			click.Button,
			click.Page,
			click.DeviceID,
			click.SessionID,
			click.Browser,
			click.OS,
			click.DeviceType,
			click.Country,
			click.Referrer,
			click.URL,
		})
	})
	if err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

var ErrClickNotFound = errors.New("click not found")

// GetClickDetail returns the click with its full device record embedded.
// A missing device is not an error; the viewer shows the click alone.
func (s *ActivityService) GetClickDetail(clickID string) (*dto.ClickDetailResponse, error) {
	click, err := s.ClickRepo.GetClick(clickID)
	if err != nil {
		return nil, err
	}
	if click == nil {
		return nil, ErrClickNotFound
	}

	device, err := s.DeviceRepo.GetByDeviceID(click.DeviceID)
	if err != nil {
		log.Printf("Warning: failed to fetch device %s for click detail: %v", click.DeviceID, err)
		device = nil
	}

	return &dto.ClickDetailResponse{Click: click, Device: device}, nil
}

func (s *ActivityService) DeleteClick(clickID string) error {
	return s.ClickRepo.DeleteClick(clickID)
}

// DeleteAll wipes the click log and, when includeDevices is set, the
// device records too. Single-document delete semantics only; there is no
// transaction spanning the two collections.
func (s *ActivityService) DeleteAll(includeDevices bool) (clicksDeleted, devicesDeleted int64, err error) {
	clicksDeleted, err = s.ClickRepo.DeleteAll()
	if err != nil {
		return 0, 0, err
	}

	if includeDevices {
		devicesDeleted, err = s.DeviceRepo.DeleteAll()
		if err != nil {
			return clicksDeleted, 0, err
		}
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(); err != nil {
			log.Printf("Warning: failed to invalidate stats cache: %v", err)
		}
	}
	return clicksDeleted, devicesDeleted, nil
}
