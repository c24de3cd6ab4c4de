package repository

import (
	"context"
	"fmt"
	"time"

	"main/config"
	"main/model"
	"main/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ClickRepo struct {
	MongoCollection *mongo.Collection
}

func GetClickRepo(client *mongo.Client) *ClickRepo {
	cfg := config.LoadDatabaseConfig()
	return &ClickRepo{
		MongoCollection: client.Database(cfg.DatabaseName).Collection(cfg.ClicksCollection),
	}
}

// ClickFilter narrows activity listings. Zero values mean "no filter";
// From/To bound the timestamp, From inclusive, To exclusive.
type ClickFilter struct {
	DeviceID string
	Button   string
	Page     string
	From     time.Time
	To       time.Time
}

func (f ClickFilter) query() bson.M {
	q := bson.M{}
	if f.DeviceID != "" {
		q["device_id"] = f.DeviceID
	}
	if f.Button != "" {
		q["button"] = f.Button
	}
	if f.Page != "" {
		q["page"] = f.Page
	}
	ts := bson.M{}
	if !f.From.IsZero() {
		ts["$gte"] = f.From
	}
	if !f.To.IsZero() {
		ts["$lt"] = f.To
	}
	if len(ts) > 0 {
		q["timestamp"] = ts
	}
	return q
}

func (r *ClickRepo) InsertClick(click *model.Click) error {
	timer := utils.TrackDBOperation("insert", "clicks")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if click == nil {
		utils.TrackError("database", "nil_click")
		return fmt.Errorf("click cannot be nil")
	}
	if click.ID == "" || click.DeviceID == "" {
		utils.TrackError("database", "invalid_click_data")
		return fmt.Errorf("invalid click data: missing required fields")
	}

	if _, err := r.MongoCollection.InsertOne(ctx, click); err != nil {
		utils.TrackError("database", "click_insert_failed")
		return fmt.Errorf("failed to insert click: %w", err)
	}
	return nil
}

// ListClicks returns one page sorted newest-first plus the total matching
// count. page is 1-based.
func (r *ClickRepo) ListClicks(filter ClickFilter, page, pageSize int) ([]*model.Click, int64, error) {
	timer := utils.TrackDBOperation("find", "clicks")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := filter.query()

	total, err := r.MongoCollection.CountDocuments(ctx, query)
	if err != nil {
		utils.TrackError("database", "click_count_failed")
		return nil, 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(page-1) * int64(pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.MongoCollection.Find(ctx, query, opts)
	if err != nil {
		utils.TrackError("database", "click_fetch_failed")
		return nil, 0, fmt.Errorf("failed to fetch clicks: %w", err)
	}
	defer cursor.Close(ctx)

	clicks := make([]*model.Click, 0, pageSize)
	if err := cursor.All(ctx, &clicks); err != nil {
		return nil, 0, fmt.Errorf("failed to decode clicks: %w", err)
	}
	return clicks, total, nil
}

// IterateClicks streams every click matching the filter, newest first, for
// the CSV export path. The callback stops the stream by returning an error.
func (r *ClickRepo) IterateClicks(ctx context.Context, filter ClickFilter, fn func(*model.Click) error) error {
	timer := utils.TrackDBOperation("find", "clicks")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.MongoCollection.Find(ctx, filter.query(), opts)
	if err != nil {
		utils.TrackError("database", "click_fetch_failed")
		return fmt.Errorf("failed to fetch clicks: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var click model.Click
		if err := cursor.Decode(&click); err != nil {
			return fmt.Errorf("failed to decode click: %w", err)
		}
		if err := fn(&click); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// GetClick returns nil, nil when the click does not exist.
func (r *ClickRepo) GetClick(clickID string) (*model.Click, error) {
	timer := utils.TrackDBOperation("find", "clicks")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if clickID == "" {
		return nil, fmt.Errorf("clickID cannot be empty")
	}

	var click model.Click
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": clickID}).Decode(&click)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "click_fetch_failed")
		return nil, fmt.Errorf("failed to fetch click: %w", err)
	}
	return &click, nil
}

func (r *ClickRepo) DeleteClick(clickID string) error {
	timer := utils.TrackDBOperation("delete", "clicks")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if clickID == "" {
		return fmt.Errorf("clickID cannot be empty")
	}

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": clickID})
	if err != nil {
		utils.TrackError("database", "click_delete_failed")
		return fmt.Errorf("failed to delete click: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("click not found")
	}
	return nil
}

func (r *ClickRepo) DeleteAll() (int64, error) {
	timer := utils.TrackDBOperation("delete", "clicks")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.MongoCollection.DeleteMany(ctx, bson.M{})
	if err != nil {
		utils.TrackError("database", "click_bulk_delete_failed")
		return 0, fmt.Errorf("failed to delete clicks: %w", err)
	}
	return result.DeletedCount, nil
}
