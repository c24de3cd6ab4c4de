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

type DeviceRepo struct {
	MongoCollection *mongo.Collection
}

func GetDeviceRepo(client *mongo.Client) *DeviceRepo {
	cfg := config.LoadDatabaseConfig()
	return &DeviceRepo{
		MongoCollection: client.Database(cfg.DatabaseName).Collection(cfg.DevicesCollection),
	}
}

// deviceInsertFields returns the $setOnInsert document for a brand-new
// device: the full snapshot minus the fields the individual update verbs
// own (last_seen is always $set, counters are $inc or fixed per call site).
func deviceInsertFields(device *model.Device, now time.Time) bson.M {
	fields := bson.M{
		"browser":       device.Browser,
		"engine":        device.Engine,
		"os":            device.OS,
		"device":        device.Device,
		"cpu":           device.CPU,
		"screen":        device.Screen,
		"platform":      device.Platform,
		"language":      device.Language,
		"timezone":      device.Timezone,
		"connection":    device.Connection,
		"capabilities":  device.Capabilities,
		"consent_given": device.ConsentGiven,
		"do_not_track":  device.DoNotTrack,
		"first_seen":    now,
	}
	if device.Location != nil {
		fields["location"] = device.Location
	}
	return fields
}

// FindOrCreate is the session-boundary upsert. A new device is inserted
// with session_count=1 and first_seen=last_seen=now; an existing one gets
// last_seen refreshed and session_count incremented. The upsert keyed on
// device_id plus the unique index is what guarantees at-most-one device
// per device_id under concurrent first observations.
func (r *DeviceRepo) FindOrCreate(device *model.Device) (*model.Device, bool, error) {
	timer := utils.TrackDBOperation("upsert", "devices")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if device == nil || device.DeviceID == "" {
		utils.TrackError("database", "invalid_device_data")
		return nil, false, fmt.Errorf("device with device_id is required")
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"last_seen": now},
		"$inc":         bson.M{"session_count": 1},
		"$setOnInsert": deviceInsertFields(device, now),
	}

	result, err := r.findOneAndUpsert(ctx, device.DeviceID, update)
	if err != nil {
		utils.TrackError("database", "device_upsert_failed")
		return nil, false, err
	}

	created := result.SessionCount == 1 && result.TotalClicks == 0 && result.FirstSeen.Equal(result.LastSeen)
	if created {
		utils.TrackDeviceUpsert("created")
	} else {
		utils.TrackDeviceUpsert("updated")
	}
	return result, created, nil
}

// EnsureDevice guarantees a device record exists before a click is
// attributed to it. Unlike FindOrCreate it never touches session_count on
// an existing record; a record created here starts at session_count=1.
func (r *DeviceRepo) EnsureDevice(device *model.Device) (*model.Device, error) {
	timer := utils.TrackDBOperation("upsert", "devices")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if device == nil || device.DeviceID == "" {
		utils.TrackError("database", "invalid_device_data")
		return nil, fmt.Errorf("device with device_id is required")
	}

	now := time.Now().UTC()
	insertFields := deviceInsertFields(device, now)
	insertFields["session_count"] = 1
	update := bson.M{
		"$set":         bson.M{"last_seen": now},
		"$setOnInsert": insertFields,
	}

	result, err := r.findOneAndUpsert(ctx, device.DeviceID, update)
	if err != nil {
		utils.TrackError("database", "device_upsert_failed")
		return nil, err
	}
	return result, nil
}

// findOneAndUpsert runs an upsert keyed by device_id and returns the
// post-update document. A concurrent insert of the same device_id can
// surface as a duplicate key error from the unique index; that race is
// recovered by retrying once, which then takes the update branch.
func (r *DeviceRepo) findOneAndUpsert(ctx context.Context, deviceID string, update bson.M) (*model.Device, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var device model.Device
	err := r.MongoCollection.FindOneAndUpdate(ctx, bson.M{"device_id": deviceID}, update, opts).Decode(&device)
	if mongo.IsDuplicateKeyError(err) {
		utils.TrackDeviceUpsert("retried")
		err = r.MongoCollection.FindOneAndUpdate(ctx, bson.M{"device_id": deviceID}, update, opts).Decode(&device)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device: %w", err)
	}
	return &device, nil
}

// IncrementClickCount bumps total_clicks on an existing device. There is no
// creation path here; click flows call EnsureDevice first.
func (r *DeviceRepo) IncrementClickCount(deviceID string) error {
	timer := utils.TrackDBOperation("update", "devices")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if deviceID == "" {
		utils.TrackError("database", "empty_device_id")
		return fmt.Errorf("deviceID cannot be empty")
	}

	update := bson.M{
		"$inc": bson.M{"total_clicks": 1},
		"$set": bson.M{"last_seen": time.Now().UTC()},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"device_id": deviceID}, update)
	if err != nil {
		utils.TrackError("database", "click_increment_failed")
		return fmt.Errorf("failed to increment click count: %w", err)
	}
	if result.MatchedCount == 0 {
		utils.TrackError("database", "device_not_found")
		return fmt.Errorf("device not found")
	}
	return nil
}

// GetByDeviceID returns nil, nil when the device does not exist.
func (r *DeviceRepo) GetByDeviceID(deviceID string) (*model.Device, error) {
	timer := utils.TrackDBOperation("find", "devices")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if deviceID == "" {
		return nil, fmt.Errorf("deviceID cannot be empty")
	}

	var device model.Device
	err := r.MongoCollection.FindOne(ctx, bson.M{"device_id": deviceID}).Decode(&device)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "device_fetch_failed")
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	return &device, nil
}

// GetDeviceStats returns the overview row. ByType is the raw per-document
// projection, not grouped counts; the admin dashboard reduces it on its
// side and that contract is kept as-is.
func (r *DeviceRepo) GetDeviceStats() (*model.DeviceStats, error) {
	timer := utils.TrackDBOperation("aggregate", "devices")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := r.MongoCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.TrackError("database", "stats_count_failed")
		return nil, fmt.Errorf("failed to count devices: %w", err)
	}

	// Trailing 24h window, boundary inclusive
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	activeToday, err := r.MongoCollection.CountDocuments(ctx, bson.M{
		"last_seen": bson.M{"$gte": cutoff},
	})
	if err != nil {
		utils.TrackError("database", "stats_count_failed")
		return nil, fmt.Errorf("failed to count active devices: %w", err)
	}

	opts := options.Find().SetProjection(bson.M{
		"device.type":  1,
		"browser.name": 1,
		"os.name":      1,
	})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		utils.TrackError("database", "stats_projection_failed")
		return nil, fmt.Errorf("failed to project device types: %w", err)
	}
	defer cursor.Close(ctx)

	byType := make([]model.DeviceTypeEntry, 0)
	for cursor.Next(ctx) {
		var doc struct {
			Device  struct{ Type string } `bson:"device"`
			Browser struct{ Name string } `bson:"browser"`
			OS      struct{ Name string } `bson:"os"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode device projection: %w", err)
		}
		byType = append(byType, model.DeviceTypeEntry{
			Type:    doc.Device.Type,
			Browser: doc.Browser.Name,
			OS:      doc.OS.Name,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device projection: %w", err)
	}

	return &model.DeviceStats{
		TotalDevices: total,
		ActiveToday:  activeToday,
		ByType:       byType,
	}, nil
}

// GetPopularDevices groups devices by the (type, browser, os) triple and
// ranks by count descending. Tie order between equal counts is whatever
// the aggregation engine produces.
func (r *DeviceRepo) GetPopularDevices(limit int) ([]model.PopularDevice, error) {
	timer := utils.TrackDBOperation("aggregate", "devices")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit < 0 {
		return nil, fmt.Errorf("limit cannot be negative")
	}
	if limit == 0 {
		return []model.PopularDevice{}, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "device_type", Value: "$device.type"},
				{Key: "browser", Value: "$browser.name"},
				{Key: "os", Value: "$os.name"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_sessions", Value: bson.D{{Key: "$avg", Value: "$session_count"}}},
			{Key: "avg_clicks", Value: bson.D{{Key: "$avg", Value: "$total_clicks"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "device_type", Value: "$_id.device_type"},
			{Key: "browser", Value: "$_id.browser"},
			{Key: "os", Value: "$_id.os"},
			{Key: "count", Value: 1},
			{Key: "avg_sessions", Value: 1},
			{Key: "avg_clicks", Value: 1},
		}}},
	}

	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.TrackError("database", "popular_devices_failed")
		return nil, fmt.Errorf("failed to aggregate popular devices: %w", err)
	}
	defer cursor.Close(ctx)

	popular := make([]model.PopularDevice, 0, limit)
	if err := cursor.All(ctx, &popular); err != nil {
		return nil, fmt.Errorf("failed to decode popular devices: %w", err)
	}
	return popular, nil
}

// DeleteAll is the admin "Delete All" escape hatch.
func (r *DeviceRepo) DeleteAll() (int64, error) {
	timer := utils.TrackDBOperation("delete", "devices")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.MongoCollection.DeleteMany(ctx, bson.M{})
	if err != nil {
		utils.TrackError("database", "device_bulk_delete_failed")
		return 0, fmt.Errorf("failed to delete devices: %w", err)
	}
	return result.DeletedCount, nil
}
