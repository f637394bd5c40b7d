package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/Texmexdex/MonitoringTexter/internal/models"
	"github.com/Texmexdex/MonitoringTexter/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStationResolver 内存站点表替身
type fakeStationResolver struct {
	byPhone map[string]*models.Station
	byID    map[int64]*models.Station
}

func (f *fakeStationResolver) GetStation(ctx context.Context, stationID int64) (*models.Station, error) {
	if s, ok := f.byID[stationID]; ok {
		return s, nil
	}
	return nil, repository.ErrStationNotFound
}

func (f *fakeStationResolver) GetStationByPhone(ctx context.Context, phoneNumber string) (*models.Station, error) {
	if s, ok := f.byPhone[phoneNumber]; ok {
		return s, nil
	}
	return nil, repository.ErrStationNotFound
}

// fakeReadingStore 按站点当前范围判定 is_alert 的内存仓库替身
type fakeReadingStore struct {
	stations map[int64]*models.Station
	readings []*models.Reading
	nextID   int64
}

func (f *fakeReadingStore) AddReading(ctx context.Context, stationID int64, value float64, rawMessage string) (*models.Reading, error) {
	station, ok := f.stations[stationID]
	if !ok {
		return nil, repository.ErrStationNotFound
	}

	f.nextID++
	reading := &models.Reading{
		ID:         f.nextID,
		StationID:  stationID,
		Value:      value,
		RawMessage: rawMessage,
		IsAlert:    !station.InRange(value),
		ReceivedAt: time.Now(),
	}
	f.readings = append(f.readings, reading)
	return reading, nil
}

// fakeNotifier 记录分发调用的替身
type fakeNotifier struct {
	calls     int
	lastSnap  models.StationSnapshot
	results   map[string]bool
}

func (f *fakeNotifier) SendAlert(ctx context.Context, snap models.StationSnapshot) map[string]bool {
	f.calls++
	f.lastSnap = snap
	if f.results != nil {
		return f.results
	}
	return map[string]bool{"email": true}
}

func setupPipeline() (*Pipeline, *fakeReadingStore, *fakeNotifier) {
	station := &models.Station{
		ID:          1,
		Name:        "Pump House",
		PhoneNumber: "+15551234567",
		MinValue:    32.5,
		MaxValue:    72.5,
		Enabled:     true,
	}

	resolver := &fakeStationResolver{
		byPhone: map[string]*models.Station{station.PhoneNumber: station},
		byID:    map[int64]*models.Station{station.ID: station},
	}
	store := &fakeReadingStore{
		stations: map[int64]*models.Station{station.ID: station},
	}
	notifier := &fakeNotifier{}

	return NewPipeline(resolver, store, notifier, zap.NewNop()), store, notifier
}

func TestIngest_InRange_NoDispatch(t *testing.T) {
	p, store, notifier := setupPipeline()

	reading, err := p.Ingest(context.Background(), "+15551234567", "Station 1 - 56.893")

	require.NoError(t, err)
	assert.Equal(t, 56.893, reading.Value)
	assert.False(t, reading.IsAlert)
	assert.Len(t, store.readings, 1)
	assert.Equal(t, 0, notifier.calls)
}

func TestIngest_OutOfRange_DispatchesOnce(t *testing.T) {
	p, store, notifier := setupPipeline()

	// 端到端属性：range(32.5, 72.5) 收到 80.0 → 超限读数 + 一次分发
	reading, err := p.Ingest(context.Background(), "+15551234567", "Reading: 80.0")

	require.NoError(t, err)
	assert.True(t, reading.IsAlert)
	assert.Len(t, store.readings, 1)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, 80.0, notifier.lastSnap.Value)
	assert.Equal(t, "Pump House", notifier.lastSnap.Name)
	assert.Equal(t, 32.5, notifier.lastSnap.MinValue)
	assert.Equal(t, 72.5, notifier.lastSnap.MaxValue)
}

func TestIngest_UnknownSender(t *testing.T) {
	p, store, notifier := setupPipeline()

	reading, err := p.Ingest(context.Background(), "+15550000000", "Reading: 50.0")

	assert.ErrorIs(t, err, ErrUnknownSender)
	assert.Nil(t, reading)
	assert.Empty(t, store.readings)
	assert.Equal(t, 0, notifier.calls)
}

func TestIngest_UnparsableMessage(t *testing.T) {
	p, store, _ := setupPipeline()

	reading, err := p.Ingest(context.Background(), "+15551234567", "no numbers here")

	assert.ErrorIs(t, err, ErrUnparsableMessage)
	assert.Nil(t, reading)
	assert.Empty(t, store.readings)
}

func TestIngestValue_ManualEntry(t *testing.T) {
	p, store, notifier := setupPipeline()

	reading, err := p.IngestValue(context.Background(), 1, 20.0, "manual entry")

	require.NoError(t, err)
	assert.True(t, reading.IsAlert)
	assert.Len(t, store.readings, 1)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, 20.0, notifier.lastSnap.Value)
}

func TestIngestValue_UnknownStation(t *testing.T) {
	p, _, _ := setupPipeline()

	reading, err := p.IngestValue(context.Background(), 42, 50.0, "")

	assert.Error(t, err)
	assert.Nil(t, reading)
}

func TestIngest_DispatchFailureDoesNotFailIngest(t *testing.T) {
	p, store, notifier := setupPipeline()
	notifier.results = map[string]bool{"email": false, "sms": false}

	// 分发全部失败也不影响读数落库和返回
	reading, err := p.Ingest(context.Background(), "+15551234567", "Reading: 80.0")

	require.NoError(t, err)
	assert.True(t, reading.IsAlert)
	assert.Len(t, store.readings, 1)
}
