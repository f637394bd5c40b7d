package receiver

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Texmexdex/MonitoringTexter/internal/config"
	"github.com/Texmexdex/MonitoringTexter/internal/models"
	"github.com/Texmexdex/MonitoringTexter/internal/poller"
)

type fakePoller struct {
	name    string
	running bool
	events  *[]string
	handler poller.Handler
}

func (f *fakePoller) Start() {
	f.running = true
	*f.events = append(*f.events, "start:"+f.name)
}

func (f *fakePoller) Stop() {
	f.running = false
	*f.events = append(*f.events, "stop:"+f.name)
}

func (f *fakePoller) IsRunning() bool {
	return f.running
}

type fakeIngestor struct {
	reading *models.Reading
	err     error
	calls   []string
}

func (f *fakeIngestor) Ingest(ctx context.Context, phoneNumber, rawText string) (*models.Reading, error) {
	f.calls = append(f.calls, phoneNumber)
	return f.reading, f.err
}

func setupManager(t *testing.T, ingestor Ingestor) (*Manager, *[]string) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{}
	cfg.Receiver.CheckInterval = 60

	dedup := poller.NewDeduper(client, 0, zap.NewNop())
	m := NewManager(cfg, ingestor, dedup, zap.NewNop())

	events := &[]string{}
	m.factory = func(method string, handler poller.Handler) (poller.Poller, error) {
		p := &fakePoller{name: method, events: events, handler: handler}
		*events = append(*events, "build:"+method)
		return p, nil
	}
	return m, events
}

func TestManager_StartPollerMethod(t *testing.T) {
	m, events := setupManager(t, &fakeIngestor{})

	require.NoError(t, m.Start(config.MethodGoogleVoice, nil))
	assert.True(t, m.IsRunning())
	assert.Equal(t, []string{"build:google_voice", "start:google_voice"}, *events)
}

func TestManager_SwitchStopsOldBeforeStartingNew(t *testing.T) {
	m, events := setupManager(t, &fakeIngestor{})

	require.NoError(t, m.Start(config.MethodGoogleVoice, nil))
	require.NoError(t, m.Start(config.MethodEmail, nil))

	assert.Equal(t, []string{
		"build:google_voice",
		"start:google_voice",
		"stop:google_voice",
		"build:email",
		"start:email",
	}, *events)
	assert.True(t, m.IsRunning())
}

func TestManager_ManualMethodStopsPolling(t *testing.T) {
	m, events := setupManager(t, &fakeIngestor{})

	require.NoError(t, m.Start(config.MethodEmail, nil))
	require.NoError(t, m.Start(config.MethodManual, nil))

	assert.False(t, m.IsRunning())
	assert.Equal(t, []string{"build:email", "start:email", "stop:email"}, *events)
}

func TestManager_Stop(t *testing.T) {
	m, _ := setupManager(t, &fakeIngestor{})

	require.NoError(t, m.Start(config.MethodEmail, nil))
	m.Stop()
	assert.False(t, m.IsRunning())

	// 没有轮询器时 Stop 是空操作
	m.Stop()
	assert.False(t, m.IsRunning())
}

func TestManager_FactoryErrorPropagates(t *testing.T) {
	m, _ := setupManager(t, &fakeIngestor{})
	m.factory = func(method string, handler poller.Handler) (poller.Poller, error) {
		return nil, errors.New("bad credentials")
	}

	assert.Error(t, m.Start(config.MethodEmail, nil))
	assert.False(t, m.IsRunning())
}

func TestManager_HandlerFeedsIngestorAndCallback(t *testing.T) {
	reading := &models.Reading{ID: 7, StationID: 3, Value: 68.2}
	ingestor := &fakeIngestor{reading: reading}
	m, _ := setupManager(t, ingestor)

	var delivered []*models.Reading
	require.NoError(t, m.Start(config.MethodGoogleVoice, func(r *models.Reading) {
		delivered = append(delivered, r)
	}))

	p := m.current.(*fakePoller)
	p.handler("+15551234567", "Reading: 68.2")

	assert.Equal(t, []string{"+15551234567"}, ingestor.calls)
	assert.Equal(t, []*models.Reading{reading}, delivered)
}

func TestManager_HandlerDropsFailedIngest(t *testing.T) {
	ingestor := &fakeIngestor{err: errors.New("unknown sender")}
	m, _ := setupManager(t, ingestor)

	callbackFired := false
	require.NoError(t, m.Start(config.MethodGoogleVoice, func(r *models.Reading) {
		callbackFired = true
	}))

	p := m.current.(*fakePoller)
	p.handler("+15550000000", "Reading: 68.2")

	assert.False(t, callbackFired, "failed ingest must not reach the callback")
}
