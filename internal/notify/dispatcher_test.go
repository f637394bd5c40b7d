package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/Texmexdex/MonitoringTexter/internal/config"
	"github.com/Texmexdex/MonitoringTexter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEmailSender 记录调用的邮件渠道替身
type fakeEmailSender struct {
	sendCalls int
	sendErr   error
}

func (f *fakeEmailSender) Send(ctx context.Context, subject, body string) error {
	f.sendCalls++
	return f.sendErr
}

func (f *fakeEmailSender) Test(ctx context.Context) (bool, string) {
	return f.sendErr == nil, "fake"
}

// fakePushSender 记录调用的推送渠道替身
type fakePushSender struct {
	sendCalls int
	sendErr   error
	lastLoad  PushPayload
}

func (f *fakePushSender) Send(ctx context.Context, payload PushPayload) error {
	f.sendCalls++
	f.lastLoad = payload
	return f.sendErr
}

func (f *fakePushSender) Test(ctx context.Context) (bool, string) {
	return f.sendErr == nil, "fake"
}

// fakeProvider 记录调用的短信服务商替身
type fakeProvider struct {
	name      string
	sendCalls int
	result    bool
	lastTo    []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Send(ctx context.Context, message string, toNumbers []string) bool {
	f.sendCalls++
	f.lastTo = toNumbers
	return f.result
}

func testSnapshot() models.StationSnapshot {
	return models.StationSnapshot{
		Name:        "Pump House",
		PhoneNumber: "+15551234567",
		MinValue:    32.5,
		MaxValue:    72.5,
		Value:       80.0,
	}
}

func newTestDispatcher(cfg config.NotifyConfig) (*Dispatcher, *fakeEmailSender, *fakePushSender, *fakeProvider) {
	email := &fakeEmailSender{}
	push := &fakePushSender{}
	sms := &fakeProvider{name: ProviderTwilio, result: true}

	d := NewDispatcher(cfg, zap.NewNop())
	d.email = email
	d.push = push
	d.providers = map[string]Provider{sms.name: sms}

	return d, email, push, sms
}

func TestSendAlert_OnlyEnabledChannelsInResult(t *testing.T) {
	cfg := config.NotifyConfig{}
	cfg.Email.Enabled = false
	cfg.SMS.Enabled = true
	cfg.SMS.Provider = ProviderTwilio
	cfg.SMS.ToNumbers = []string{"+15550001111"}
	cfg.Push.Enabled = true
	cfg.Push.WebhookURL = "http://example.invalid/hook"

	d, email, push, sms := newTestDispatcher(cfg)

	results := d.SendAlert(context.Background(), testSnapshot())

	// email 禁用：不出现在结果中，也绝不触碰邮件传输
	assert.Equal(t, 0, email.sendCalls)
	assert.NotContains(t, results, ChannelEmail)

	require.Len(t, results, 2)
	assert.True(t, results[ChannelSMS])
	assert.True(t, results[ChannelPush])
	assert.Equal(t, 1, sms.sendCalls)
	assert.Equal(t, 1, push.sendCalls)
}

func TestSendAlert_ChannelFailureIsIsolated(t *testing.T) {
	cfg := config.NotifyConfig{}
	cfg.Email.Enabled = true
	cfg.SMS.Enabled = true
	cfg.SMS.Provider = ProviderTwilio
	cfg.SMS.ToNumbers = []string{"+15550001111"}
	cfg.Push.Enabled = true

	d, email, push, sms := newTestDispatcher(cfg)
	email.sendErr = errors.New("smtp connection refused")

	results := d.SendAlert(context.Background(), testSnapshot())

	// 邮件失败不阻断其他渠道
	require.Len(t, results, 3)
	assert.False(t, results[ChannelEmail])
	assert.True(t, results[ChannelSMS])
	assert.True(t, results[ChannelPush])
	assert.Equal(t, 1, sms.sendCalls)
	assert.Equal(t, 1, push.sendCalls)
}

func TestSendAlert_PushPayloadCarriesSnapshot(t *testing.T) {
	cfg := config.NotifyConfig{}
	cfg.Push.Enabled = true

	d, _, push, _ := newTestDispatcher(cfg)

	d.SendAlert(context.Background(), testSnapshot())

	require.NotNil(t, push.lastLoad.Station)
	assert.Equal(t, "Pump House", push.lastLoad.Station.Name)
	assert.Equal(t, 80.0, push.lastLoad.Station.Value)
	assert.Equal(t, "high", push.lastLoad.Priority)
	assert.Equal(t, "alert", push.lastLoad.Type)
}

func TestSendAlert_UnknownProviderFailsChannel(t *testing.T) {
	cfg := config.NotifyConfig{}
	cfg.SMS.Enabled = true
	cfg.SMS.Provider = "carrier_pigeon"
	cfg.SMS.ToNumbers = []string{"+15550001111"}

	d, _, _, sms := newTestDispatcher(cfg)

	results := d.SendAlert(context.Background(), testSnapshot())

	assert.False(t, results[ChannelSMS])
	assert.Equal(t, 0, sms.sendCalls)
}

func TestSendAlert_SMSWithoutRecipientsFails(t *testing.T) {
	cfg := config.NotifyConfig{}
	cfg.SMS.Enabled = true
	cfg.SMS.Provider = ProviderTwilio

	d, _, _, sms := newTestDispatcher(cfg)

	results := d.SendAlert(context.Background(), testSnapshot())

	assert.False(t, results[ChannelSMS])
	assert.Equal(t, 0, sms.sendCalls)
}

func TestSendAlert_AllChannelsDisabled(t *testing.T) {
	d, _, _, _ := newTestDispatcher(config.NotifyConfig{})

	results := d.SendAlert(context.Background(), testSnapshot())

	assert.Empty(t, results)
}

func TestTestSMS_NotEnabled(t *testing.T) {
	d, _, _, _ := newTestDispatcher(config.NotifyConfig{})

	ok, reason := d.TestSMS(context.Background())

	assert.False(t, ok)
	assert.Equal(t, "SMS notifications not enabled", reason)
}

func TestBuildAlertMessage_BelowMinimum(t *testing.T) {
	snap := testSnapshot()
	snap.Value = 20.0

	subject, body := BuildAlertMessage(snap)

	assert.Contains(t, subject, "Pump House")
	assert.Contains(t, body, "BELOW minimum (20.00 < 32.5)")
	assert.Contains(t, body, "Safe Range: 32.5 - 72.5")
	assert.Contains(t, body, "+15551234567")
}

func TestBuildAlertMessage_AboveMaximum(t *testing.T) {
	subject, body := BuildAlertMessage(testSnapshot())

	assert.Contains(t, subject, "Out of Range")
	assert.Contains(t, body, "ABOVE maximum (80.00 > 72.5)")
	assert.Contains(t, body, "Current Value: 80.00")
}
