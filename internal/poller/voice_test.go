package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Texmexdex/MonitoringTexter/internal/voiceapi"
)

type fakeVoiceInbox struct {
	messages []voiceapi.Message
	err      error
	calls    int
}

func (f *fakeVoiceInbox) Messages(ctx context.Context) ([]voiceapi.Message, error) {
	f.calls++
	return f.messages, f.err
}

type capturedMessage struct {
	senderID string
	text     string
}

func captureHandler(sink *[]capturedMessage) Handler {
	return func(senderID, text string) {
		*sink = append(*sink, capturedMessage{senderID: senderID, text: text})
	}
}

func TestVoicePoller_DeliversNewMessages(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	inbox := &fakeVoiceInbox{
		messages: []voiceapi.Message{
			{ID: "m1", From: "+15551234567", Text: "Reading: 68.2"},
			{ID: "m2", From: "+15557654321", Text: "redmond 80.0"},
		},
	}

	var got []capturedMessage
	p := NewVoicePoller(inbox, time.Minute, d, captureHandler(&got), zap.NewNop())

	assert.NoError(t, p.pollOnce(context.Background()))
	assert.Equal(t, []capturedMessage{
		{senderID: "+15551234567", text: "Reading: 68.2"},
		{senderID: "+15557654321", text: "redmond 80.0"},
	}, got)
}

func TestVoicePoller_SameMessageTwiceIngestsOnce(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	inbox := &fakeVoiceInbox{
		messages: []voiceapi.Message{
			{ID: "m1", From: "+15551234567", Text: "Reading: 68.2"},
		},
	}

	var got []capturedMessage
	p := NewVoicePoller(inbox, time.Minute, d, captureHandler(&got), zap.NewNop())

	assert.NoError(t, p.pollOnce(context.Background()))
	assert.NoError(t, p.pollOnce(context.Background()))
	assert.Len(t, got, 1, "dedup must swallow the second sighting")
}

func TestVoicePoller_SkipsIncompleteMessages(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	inbox := &fakeVoiceInbox{
		messages: []voiceapi.Message{
			{ID: "", From: "+15551234567", Text: "no id"},
			{ID: "m2", From: "", Text: "no sender"},
			{ID: "m3", From: "+15551234567", Text: ""},
			{ID: "m4", From: "+15551234567", Text: "Reading: 42.0"},
		},
	}

	var got []capturedMessage
	p := NewVoicePoller(inbox, time.Minute, d, captureHandler(&got), zap.NewNop())

	assert.NoError(t, p.pollOnce(context.Background()))
	assert.Equal(t, []capturedMessage{
		{senderID: "+15551234567", text: "Reading: 42.0"},
	}, got)
}

func TestVoicePoller_InboxErrorPropagates(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	inbox := &fakeVoiceInbox{err: errors.New("session expired")}

	var got []capturedMessage
	p := NewVoicePoller(inbox, time.Minute, d, captureHandler(&got), zap.NewNop())

	assert.Error(t, p.pollOnce(context.Background()))
	assert.Empty(t, got)
}
