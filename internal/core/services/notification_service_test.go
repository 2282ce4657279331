package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
)

type webhook struct {
	mu       sync.Mutex
	received []Notification
	auth     string
	status   int
}

func newWebhook(t *testing.T, status int) (*webhook, *httptest.Server) {
	t.Helper()
	w := &webhook{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var n Notification
		if err := json.NewDecoder(r.Body).Decode(&n); err == nil {
			w.mu.Lock()
			w.received = append(w.received, n)
			w.auth = r.Header.Get("Authorization")
			w.mu.Unlock()
		}
		rw.WriteHeader(w.status)
	}))
	t.Cleanup(srv.Close)
	return w, srv
}

func TestBroadcastDelivers(t *testing.T) {
	f := newFixture(t)
	hook, srv := newWebhook(t, http.StatusAccepted)
	svc := NewNotificationService(config.NotifyConfig{WebhookURL: srv.URL, Token: "hook-token", Timeout: 5 * time.Second}, f.auditSvc, logger.Nop())

	result, err := svc.Broadcast(context.Background(), admin, &BroadcastInput{Title: "Water cut", Message: "No water 10-12 on Sunday", Audience: "residents"})
	require.NoError(t, err)
	assert.True(t, result.Delivered)
	assert.Equal(t, AudienceResidents, result.Audience)

	require.Len(t, hook.received, 1)
	assert.Equal(t, EventBroadcast, hook.received[0].Event)
	assert.Equal(t, "Water cut", hook.received[0].Title)
	assert.Equal(t, "Admin", hook.received[0].SentBy)
	assert.Equal(t, "Bearer hook-token", hook.auth)
	assert.EqualValues(t, 1, f.auditCount(t, ActionBroadcast))
}

func TestBroadcastFailures(t *testing.T) {
	f := newFixture(t)
	_, srv := newWebhook(t, http.StatusBadGateway)
	svc := NewNotificationService(config.NotifyConfig{WebhookURL: srv.URL, Timeout: 5 * time.Second}, f.auditSvc, logger.Nop())
	ctx := context.Background()

	_, err := svc.Broadcast(ctx, admin, &BroadcastInput{Title: "Hi", Message: "there"})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Zero(t, f.auditCount(t, ActionBroadcast), "failed broadcasts are not audited")

	_, err = svc.Broadcast(ctx, admin, &BroadcastInput{Title: "", Message: "there"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.Broadcast(ctx, admin, &BroadcastInput{Title: "Hi", Message: "there", Audience: "everyone"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestBroadcastWithoutWebhook(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(config.NotifyConfig{}, f.auditSvc, logger.Nop())

	result, err := svc.Broadcast(context.Background(), admin, &BroadcastInput{Title: "Hi", Message: "there"})
	require.NoError(t, err)
	assert.False(t, result.Delivered)
	assert.Equal(t, AudienceAll, result.Audience)
	assert.EqualValues(t, 1, f.auditCount(t, ActionBroadcast))
}
