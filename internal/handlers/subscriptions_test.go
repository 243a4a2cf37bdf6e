package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

func TestSubscriptionHandlerToggle(t *testing.T) {
	users := newFakeUserStore()
	channel := seedUser(t, users, "channel", "channel@example.com", "supersafe123")
	subscriber := seedUser(t, users, "viewer", "viewer@example.com", "supersafe123")

	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore(), Users: users}

	toggle := func() (int, bool) {
		req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID+"/toggle", nil), subscriber)
		req.SetPathValue("channelId", channel.ID)
		rec := httptest.NewRecorder()

		handler.Toggle(rec, req)

		if rec.Code != http.StatusOK {
			return rec.Code, false
		}
		env := decodeEnvelope(t, rec)
		var result map[string]bool
		if err := json.Unmarshal(env.Data, &result); err != nil {
			t.Fatalf("decode toggle result: %v", err)
		}
		return rec.Code, result["subscribed"]
	}

	if code, subscribed := toggle(); code != http.StatusOK || !subscribed {
		t.Fatalf("first toggle should subscribe, got code=%d subscribed=%v", code, subscribed)
	}
	if code, subscribed := toggle(); code != http.StatusOK || subscribed {
		t.Fatalf("second toggle should unsubscribe, got code=%d subscribed=%v", code, subscribed)
	}
}

func TestSubscriptionHandlerToggleSelf(t *testing.T) {
	users := newFakeUserStore()
	user := seedUser(t, users, "solo", "solo@example.com", "supersafe123")

	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore(), Users: users}

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+user.ID+"/toggle", nil), user)
	req.SetPathValue("channelId", user.ID)
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self-subscription must be rejected with %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSubscriptionHandlerToggleMissingChannel(t *testing.T) {
	users := newFakeUserStore()
	subscriber := seedUser(t, users, "viewer", "viewer@example.com", "supersafe123")

	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore(), Users: users}

	missing := newID()
	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+missing+"/toggle", nil), subscriber)
	req.SetPathValue("channelId", missing)
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSubscriptionHandlerSubscribersEmpty(t *testing.T) {
	users := newFakeUserStore()
	channel := seedUser(t, users, "channel", "channel@example.com", "supersafe123")

	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore(), Users: users}

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/c/"+channel.ID, nil), channel)
	req.SetPathValue("channelId", channel.ID)
	rec := httptest.NewRecorder()

	handler.Subscribers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var got []models.OwnerRef
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode subscribers: %v", err)
	}
	if got == nil {
		t.Fatal("expected empty list, not null")
	}
}
