package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func msg(t *testing.T, typ string, data any) Message {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Message{Type: typ, Data: raw}
}

func TestDecode(t *testing.T) {
	u, ok, err := Decode(msg(t, TypeRoomState, map[string]any{
		"roomId": "r1",
		"fields": map[string]any{"light": true},
	}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "room:r1", u.Key)
	assert.Equal(t, true, u.Fields["light"])

	u, ok, err = Decode(msg(t, TypeSensor, SensorReading{SensorID: "s1", RoomID: "r1", Kind: "temperature", Value: 21.5, Unit: "C"}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sensor:s1", u.Key)
	assert.Equal(t, map[string]any{"kind": "temperature", "value": 21.5, "unit": "C", "roomId": "r1"}, u.Fields)

	_, ok, err = Decode(msg(t, "notification", map[string]any{"text": "hi"}))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Decode(msg(t, TypeRoomState, map[string]any{"fields": map[string]any{}}))
	require.Error(t, err)

	_, _, err = Decode(Message{Type: TypeSensor, Data: json.RawMessage(`"oops"`)})
	require.Error(t, err)
}

func testStores(t *testing.T) map[string]StateStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]StateStore{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, "live:"),
	}
}

func TestStateStore_LastWriteWinsPerField(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Apply(ctx, Update{Key: "room:r1", Fields: map[string]any{"light": true, "temp": 20.0}}))
			require.NoError(t, store.Apply(ctx, Update{Key: "room:r1", Fields: map[string]any{"light": false}}))

			got, err := store.Get(ctx, "room:r1")
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"light": false, "temp": 20.0}, got)

			empty, err := store.Get(ctx, "room:none")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestRedisStore_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "live:")
	require.NoError(t, store.Apply(context.Background(), Update{Key: "room:r1", Fields: map[string]any{"light": true}}))
	assert.Equal(t, "true", mr.HGet("live:room:r1", "light"))

	mr.HSet("live:room:r1", "legacy", "plain-text")
	got, err := store.Get(context.Background(), "room:r1")
	require.NoError(t, err)
	assert.Equal(t, "plain-text", got["legacy"])
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()

	b.Publish(Update{Key: "room:a"})
	assert.Equal(t, "room:a", (<-ch1).Key)
	assert.Equal(t, "room:a", (<-ch2).Key)

	b.Unsubscribe(ch1)
	_, open := <-ch1
	assert.False(t, open)

	// отстающий подписчик не блокирует Publish
	for i := 0; i < 100; i++ {
		b.Publish(Update{Key: "room:b"})
	}
	b.Unsubscribe(ch2)
}

func TestSubscriber_AppliesAndPublishes(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotAuth := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case gotAuth <- r.Header.Get("Authorization"):
		default:
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(map[string]any{"type": "room_state", "data": map[string]any{"roomId": "r1", "fields": map[string]any{"light": true, "temp": 19}}})
		_ = conn.WriteJSON(map[string]any{"type": "notification", "data": map[string]any{"text": "ignored"}})
		_ = conn.WriteJSON(map[string]any{"type": "room_state", "data": map[string]any{"roomId": "r1", "fields": map[string]any{"light": false}}})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	store := NewMemoryStore()
	hub := NewBroadcaster()
	updates := hub.Subscribe()
	defer hub.Unsubscribe(updates)

	sub := NewSubscriber("ws"+strings.TrimPrefix(srv.URL, "http"), "tok", store, hub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sub.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case u := <-updates:
			assert.Equal(t, "room:r1", u.Key)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for live update")
		}
	}

	got, err := store.Get(context.Background(), "room:r1")
	require.NoError(t, err)
	assert.Equal(t, false, got["light"])
	assert.Equal(t, 19.0, got["temp"])
	assert.Equal(t, "Bearer tok", <-gotAuth)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestSubscriber_RetriesUntilCancelled(t *testing.T) {
	sub := NewSubscriber("ws://127.0.0.1:1/live", "", NewMemoryStore(), nil, nil)
	sub.minBackoff = 5 * time.Millisecond
	sub.maxBackoff = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := sub.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
