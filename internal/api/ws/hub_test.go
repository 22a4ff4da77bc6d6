package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/user"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

func dialHub(t *testing.T, server *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?user_id=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConnection(t *testing.T, hub *Hub, userID uuid.UUID) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.HasUser(userID) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("connection never registered")
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub(logger.Get())
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()
	defer hub.Shutdown(context.Background())

	userID := uuid.New()
	conn := dialHub(t, server, userID)
	waitForConnection(t, hub, userID)

	require.True(t, hub.SendToUser(userID, []byte(`{"type":"signal"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"signal"}`, string(payload))
}

func TestHub_SendToUnknownUser(t *testing.T) {
	hub := NewHub(logger.Get())

	assert.False(t, hub.SendToUser(uuid.New(), []byte("x")))
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_RejectsInvalidUserID(t *testing.T) {
	hub := NewHub(logger.Get())
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "?user_id=not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSender_DeliversSignalPayload(t *testing.T) {
	hub := NewHub(logger.Get())
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()
	defer hub.Shutdown(context.Background())

	userID := uuid.New()
	conn := dialHub(t, server, userID)
	waitForConnection(t, hub, userID)

	sender := NewSender(hub)
	assert.Equal(t, "websocket", sender.Channel())

	sig := &signal.Signal{
		ID:          uuid.New(),
		StrategyID:  uuid.New(),
		Symbol:      "600519",
		Kind:        signal.KindBuy,
		Confidence:  0.82,
		Tier:        "high",
		Price:       decimal.NewFromFloat(1708),
		TargetPrice: decimal.NewNullDecimal(decimal.NewFromFloat(1790)),
		Reasoning:   signal.StringList{"breakout"},
		CreatedAt:   time.Now().UTC(),
	}

	err := sender.Send(context.Background(), &user.User{ID: userID}, sig)
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "signal", payload["type"])
	assert.Equal(t, "600519", payload["symbol"])
	assert.Equal(t, "buy", payload["kind"])
	assert.Equal(t, "1790", payload["target_price"])
	assert.Nil(t, payload["stop_loss"])
}

func TestSender_FailsWithoutConnection(t *testing.T) {
	hub := NewHub(logger.Get())
	sender := NewSender(hub)

	sig := &signal.Signal{ID: uuid.New(), Price: decimal.NewFromInt(10)}
	err := sender.Send(context.Background(), &user.User{ID: uuid.New()}, sig)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
