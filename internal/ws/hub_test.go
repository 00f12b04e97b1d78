package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-test-secret")
}

type staticGames struct {
	view *service.GameView
}

func (s staticGames) Current(ctx context.Context, userID int64) (*service.GameView, error) {
	if s.view == nil {
		return nil, service.ErrGameNotFound
	}
	return s.view, nil
}

func newServer(t *testing.T, hub *Hub, games CurrentGameSource) *httptest.Server {
	t.Helper()
	r := gin.New()
	r.GET("/ws", HandleWS(hub, games, ""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID int64) *websocket.Conn {
	t.Helper()
	token, err := service.GenerateJWT(userID)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return env
}

func TestNotifyGameReachesOwner(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub, nil)

	owner := dial(t, srv, 1)
	other := dial(t, srv, 2)
	if env := readEnvelope(t, owner); env.Type != MsgReady {
		t.Fatalf("first frame = %s; want ready", env.Type)
	}
	if env := readEnvelope(t, other); env.Type != MsgReady {
		t.Fatalf("first frame = %s; want ready", env.Type)
	}

	hub.NotifyGame(1, &service.GameView{ID: "g1", Status: domain.GameStatusMoney, Prize: 1000})

	env := readEnvelope(t, owner)
	if env.Type != MsgGameState {
		t.Fatalf("type = %s; want game_state", env.Type)
	}
	var v service.GameView
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if v.ID != "g1" || v.Prize != 1000 || v.Status != domain.GameStatusMoney {
		t.Fatalf("view = %+v", v)
	}

	// второй пользователь ничего не получил
	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatalf("other user received a message")
	}
}

func TestInitialStateAndPing(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub, staticGames{view: &service.GameView{ID: "current"}})

	conn := dial(t, srv, 5)
	if env := readEnvelope(t, conn); env.Type != MsgReady {
		t.Fatalf("first frame = %s", env.Type)
	}
	env := readEnvelope(t, conn)
	if env.Type != MsgGameState || !strings.Contains(string(env.Payload), `"current"`) {
		t.Fatalf("snapshot = %+v", env)
	}

	if err := conn.WriteJSON(Envelope{Type: MsgPing}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if env := readEnvelope(t, conn); env.Type != MsgPong {
		t.Fatalf("reply = %s; want pong", env.Type)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("nope")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if env := readEnvelope(t, conn); env.Type != MsgError {
		t.Fatalf("reply = %s; want error", env.Type)
	}
}

func TestUnregisterOnClose(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub, nil)

	conn := dial(t, srv, 9)
	readEnvelope(t, conn)
	if hub.Connected(9) != 1 {
		t.Fatalf("connected = %d", hub.Connected(9))
	}

	conn.Close()
	deadline := time.Now().Add(3 * time.Second)
	for hub.Connected(9) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client not unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// после отключения отправка не паникует
	hub.NotifyGame(9, &service.GameView{ID: "late"})
}

func TestHandleWSRequiresToken(t *testing.T) {
	srv := newServer(t, NewHub(), nil)

	for _, q := range []string{"", "?token=bad"} {
		res, err := http.Get(srv.URL + "/ws" + q)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%q: status = %d; want 401", q, res.StatusCode)
		}
	}
}
