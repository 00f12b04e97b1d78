package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/service"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// Смоук-тест живого сервера: подключается к /ws, начинает игру, забирает
// деньги и ждёт два game_state.
func main() {
	_ = godotenv.Load()
	logger.Init("info", false)

	userID := flag.Int64("user", 1, "user id to play as")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	service.InitJWT(secret)
	token, err := service.GenerateJWT(*userID)
	if err != nil {
		logger.Fatal("gen token", "error", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", base, token), nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}
	defer conn.Close()

	waitFor(conn, "ready")

	var started struct {
		ID string `json:"id"`
	}
	call(http.MethodPost, "http://"+base+"/api/v1/games", token, &started)
	logger.Info("game started", "id", started.ID)
	waitFor(conn, "game_state")

	call(http.MethodPut, "http://"+base+"/api/v1/games/"+started.ID+"/take_money", token, nil)
	waitFor(conn, "game_state")

	logger.Info("smoke test finished")
}

func call(method, url, token string, out any) {
	req, err := http.NewRequest(method, url, bytes.NewReader(nil))
	if err != nil {
		logger.Fatal("build request", "error", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatal("request failed", "url", url, "error", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 300 {
		logger.Fatal("unexpected status", "url", url, "status", res.StatusCode, "body", string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			logger.Fatal("decode response", "error", err)
		}
	}
}

func waitFor(conn *websocket.Conn, msgType string) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(msg, &env)
		logger.Info("ws frame", "type", env.Type, "bytes", len(msg))
		if env.Type == msgType {
			return
		}
	}
	logger.Fatal("no frame received", "type", msgType)
}
