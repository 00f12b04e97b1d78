package ws

import (
	"context"
	"net/http"

	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CurrentGameSource gives the state pushed right after connecting.
type CurrentGameSource interface {
	Current(ctx context.Context, userID int64) (*service.GameView, error)
}

// HandleWS upgrades GET /ws?token=... and subscribes the user to updates of
// their games. games may be nil.
func HandleWS(hub *Hub, games CurrentGameSource, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "user_id", userID, "error", err)
			return
		}

		var current *service.GameView
		if games != nil {
			if v, err := games.Current(c.Request.Context(), userID); err == nil {
				current = v
			}
		}

		client := NewClient(userID, conn, hub)
		go client.Run(current)
	}
}
