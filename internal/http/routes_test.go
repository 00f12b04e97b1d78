package http

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/game"
	"github.com/KoshmareG/KHSM/internal/http/handlers"
	"github.com/KoshmareG/KHSM/internal/repository"
	"github.com/KoshmareG/KHSM/internal/service"
	"github.com/KoshmareG/KHSM/internal/ws"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	service.InitJWT("routes-test-secret")
}

type testApp struct {
	router *gin.Engine
	games  *repository.MemoryGameRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	var qs []domain.Question
	for lvl := 0; lvl < 15; lvl++ {
		qs = append(qs, domain.Question{
			Level:        lvl,
			Text:         "Вопрос " + strconv.Itoa(lvl),
			Answers:      [domain.AnswersCount]string{"один", "два", "три", "четыре"},
			CorrectIndex: lvl % domain.AnswersCount,
		})
	}
	bank, err := repository.NewQuestionBank(qs, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewQuestionBank: %v", err)
	}

	games := repository.NewMemoryGameRepository()
	tm := repository.NewMemoryTxManager()
	balance := service.NewBalanceService(repository.NewMemoryUserRepository(true), repository.NewMemoryTransactionRepository(), tm)
	hub := ws.NewHub()
	audit := service.NewAuditService(repository.NewMemoryAuditRepository())
	gameSvc := service.NewGameService(games, bank, balance, tm, game.DefaultRules(),
		service.WithNotifier(hub),
		service.WithAudit(audit),
		service.WithRandSource(func() *rand.Rand { return rand.New(rand.NewSource(11)) }),
	)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Games:          gameSvc,
		Balance:        balance,
		Audit:          audit,
		Hub:            hub,
		Health:         handlers.NewHealthHandler("test", nil),
		GameRateLimit:  1000,
		GameRateWindow: time.Minute,
	})
	return &testApp{router: r, games: games}
}

func (a *testApp) do(t *testing.T, userID int64, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := service.GenerateJWT(userID)
		if err != nil {
			t.Fatalf("GenerateJWT: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (a *testApp) correctLetter(t *testing.T, gameID string) string {
	t.Helper()
	st, err := a.games.GetByID(context.Background(), gameID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return string(st.Questions[st.CurrentLevel].CorrectLetter())
}

func TestGameFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)

	w, body := app.do(t, 1, http.MethodPost, "/api/v1/games", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start = %d %s", w.Code, w.Body)
	}
	id := body["id"].(string)

	w, body = app.do(t, 1, http.MethodPost, "/api/v1/games", nil)
	if w.Code != http.StatusConflict || body["active_game_id"] != id {
		t.Fatalf("second start = %d %v", w.Code, body)
	}

	w, _ = app.do(t, 1, http.MethodPut, "/api/v1/games/"+id+"/answer", map[string]string{"letter": "z"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid letter = %d", w.Code)
	}

	for i := 0; i < 5; i++ {
		letter := app.correctLetter(t, id)
		w, body = app.do(t, 1, http.MethodPut, "/api/v1/games/"+id+"/answer", map[string]string{"letter": letter})
		if w.Code != http.StatusOK || body["correct"] != true {
			t.Fatalf("answer %d = %d %v", i, w.Code, body)
		}
	}

	w, body = app.do(t, 1, http.MethodPut, "/api/v1/games/"+id+"/help", map[string]string{"help_type": "audience_help"})
	if w.Code != http.StatusOK {
		t.Fatalf("help = %d %s", w.Code, w.Body)
	}
	w, _ = app.do(t, 1, http.MethodPut, "/api/v1/games/"+id+"/help", map[string]string{"help_type": "audience_help"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second help = %d", w.Code)
	}

	w, _ = app.do(t, 2, http.MethodGet, "/api/v1/games/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign game = %d", w.Code)
	}

	w, body = app.do(t, 1, http.MethodPut, "/api/v1/games/"+id+"/take_money", nil)
	if w.Code != http.StatusOK || body["status"] != "money" || body["prize"] != float64(1000) {
		t.Fatalf("take money = %d %v", w.Code, body)
	}

	w, _ = app.do(t, 1, http.MethodPut, "/api/v1/games/"+id+"/answer", map[string]string{"letter": "a"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("answer after finish = %d", w.Code)
	}

	w, body = app.do(t, 1, http.MethodGet, "/api/v1/me", nil)
	if w.Code != http.StatusOK || body["balance"] != float64(1000) {
		t.Fatalf("me = %d %v", w.Code, body)
	}

	w, body = app.do(t, 1, http.MethodGet, "/api/v1/me/games", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me/games = %d", w.Code)
	}
	list := body["games"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["status_label"] != "деньги" {
		t.Fatalf("games = %v", list)
	}

	w, _ = app.do(t, 1, http.MethodGet, "/api/v1/games/current", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("current after finish = %d", w.Code)
	}

	w, body = app.do(t, 1, http.MethodGet, "/api/v1/me/audit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me/audit = %d", w.Code)
	}
	actions := map[string]bool{}
	for _, l := range body["logs"].([]any) {
		actions[l.(map[string]any)["action"].(string)] = true
	}
	for _, a := range []string{"game_start", "game_answer", "game_help", "game_end", "balance_credit"} {
		if !actions[a] {
			t.Fatalf("audit has no %s: %v", a, actions)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/me", "/api/v1/games/current", "/api/v1/me/games"} {
		w, _ := app.do(t, 0, http.MethodGet, path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s = %d; want 401", path, w.Code)
		}
	}
}

func TestPublicEndpoints(t *testing.T) {
	app := newTestApp(t)

	w, body := app.do(t, 0, http.MethodGet, "/api/v1/ladder", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ladder = %d", w.Code)
	}
	levels := body["levels"].([]any)
	if len(levels) != 15 || body["time_limit_seconds"] != float64(3600) {
		t.Fatalf("ladder = %v", body)
	}
	if levels[4].(map[string]any)["fireproof"] != true {
		t.Fatalf("level 4 = %v", levels[4])
	}

	for _, path := range []string{"/health", "/healthz", "/readyz", "/metrics"} {
		w, _ := app.do(t, 0, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s = %d", path, w.Code)
		}
	}
}
