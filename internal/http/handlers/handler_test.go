package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KoshmareG/KHSM/internal/game"
	"github.com/KoshmareG/KHSM/internal/repository"
	"github.com/KoshmareG/KHSM/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.ActiveGameError{GameID: "g1"}, http.StatusConflict},
		{service.ErrGameAlreadyInProgress, http.StatusConflict},
		{service.ErrGameNotFound, http.StatusNotFound},
		{service.ErrUserNotFound, http.StatusNotFound},
		{game.ErrGameFinished, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", game.ErrHelpAlreadyUsed), http.StatusUnprocessableEntity},
		{game.ErrInvalidLetter, http.StatusBadRequest},
		{game.ErrUnknownHelp, http.StatusBadRequest},
		{fmt.Errorf("draw questions: %w", repository.ErrNotEnoughQuestions), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeError(c, tc.err)
		if w.Code != tc.want {
			t.Fatalf("writeError(%v) = %d; want %d", tc.err, w.Code, tc.want)
		}
	}
}

func TestWriteErrorActiveGameID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, &service.ActiveGameError{GameID: "abc"})

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["active_game_id"] != "abc" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadiness(t *testing.T) {
	r := gin.New()
	ok := NewHealthHandler("test", map[string]CheckFunc{
		"database": func(context.Context) error { return nil },
	})
	bad := NewHealthHandler("test", map[string]CheckFunc{
		"redis": func(context.Context) error { return errors.New("down") },
	})
	r.GET("/ok", ok.Readiness)
	r.GET("/bad", bad.Readiness)
	r.GET("/bad/health", bad.Health)

	cases := []struct {
		path string
		want int
	}{
		{"/ok", http.StatusOK},
		{"/bad", http.StatusServiceUnavailable},
		{"/bad/health", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("%s = %d; want %d", tc.path, w.Code, tc.want)
		}
	}
}
