package users

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/internal/shared"
)

func newRegisterRouter(registrar *capturingRegistrar) http.Handler {
	svc := NewService(&memoryUserRepo{users: map[int64]*User{}}, registrar)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

	r := chi.NewRouter()
	handler.MountPublicRoutes(r)
	return r
}

const registerBody = `{"email":"new@example.com","username":"newuser","password":"hunter2hunter2"}`

func TestRegisterFallsBackToAttributionCookie(t *testing.T) {
	registrar := &capturingRegistrar{}
	router := newRegisterRouter(registrar)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(registerBody))
	req.AddCookie(&http.Cookie{Name: shared.ReferralCookieName, Value: "COOKIE01"})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "COOKIE01", registrar.referrerCode)
}

func TestRegisterBodyCodeWinsOverCookie(t *testing.T) {
	registrar := &capturingRegistrar{}
	router := newRegisterRouter(registrar)

	body := `{"email":"new@example.com","username":"newuser","password":"hunter2hunter2","referralCode":"BODY0001"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: shared.ReferralCookieName, Value: "COOKIE01"})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "BODY0001", registrar.referrerCode)
}

func TestRegisterWithoutCodeOrCookieIsOrganic(t *testing.T) {
	registrar := &capturingRegistrar{}
	router := newRegisterRouter(registrar)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(registerBody))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Empty(t, registrar.referrerCode)
}
