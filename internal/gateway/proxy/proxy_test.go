package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Query       string `json:"query"`
	Auth        string `json:"auth"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "editor")
		w.WriteHeader(http.StatusTeapot)
		_ = json.NewEncoder(w).Encode(echo{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMount_ForwardsRequest(t *testing.T) {
	upstream := newUpstream(t)
	p := New(time.Second, nil)

	app := fiber.New()
	app.All("/api/v1/editor/*", p.Mount("/api/v1/editor", upstream.URL))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/floors/f1/rooms?dry=1", strings.NewReader(`{"name":"Hall"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "editor", resp.Header.Get("X-Upstream"))

	var got echo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, echo{
		Method:      http.MethodPost,
		Path:        "/floors/f1/rooms",
		Query:       "dry=1",
		Auth:        "Bearer tok",
		ContentType: "application/json",
		Body:        `{"name":"Hall"}`,
	}, got)
}

func TestForward_Multipart(t *testing.T) {
	upstream := newUpstream(t)
	p := New(time.Second, nil)

	app := fiber.New()
	app.Post("/import", p.To(upstream.URL+"/floors/f1/import"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "plan.svg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("<svg/>"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got echo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, mw.FormDataContentType(), got.ContentType)
	assert.Contains(t, got.Body, `filename="plan.svg"`)
	assert.Contains(t, got.Body, "<svg/>")
}

func TestForward_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := New(time.Second, nil)
	app := fiber.New()
	app.Get("/x", p.To(url+"/x"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	assert.Error(t, p.Ping(url+"/health/live")(context.Background()))
}

func TestPing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health/live" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer upstream.Close()

	p := New(time.Second, nil)
	assert.NoError(t, p.Ping(upstream.URL+"/health/live")(context.Background()))

	err := p.Ping(upstream.URL + "/down")(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
}
