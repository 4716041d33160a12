// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaproject/mana/health"
)

type testAdmin struct {
	logLevel slog.LevelVar
	apiLogs  atomic.Bool
	health   *health.Health
	handler  http.Handler
}

func newTestAdmin() *testAdmin {
	a := &testAdmin{health: health.New(nil)}
	a.handler = HTTPHandler(&a.logLevel, &a.apiLogs, a.health)
	return a
}

func (a *testAdmin) do(t *testing.T, method, path, body string, out any) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	if out != nil {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(out))
	}
	return rr.Code
}

func TestLogLevel(t *testing.T) {
	a := newTestAdmin()
	a.logLevel.Set(slog.LevelInfo)

	var res logLevelResponse
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/admin/loglevel", "", &res))
	assert.Equal(t, "INFO", res.CurrentLevel)

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/admin/loglevel", `{"level":"debug"}`, &res))
	assert.Equal(t, "DEBUG", res.CurrentLevel)
	assert.Equal(t, slog.LevelDebug, a.logLevel.Level())
}

func TestLogLevelInvalid(t *testing.T) {
	a := newTestAdmin()

	var res errorResponse
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/admin/loglevel", `{"level":"invalid_body"}`, &res))
	assert.Equal(t, "Invalid verbosity level", res.ErrorMessage)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/admin/loglevel", `{`, &res))
	assert.Equal(t, "Invalid request body", res.ErrorMessage)
}

func TestAPILogs(t *testing.T) {
	a := newTestAdmin()

	var res apiLogsResponse
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/admin/apilogs", `{"enabled":true}`, &res))
	assert.True(t, res.Enabled)
	assert.True(t, a.apiLogs.Load())

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/admin/apilogs", "", &res))
	assert.True(t, res.Enabled)
}

func TestHealth(t *testing.T) {
	a := newTestAdmin()

	var status health.Status
	assert.Equal(t, http.StatusServiceUnavailable, a.do(t, http.MethodGet, "/admin/health", "", &status))
	assert.False(t, status.Healthy)

	a.health.Ready(true)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/admin/health", "", &status))
	assert.True(t, status.Healthy)
}
