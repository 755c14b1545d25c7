// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmaher/ExpenseReport/internal/api"
	"github.com/slmaher/ExpenseReport/internal/platform/constants"
)

func newHealthHandlers(deps api.HealthDependencies) (liveness, readiness http.HandlerFunc) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewHealthHandlers(deps, logger)
}

/*
TestLiveness verifies that the liveness probe always answers 200 with the
running version.
*/
func TestLiveness(t *testing.T) {
	liveness, _ := newHealthHandlers(api.HealthDependencies{})

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data["status"])
	assert.Equal(t, constants.AppVersion, body.Data["version"])
}

/*
TestReadiness verifies that the readiness probe reports 200 when every
dependency answers and 503 naming the broken one when it does not.
*/
func TestReadiness(t *testing.T) {
	t.Run("all_dependencies_up", func(t *testing.T) {
		_, readiness := newHealthHandlers(api.HealthDependencies{
			CheckDatabase: func() error { return nil },
			CheckRedis:    func() error { return nil },
		})

		recorder := httptest.NewRecorder()
		readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)

		var body struct {
			Data struct {
				Status string `json:"status"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "ready", body.Data.Status)
	})

	t.Run("redis_down", func(t *testing.T) {
		_, readiness := newHealthHandlers(api.HealthDependencies{
			CheckDatabase: func() error { return nil },
			CheckRedis:    func() error { return errors.New("connection refused") },
		})

		recorder := httptest.NewRecorder()
		readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

		var body struct {
			Code    string `json:"code"`
			Details []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"details"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Code)
		require.Len(t, body.Details, 1)
		assert.Equal(t, "redis", body.Details[0].Field)
	})
}
