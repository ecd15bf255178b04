package server

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/brickdecay/internal/decay"
)

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m), string(body))
	return m
}

func TestContentTypesEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/content-types", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w.Body.Bytes())
	types := body["contentTypes"].(map[string]any)
	assert.Len(t, types, len(decay.ContentTypes()))
	assert.Equal(t, 0.15, types["image"])
	assert.Equal(t, 0.9, body["qualities"].(map[string]any)["high"])
}

func TestRetentionEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/retention?steps=1&type=unknown", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w.Body.Bytes())
	assert.InDelta(t, math.Exp(-0.15), body["retention"], 1e-12)
	assert.Equal(t, false, body["knownType"])
	assert.Equal(t, 1.0, body["initial"])
}

func TestRetentionEndpointRejectsBadInput(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{
		"/api/retention?type=image",
		"/api/retention?steps=-1&type=image",
		"/api/retention?steps=abc&type=image",
		"/api/retention?steps=1&initial=1.5",
		"/api/retention?steps=1&initial=NaN",
	} {
		w := do(t, srv, "GET", path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestStepsEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/steps?target=0.9&type=image", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w.Body.Bytes())
	assert.InDelta(t, -math.Log(0.9)/0.15, body["steps"], 1e-12)
	assert.Equal(t, 1.0, body["roundedSteps"])

	for _, target := range []string{"0", "-0.5"} {
		w := do(t, srv, "GET", "/api/steps?type=image&target="+target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, decodeBody(t, w.Body.Bytes())["error"], "target retention")
	}
}

func TestCurveEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/curve?type=text", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Curve decay.RetentionCurve `json:"curve"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Curve, 21)
	assert.Equal(t, 20, body.Curve[20].Step)

	w = do(t, srv, "GET", "/api/curve?type=text&max=5000", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizeEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/optimize?type=image&quality=high", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res decay.OptimizationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, decay.High, res.Quality)

	w = do(t, srv, "GET", "/api/optimize?type=image&quality=ultra", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 0.75, res.TargetRetention)
}

func TestPerceptualEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/perceptual?retention=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100.0, decodeBody(t, w.Body.Bytes())["perceptualQuality"])

	w = do(t, srv, "GET", "/api/perceptual", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBricksEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/bricks?width=10&height=10&depth=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var est decay.BrickEstimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &est))
	assert.Equal(t, 350, est.EstimatedBricks)
	assert.Equal(t, decay.BuildSculpture, est.Type)

	w = do(t, srv, "GET", "/api/bricks?width=10&height=10", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &est))
	assert.Equal(t, 95, est.EstimatedBricks)

	for _, path := range []string{"/api/bricks?width=0&height=10", "/api/bricks?width=3", "/api/bricks?width=3&height=3&depth=0"} {
		w := do(t, srv, "GET", path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestBricksEndpointRejectsOversized(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{
		"/api/bricks?width=4294967296&height=4294967296&depth=2",
		"/api/bricks?width=10001&height=1",
		"/api/bricks?width=1&height=1&depth=10001",
	} {
		w := do(t, srv, "GET", path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w := do(t, srv, "GET", "/api/bricks?width=10000&height=10000&depth=10000", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var est decay.BrickEstimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &est))
	assert.Equal(t, 1_000_000_000_000, est.TotalStuds)
}

func TestValidateEndpoint(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		retention   string
		passes      bool
		recommended bool
		message     string
	}{
		{"0.40", false, false, decay.MessageBelowMinimum},
		{"0.60", true, false, decay.MessageAcceptable},
		{"0.80", true, true, decay.MessageRecommended},
	}
	for _, tt := range tests {
		w := do(t, srv, "GET", "/api/validate?type=image&retention="+tt.retention, "")
		require.Equal(t, http.StatusOK, w.Code)

		var check decay.QualityCheck
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &check))
		assert.Equal(t, tt.passes, check.Passes, tt.retention)
		assert.Equal(t, tt.recommended, check.Recommended, tt.retention)
		assert.Equal(t, tt.message, check.Message, tt.retention)
	}
}
