package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lazypower/brickdecay/internal/decay"
)

// maxCurveSteps bounds /api/curve so one request cannot ask for a huge slice.
const maxCurveSteps = 1000

// contentType parses a content type from a query parameter or request body.
// Unknown types are logged and passed through; their lambda falls back to
// decay.DefaultLambda.
func (s *Server) contentType(raw string) decay.ContentType {
	ct, err := decay.ParseContentType(raw)
	if err != nil {
		s.logger.Warn("unknown content type, using default lambda",
			zap.String("type", raw), zap.Float64("lambda", decay.DefaultLambda))
	}
	return ct
}

func (s *Server) quality(raw string) decay.Quality {
	q, err := decay.ParseQuality(raw)
	if err != nil {
		s.logger.Warn("unknown quality, using medium target",
			zap.String("quality", raw), zap.Float64("target", decay.Medium.Target()))
	}
	return q
}

func queryFloat(r *http.Request, key string, def *float64) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		if def != nil {
			return *def, nil
		}
		return 0, fmt.Errorf("%s parameter required", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a finite number", key)
	}
	return f, nil
}

func queryInt(r *http.Request, key string, def *int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		if def != nil {
			return *def, nil
		}
		return 0, fmt.Errorf("%s parameter required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func ptr[T any](v T) *T { return &v }

func (s *Server) handleContentTypes(w http.ResponseWriter, r *http.Request) {
	types := map[string]float64{}
	for _, ct := range decay.ContentTypes() {
		types[string(ct)] = ct.Lambda()
	}
	qualities := map[string]float64{}
	for _, q := range decay.Qualities() {
		qualities[string(q)] = q.Target()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contentTypes":   types,
		"defaultLambda":  decay.DefaultLambda,
		"qualities":      qualities,
		"defaultQuality": decay.DefaultQuality,
	})
}

func (s *Server) handleRetention(w http.ResponseWriter, r *http.Request) {
	initial, err := queryFloat(r, "initial", ptr(1.0))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if initial < 0 || initial > 1 {
		writeError(w, http.StatusBadRequest, "initial must be in [0, 1]")
		return
	}
	steps, err := queryInt(r, "steps", nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if steps < 0 {
		writeError(w, http.StatusBadRequest, "steps must be >= 0")
		return
	}

	ct := s.contentType(r.URL.Query().Get("type"))
	ret := decay.Retention(initial, steps, ct)
	writeJSON(w, http.StatusOK, map[string]any{
		"contentType":      ct,
		"knownType":        ct.Known(),
		"lambda":           ct.Lambda(),
		"initial":          initial,
		"steps":            steps,
		"retention":        ret,
		"retentionPercent": decay.FormatPercent(ret),
	})
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	target, err := queryFloat(r, "target", nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ct := s.contentType(r.URL.Query().Get("type"))
	steps, err := decay.OptimalSteps(target, ct)
	if errors.Is(err, decay.ErrInvalidTargetRetention) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contentType":  ct,
		"knownType":    ct.Known(),
		"lambda":       ct.Lambda(),
		"target":       target,
		"steps":        steps,
		"roundedSteps": int(math.Round(steps)),
	})
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	maxSteps, err := queryInt(r, "max", ptr(decay.DefaultCurveSteps))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if maxSteps < 0 || maxSteps > maxCurveSteps {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("max must be in [0, %d]", maxCurveSteps))
		return
	}

	ct := s.contentType(r.URL.Query().Get("type"))
	writeJSON(w, http.StatusOK, map[string]any{
		"contentType": ct,
		"lambda":      ct.Lambda(),
		"curve":       decay.Curve(ct, maxSteps),
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	ct := s.contentType(r.URL.Query().Get("type"))
	q := s.quality(r.URL.Query().Get("quality"))
	writeJSON(w, http.StatusOK, decay.OptimizeForQuality(ct, q))
}

func (s *Server) handlePerceptual(w http.ResponseWriter, r *http.Request) {
	ret, err := queryFloat(r, "retention", nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"retention":         ret,
		"perceptualQuality": decay.PerceptualQuality(ret),
	})
}

func (s *Server) handleBricks(w http.ResponseWriter, r *http.Request) {
	width, err := queryInt(r, "width", nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := queryInt(r, "height", nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	depth, err := queryInt(r, "depth", ptr(1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if width <= 0 || height <= 0 || depth < 1 {
		writeError(w, http.StatusBadRequest, "width and height must be > 0, depth >= 1")
		return
	}
	if width > decay.MaxDimension || height > decay.MaxDimension || depth > decay.MaxDimension {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("width, height and depth must be <= %d", decay.MaxDimension))
		return
	}
	est, err := decay.EstimateBricks(width, height, depth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ret, err := queryFloat(r, "retention", nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, decay.ValidateQuality(ret, s.contentType(r.URL.Query().Get("type"))))
}
