package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": map[string]any{"message": msg},
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// pagination reads ?page and ?limit. Page is 1-based, limit is clamped to
// [1, maxPageSize].
func pagination(r *http.Request) (offset, limit, page int, err error) {
	q := r.URL.Query()
	page, err = parsePositiveInt(q.Get("page"), 1, 1, 1<<30)
	if err != nil {
		return 0, 0, 0, errors.New("page must be a positive integer")
	}
	limit, err = parsePositiveInt(q.Get("limit"), defaultPageSize, 1, maxPageSize)
	if err != nil {
		return 0, 0, 0, errors.New("limit must be between 1 and 100")
	}
	return (page - 1) * limit, limit, page, nil
}

func parsePositiveInt(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	if val < min || val > max {
		return 0, errors.New("out of range")
	}
	return val, nil
}

// pageEnvelope is the standard list response body.
type pageEnvelope struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

func writePage(w http.ResponseWriter, items any, total, page, limit int) {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	writeJSON(w, http.StatusOK, pageEnvelope{
		Items: items,
		Total: total,
		Page:  page,
		Pages: pages,
		Limit: limit,
	})
}
