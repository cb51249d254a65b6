package mock

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const resourceSuffix = ".json"

// Handler exposes the store over the same REST surface as the remote service:
// GET, PUT, POST, PATCH and DELETE against "<location>.json", with an optional
// "auth" query parameter.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Store) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, resourceSuffix) {
		writeError(w, http.StatusNotFound, "404 Not Found")
		return
	}
	location := strings.TrimSuffix(r.URL.Path, resourceSuffix)

	if err := s.Authorize(r.URL.Query().Get("auth")); err != nil {
		writeError(w, http.StatusUnauthorized, "Permission denied")
		return
	}

	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		data, err := s.Get(ctx, location)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeRaw(w, http.StatusOK, data)
	case http.MethodPut:
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		if err := s.Set(ctx, location, body); err != nil {
			writeStoreError(w, err)
			return
		}
		writeRaw(w, http.StatusOK, body)
	case http.MethodPost:
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		name, err := s.Push(ctx, location, body)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"name": name})
	case http.MethodPatch:
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		if err := s.Update(ctx, location, body); err != nil {
			writeStoreError(w, err)
			return
		}
		writeRaw(w, http.StatusOK, body)
	case http.MethodDelete:
		if err := s.Delete(ctx, location); err != nil {
			writeStoreError(w, err)
			return
		}
		writeRaw(w, http.StatusOK, []byte("null"))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return body, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidData):
		writeError(w, http.StatusBadRequest, "Invalid data; couldn't parse JSON object, array, or value.")
	case errors.Is(err, ErrPermissionDenied):
		writeError(w, http.StatusUnauthorized, "Permission denied")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
