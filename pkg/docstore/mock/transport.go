package mock

import (
	"net/http"
	"net/http/httptest"
)

// Transport returns an http.RoundTripper that serves every request from the
// store in-process, so HTTP clients can run against it without a listener.
func (s *Store) Transport() http.RoundTripper {
	return handlerTransport{handler: s.Handler()}
}

type handlerTransport struct {
	handler http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
