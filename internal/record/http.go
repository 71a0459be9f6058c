package record

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/neox5/pushbox/internal/exporter"
)

// MaxBodySize caps the body accepted by the HTTP ingest handler.
const MaxBodySize = 1 << 20

// NewHTTPHandler returns an ingest handler. Query parameters become
// attributes (first value wins) and the request body is kept raw.
//
//	204 record processed and pushed
//	405 method other than POST
//	413 body too large
//	422 record could not be turned into a metric
//	502 push to the aggregation endpoint failed
func NewHTTPHandler(handler Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		query := r.URL.Query()
		rec := Record{
			Attributes: make(map[string]string, len(query)),
			Body:       body,
		}
		for name, values := range query {
			if len(values) > 0 {
				rec.Attributes[name] = values[0]
			}
		}

		if err := handler.Handle(r.Context(), rec); err != nil {
			status := StatusFor(err)
			slog.Debug("http record failed", "status", status, "error", err)
			http.Error(w, err.Error(), status)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

// StatusFor maps a handler error to an HTTP status code.
func StatusFor(err error) int {
	if errors.Is(err, exporter.ErrPushFailed) {
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}
