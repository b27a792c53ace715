package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"go.uber.org/zap"
)

// MaxBodyBytes caps request bodies; Shopify order payloads stay well below it.
const MaxBodyBytes = 2 << 20

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteError maps err to a status. Server errors are logged and answered
// with a generic message.
func WriteError(w http.ResponseWriter, log logger.ZapLogger, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	body := errorBody{Error: err.Error()}

	var v *apperr.ValidationError
	if errors.As(err, &v) {
		body.Error = "validation_failed"
		body.Fields = v.Fields
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		body = errorBody{Error: "internal_error"}
	}
	WriteJSON(w, status, body)
}

// DecodeJSON reads a JSON body into v; malformed bodies become validation errors.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.NewValidation("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func QueryInt(r *http.Request, key string, def int) int {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
