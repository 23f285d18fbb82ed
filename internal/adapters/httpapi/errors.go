package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAppError maps application errors to their HTTP form. Anything else is a store or
// transport failure: the cause is logged and the client gets the generic message.
func writeAppError(log *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if ae := (*apperr.Error)(nil); errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	log.Error("request failed",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("requestId", middleware.GetReqID(r.Context())),
	)
	writeError(w, r, http.StatusInternalServerError, apperr.CodeInternal, apperr.InternalMessage, nil)
}
