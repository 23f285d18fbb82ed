package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/idempotency"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"
)

// createIdempotent runs create and writes its result as 201 JSON.
//
// When the request carries an Idempotency-Key, the key is reserved atomically before create runs:
// - same key + route + canonical body replays the stored 201 response
// - same key + route with a different body is rejected with 409
// - a duplicate arriving while the first request is still running is rejected with 409
// A failed create releases the key so the client can retry.
func (s *Server) createIdempotent(w http.ResponseWriter, r *http.Request, route string, canon any, create func() (any, error)) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" || s.Idem == nil {
		resp, err := create()
		if err != nil {
			writeAppError(s.Log, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
		return
	}

	ctx := r.Context()
	bodyHash, err := hashBody(canon)
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	metaFP := idempotency.Fingerprint{
		Key:      idempotency.Key(key),
		Method:   r.Method,
		Route:    route,
		BodyHash: "",
	}
	respFP := metaFP
	respFP.BodyHash = bodyHash

	reserved, err := s.Idem.Reserve(ctx, metaFP, idempotency.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte(bodyHash),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	if !reserved {
		s.replayIdempotent(w, r, metaFP, respFP, bodyHash)
		return
	}

	resp, err := create()
	if err != nil {
		// The key stays usable when nothing was created.
		if relErr := s.Idem.Release(context.WithoutCancel(ctx), metaFP); relErr != nil {
			s.Log.Error("release idempotency key", zap.Error(relErr), zap.String("route", route))
		}
		writeAppError(s.Log, w, r, err)
		return
	}

	b, err := json.Marshal(resp)
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	if err := s.Idem.Put(context.WithoutCancel(ctx), respFP, idempotency.Record{
		StatusCode:  http.StatusCreated,
		ContentType: "application/json",
		Body:        append(b, '\n'),
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		s.Log.Error("store idempotent response", zap.Error(err), zap.String("route", route))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// replayIdempotent answers a request whose key is already reserved.
func (s *Server) replayIdempotent(w http.ResponseWriter, r *http.Request, metaFP, respFP idempotency.Fingerprint, bodyHash string) {
	ctx := r.Context()
	meta, ok, err := s.Idem.Get(ctx, metaFP)
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	if ok && string(meta.Body) != bodyHash {
		writeError(w, r, http.StatusConflict, apperr.CodeIdempotencyReuse, "idempotency key reuse with different payload", nil)
		return
	}

	rec, ok, err := s.Idem.Get(ctx, respFP)
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	if !ok || rec.StatusCode != http.StatusCreated || !strings.HasPrefix(rec.ContentType, "application/json") {
		writeError(w, r, http.StatusConflict, apperr.CodeIdempotencyInProgress, "a request with this idempotency key is still in progress", nil)
		return
	}
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set(IdempotencyReplayedHeader, "true")
	w.WriteHeader(rec.StatusCode)
	_, _ = w.Write(rec.Body)
}

func hashBody(canon any) (string, error) {
	raw, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
