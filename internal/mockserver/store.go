package mockserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"codearena/internal/common/cache"
	pkgerrors "codearena/pkg/errors"
)

// Backend is what the mock needs from redis.
type Backend interface {
	cache.BasicOps
	cache.CounterOps
}

// submissionRecord is what the fake judge remembers per token.
type submissionRecord struct {
	Index       int             `json:"index"`
	Expected    json.RawMessage `json:"expected"`
	LanguageID  string          `json:"language_id"`
	EmptySource bool            `json:"empty_source"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

type store struct {
	backend Backend
	prefix  string
	ttl     time.Duration
}

func newStore(backend Backend, prefix string, ttl time.Duration) *store {
	return &store{backend: backend, prefix: prefix, ttl: ttl}
}

func (s *store) saveSubmission(ctx context.Context, token string, rec submissionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.CacheSetFailed, "encode submission failed")
	}
	if err := s.backend.Set(ctx, s.submissionKey(token), string(data), s.ttl); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.CacheSetFailed, "store submission failed")
	}
	return nil
}

// loadSubmission returns false for tokens the mock never issued.
func (s *store) loadSubmission(ctx context.Context, token string) (submissionRecord, bool, error) {
	var rec submissionRecord
	raw, err := s.backend.Get(ctx, s.submissionKey(token))
	if err != nil {
		return rec, false, pkgerrors.Wrapf(err, pkgerrors.CacheError, "load submission failed")
	}
	if raw == "" {
		return rec, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return rec, false, pkgerrors.Wrapf(err, pkgerrors.CacheError, "decode submission failed")
	}
	return rec, true, nil
}

// countPoll records one status check for the token batch and returns the total so far.
func (s *store) countPoll(ctx context.Context, tokens []string) (int64, error) {
	key := s.prefix + "poll:" + batchID(tokens)
	n, err := s.backend.Incr(ctx, key)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, pkgerrors.CacheError, "count poll failed")
	}
	if n == 1 {
		_ = s.backend.Expire(ctx, key, s.ttl)
	}
	return n, nil
}

func (s *store) submissionKey(token string) string {
	return s.prefix + "submission:" + token
}

func batchID(tokens []string) string {
	sum := sha1.Sum([]byte(strings.Join(tokens, "\x00")))
	return hex.EncodeToString(sum[:])
}
