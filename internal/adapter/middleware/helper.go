package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ibb-guide/internal/infrastructure/cache"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// buildKey scopes a replay entry to one route, one actor and one request id,
// e.g. "ibb:idem:post:/api/v1/listings/:id/changes:<account>:<request>".
func buildKey(method, path, accountID, requestID string) string {
	return cache.Key("idem", strings.ToLower(method), path, accountID, requestID)
}

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// validRequestID accepts a lowercase UUID (v1-v5) or 32 lowercase hex digits.
// Case is significant because the id is part of the cache key.
func validRequestID(id string) bool {
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// validAccountID matches the char(32) account ids issued by pkg/id.
func validAccountID(id string) bool { return reHex32.MatchString(id) }

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with
// an explicit zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// entryStore keeps replay entries in redis.
type entryStore struct {
	rdb redis.Cmdable
}

// reserve claims key for an in-flight request; false means someone else holds it.
func (s entryStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, errors.Wrap(err, "encode entry")
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s entryStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return idempEntry{}, errors.Wrap(err, "decode entry")
	}
	return e, nil
}

// save replaces the reservation with the final response for ttl.
func (s entryStore) save(ctx context.Context, key string, e idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode entry")
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}
