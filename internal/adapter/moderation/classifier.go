package moderation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	domain "ibb-guide/internal/domain/moderation"
	"ibb-guide/internal/infrastructure/cache"
	"ibb-guide/internal/infrastructure/metrics"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ domain.Classifier = (*Classifier)(nil)

const (
	DefaultTTL = time.Hour

	msgProhibited    = "Your content contains prohibited language and cannot be posted."
	msgInappropriate = "Your content contains inappropriate language."
	msgRespectful    = "Please keep the conversation respectful."
)

var wordsKey = cache.Key("moderation", "banned_words")

// cachedWord is a banned term with its normalized form precomputed.
type cachedWord struct {
	Term     string          `json:"term"`
	Norm     string          `json:"norm"`
	Severity domain.Severity `json:"severity"`
}

// Classifier matches normalized text against the active banned words. The
// word list is cached in redis until the TTL passes or Invalidate is called.
type Classifier struct {
	words   domain.WordRepository
	rdb     *redis.Client
	ttl     time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewClassifier(words domain.WordRepository, rdb *redis.Client, ttl time.Duration, log *zap.Logger, m *metrics.Metrics) *Classifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{words: words, rdb: rdb, ttl: ttl, log: log, metrics: m}
}

func (c *Classifier) Analyze(ctx context.Context, text string) (domain.Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Allow(), nil
	}
	words, err := c.load(ctx)
	if err != nil {
		return domain.Verdict{}, err
	}

	input := Normalize(text)
	worst := domain.SeverityNone
	var matched []string
	for _, w := range words {
		if w.Norm == "" || !strings.Contains(input, w.Norm) {
			continue
		}
		matched = append(matched, w.Term)
		if w.Severity.Stronger(worst) {
			worst = w.Severity
		}
	}

	v := verdictFor(worst, matched)
	if c.metrics != nil {
		c.metrics.ModerationHits.WithLabelValues(string(v.Action)).Inc()
	}
	if v.Action != domain.ActionAllow {
		c.log.Info("moderation match",
			zap.String("action", string(v.Action)),
			zap.String("severity", string(v.Severity)),
			zap.Strings("matched", matched))
	}
	return v, nil
}

func verdictFor(worst domain.Severity, matched []string) domain.Verdict {
	switch worst {
	case domain.SeverityHigh:
		return domain.Verdict{Action: domain.ActionBlock, Severity: worst, Message: msgProhibited, Matched: matched}
	case domain.SeverityMedium:
		return domain.Verdict{Action: domain.ActionBlock, Severity: worst, Message: msgInappropriate, Matched: matched}
	case domain.SeverityLow:
		return domain.Verdict{Action: domain.ActionWarn, Severity: worst, Message: msgRespectful, Matched: matched}
	}
	return domain.Allow()
}

// Invalidate drops the cached word list; the next Analyze reloads it.
func (c *Classifier) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, wordsKey).Err(); err != nil {
		return errors.Wrap(err, "invalidate banned words")
	}
	return nil
}

func (c *Classifier) load(ctx context.Context) ([]cachedWord, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, wordsKey).Bytes()
		switch {
		case err == nil:
			var words []cachedWord
			if jerr := json.Unmarshal(raw, &words); jerr == nil {
				return words, nil
			}
			c.log.Warn("discarding unreadable banned word cache")
		case !errors.Is(err, redis.Nil):
			c.log.Warn("banned word cache unavailable", zap.Error(err))
		}
	}

	rows, err := c.words.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list banned words")
	}
	words := make([]cachedWord, 0, len(rows))
	for _, r := range rows {
		words = append(words, cachedWord{Term: r.Term, Norm: Normalize(r.Term), Severity: r.Severity})
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(words); err == nil {
			if err := c.rdb.Set(ctx, wordsKey, raw, c.ttl).Err(); err != nil {
				c.log.Warn("cache banned words", zap.Error(err))
			}
		}
	}
	return words, nil
}
