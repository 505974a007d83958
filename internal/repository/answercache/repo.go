package answercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/unisearch/internal/db"
	"github.com/kailas-cloud/unisearch/internal/domain"
	"github.com/kailas-cloud/unisearch/internal/domain/complexity"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/metrics"
)

// Key namespaces. Answer keys hash the normalized query text only, not
// the whole request, so hits survive across sessions.
var (
	answerKeyPrefix  = domain.KeyPrefix + "chat:"
	historyKeyPrefix = domain.KeyPrefix + "conversation_history:"
)

// store is the consumer interface for the answer cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// entry is the serialized cache payload.
type entry struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// Exchange is one user/assistant turn in the conversation history.
type Exchange struct {
	UserMessage string `json:"user_message"`
	Answer      string `json:"assistant_response"`
	Timestamp   int64  `json:"timestamp"`
}

// Repo caches complete answers keyed by query content hash, with a TTL
// chosen by the query's complexity class. Cache failures degrade to a
// miss: they are logged, never surfaced to the caller.
type Repo struct {
	store      store
	policy     complexity.TTLPolicy
	historyTTL time.Duration
	logger     *zap.Logger
}

// New creates an answer cache repository. A nil policy selects the
// default TTL policy.
func New(s store, policy complexity.TTLPolicy, historyTTL time.Duration, logger *zap.Logger) *Repo {
	if policy == nil {
		policy = complexity.DefaultTTLPolicy()
	}
	if historyTTL <= 0 {
		historyTTL = 24 * time.Hour
	}
	return &Repo{store: s, policy: policy, historyTTL: historyTTL, logger: logger}
}

// GetAnswer returns the cached answer for the query, if any.
func (r *Repo) GetAnswer(ctx context.Context, q query.Query) (string, bool) {
	data, err := r.store.Get(ctx, answerKey(q))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Answer cache read failed, degrading to miss", zap.Error(err))
		}
		metrics.AnswerCacheTotal.WithLabelValues("miss").Inc()
		return "", false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Content == "" {
		r.logger.Warn("Answer cache entry malformed, degrading to miss", zap.Error(err))
		metrics.AnswerCacheTotal.WithLabelValues("miss").Inc()
		return "", false
	}

	metrics.AnswerCacheTotal.WithLabelValues("hit").Inc()
	return e.Content, true
}

// SetAnswer stores an answer when the query's complexity class is
// cacheable. Entries are replaced whole, never mutated.
func (r *Repo) SetAnswer(ctx context.Context, q query.Query, answer string, level complexity.Level) {
	ttl := r.policy.TTL(level)
	if ttl <= 0 || answer == "" {
		return
	}

	data, err := json.Marshal(entry{Content: answer})
	if err != nil {
		r.logger.Warn("Failed to encode cache entry", zap.Error(err))
		return
	}
	if err := r.store.SetWithTTL(ctx, answerKey(q), data, ttl); err != nil {
		r.logger.Warn("Answer cache write failed", zap.Error(err))
	}
}

// Exchanges returns the recorded conversation history for a session.
func (r *Repo) Exchanges(ctx context.Context, sessionID string) ([]Exchange, error) {
	data, err := r.store.Get(ctx, historyKey(sessionID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, domain.ErrCacheUnavailable
	}

	var history []Exchange
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, domain.ErrCacheUnavailable
	}
	return history, nil
}

// ClearExchanges deletes a session's recorded history.
func (r *Repo) ClearExchanges(ctx context.Context, sessionID string) error {
	if err := r.store.Del(ctx, historyKey(sessionID)); err != nil {
		r.logger.Warn("History delete failed",
			zap.String("session_id", sessionID), zap.Error(err))
		return domain.ErrCacheUnavailable
	}
	return nil
}

// AppendExchange records one completed turn. Best effort: failures are
// logged and swallowed so history never blocks an answer. The
// read-modify-write is last-writer-wins: two turns racing on the same
// session may drop one exchange.
func (r *Repo) AppendExchange(ctx context.Context, sessionID string, ex Exchange) {
	if sessionID == "" {
		return
	}

	history, err := r.Exchanges(ctx, sessionID)
	if err != nil {
		r.logger.Warn("History read failed, starting fresh",
			zap.String("session_id", sessionID), zap.Error(err))
		history = nil
	}
	history = append(history, ex)

	data, err := json.Marshal(history)
	if err != nil {
		r.logger.Warn("Failed to encode history", zap.Error(err))
		return
	}
	if err := r.store.SetWithTTL(ctx, historyKey(sessionID), data, r.historyTTL); err != nil {
		r.logger.Warn("History write failed",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

func answerKey(q query.Query) string {
	h := sha256.Sum256([]byte(q.Normalized()))
	return answerKeyPrefix + hex.EncodeToString(h[:])
}

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}
