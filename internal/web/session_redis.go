package web

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const redisSessionPrefix = "moodify:session:"

// RedisSessionStore keeps sessions in Redis as JSON with a TTL.
type RedisSessionStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisSessionStore connects to Redis and verifies the connection.
func NewRedisSessionStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info().Str("addr", cfg.Addr).Msg("redis session store initialized")
	return newRedisSessionStore(client, logger), nil
}

func newRedisSessionStore(client *redis.Client, logger zerolog.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		logger: logger.With().Str("component", "sessions").Logger(),
	}
}

// Close closes the Redis connection.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// Create generates a new session and stores it in Redis.
func (s *RedisSessionStore) Create(ctx context.Context, token *oauth2.Token, userID, userName string) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        id,
		Token:     token,
		UserID:    userID,
		UserName:  userName,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, redisSessionKey(id), data, sessionTTL).Err(); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session by ID from Redis.
func (s *RedisSessionStore) Get(ctx context.Context, id string) *Session {
	data, err := s.client.Get(ctx, redisSessionKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("reading session")
		}
		return nil
	}

	session, err := decodeSession(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("decoding session")
		return nil
	}
	if session.expired(time.Now()) {
		return nil
	}
	return session
}

// Delete removes a session from Redis.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) {
	if err := s.client.Del(ctx, redisSessionKey(id)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("deleting session")
	}
}

// UpdateToken replaces the session's OAuth token, keeping its TTL.
func (s *RedisSessionStore) UpdateToken(ctx context.Context, id string, token *oauth2.Token) {
	session := s.Get(ctx, id)
	if session == nil {
		return
	}
	session.Token = token

	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, redisSessionKey(id), data, redis.KeepTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("updating session token")
	}
}

func redisSessionKey(id string) string {
	return redisSessionPrefix + id
}

func decodeSession(data []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.ID == "" || session.Token == nil {
		return nil, errors.New("incomplete session record")
	}
	return &session, nil
}
