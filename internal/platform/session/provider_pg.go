package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/domain/identity"
)

const (
	// tokenPrefix makes session tokens recognizable in logs and support
	// tickets without revealing anything about their contents.
	tokenPrefix      = "ccs_"
	tokenRandomBytes = 32
)

// PGProvider stores sessions in Postgres. Only a SHA-256 digest of each
// token is persisted, so a leaked sessions table cannot be replayed.
type PGProvider struct {
	pool   *pgxpool.Pool
	users  *identity.Service
	ttl    time.Duration
	events *Broadcaster
	log    zerolog.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewPGProvider(pool *pgxpool.Pool, users *identity.Service, ttl time.Duration, events *Broadcaster, log zerolog.Logger) *PGProvider {
	return &PGProvider{
		pool:   pool,
		users:  users,
		ttl:    ttl,
		events: events,
		log:    log.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
}

func generateToken() (string, error) {
	b := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return tokenPrefix + hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func (p *PGProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	profile, err := p.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := p.now()
	s := &Session{
		Token:     token,
		UserID:    profile.ID,
		Profile:   profile,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO sessions (id, token_hash, user_id, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.New(), hashToken(token), s.UserID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	p.events.Publish(Event{Type: EventSignedIn, UserID: s.UserID, Timestamp: now})
	p.log.Info().Str("user_id", s.UserID.String()).Msg("session created")
	return s, nil
}

func (p *PGProvider) Current(ctx context.Context, token string) (*Session, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT s.user_id, s.created_at, s.expires_at,
		       pr.id, pr.email, pr.display_name, pr.role, pr.language, pr.phone, pr.created_at, pr.updated_at
		FROM sessions s
		JOIN profiles pr ON pr.id = s.user_id
		WHERE s.token_hash = $1 AND s.expires_at > NOW()`,
		hashToken(token))

	var s Session
	var profile identity.Profile
	err := row.Scan(&s.UserID, &s.CreatedAt, &s.ExpiresAt,
		&profile.ID, &profile.Email, &profile.DisplayName, &profile.Role,
		&profile.Language, &profile.Phone, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	s.Token = token
	s.Profile = &profile
	// The query already filters on expires_at, but that uses the database
	// clock; re-check against the provider clock so tests and clock skew
	// cannot resurrect a dead session.
	if s.Expired(p.now()) {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (p *PGProvider) SignOut(ctx context.Context, token string) error {
	var userID uuid.UUID
	err := p.pool.QueryRow(ctx, `
		DELETE FROM sessions WHERE token_hash = $1 RETURNING user_id`,
		hashToken(token)).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	p.events.Publish(Event{Type: EventSignedOut, UserID: userID, Timestamp: p.now()})
	p.log.Info().Str("user_id", userID.String()).Msg("session revoked")
	return nil
}

// StartSweeper deletes expired sessions on an interval and announces each
// expiry on the event feed so open dashboards can redirect. It returns when
// ctx is cancelled.
func (p *PGProvider) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *PGProvider) sweep(ctx context.Context) {
	rows, err := p.pool.Query(ctx, `
		DELETE FROM sessions WHERE expires_at <= NOW() RETURNING user_id`)
	if err != nil {
		p.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	defer rows.Close()

	var expired []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			p.log.Error().Err(err).Msg("session sweep scan failed")
			return
		}
		expired = append(expired, userID)
	}

	now := p.now()
	for _, userID := range expired {
		p.events.Publish(Event{Type: EventExpired, UserID: userID, Timestamp: now})
	}
	if len(expired) > 0 {
		p.log.Info().Int("count", len(expired)).Msg("expired sessions swept")
	}
}
