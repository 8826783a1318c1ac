package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/psytech/suvichar/internal/notification"
)

// FixedCode is the stand-in one-time code every RequestCode "sends".
const FixedCode = "123456"

var (
	// ErrCodeNotRequested is returned in strict mode when no code was sent.
	ErrCodeNotRequested = errors.New("no code requested for this phone")
	// ErrCodeMismatch is returned in strict mode for a wrong code.
	ErrCodeMismatch = errors.New("code does not match")
	// ErrInvalidToken is returned by Validate for unknown or forged tokens.
	ErrInvalidToken = errors.New("invalid session token")
)

// Token is a minted session bound to a phone number.
type Token struct {
	Value    string    `json:"token"`
	Phone    string    `json:"phone"`
	IssuedAt time.Time `json:"issued_at"`
}

// Claims carried inside the token string.
type Claims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

type sentCode struct {
	digest []byte
	sentAt time.Time
}

// Options configures a Store.
type Options struct {
	Secret   string
	Strict   bool
	Notifier notification.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Store issues phone-bound session tokens. Codes and sessions live in
// process memory only and are gone after a restart.
//
// Verification checks the code's format, not its authenticity; Strict turns
// on comparison against the code that was sent.
type Store struct {
	secret   []byte
	strict   bool
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	codes    map[string]sentCode
	sessions map[string]string
}

// NewStore builds a session store.
func NewStore(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		secret:   []byte(opts.Secret),
		strict:   opts.Strict,
		notifier: opts.Notifier,
		logger:   logger,
		now:      now,
		codes:    make(map[string]sentCode),
		sessions: make(map[string]string),
	}
}

// RequestCode records that a code was sent to phone. The code is fixed and
// nothing leaves the process apart from the notifier hand-off.
func (s *Store) RequestCode(ctx context.Context, phone string) error {
	digest, err := bcrypt.GenerateFromPassword([]byte(FixedCode), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("digest code: %w", err)
	}

	s.mu.Lock()
	s.codes[phone] = sentCode{digest: digest, sentAt: s.now()}
	s.mu.Unlock()

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindVerificationCode,
			Destination: phone,
			Body:        FixedCode,
		}); err != nil {
			s.logger.WarnContext(ctx, "code notification failed", slog.String("phone", phone), slog.Any("error", err))
		}
	}
	return nil
}

// VerifyCode fails with ErrInvalidCode unless code is six decimal digits.
// Any well-formed code then mints a fresh token, whether or not a code was
// requested for phone.
func (s *Store) VerifyCode(ctx context.Context, phone, code string) (Token, error) {
	if !ValidCode(code) {
		return Token{}, ErrInvalidCode
	}

	if s.strict {
		s.mu.Lock()
		sent, ok := s.codes[phone]
		s.mu.Unlock()
		if !ok {
			return Token{}, ErrCodeNotRequested
		}
		if err := bcrypt.CompareHashAndPassword(sent.digest, []byte(code)); err != nil {
			return Token{}, ErrCodeMismatch
		}
	}

	issued := s.now()
	id := uuid.NewString()
	claims := Claims{
		Phone: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       id,
			Subject:  phone,
			IssuedAt: jwt.NewNumericDate(issued),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = phone
	delete(s.codes, phone)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session issued", slog.String("phone", phone), slog.String("session_id", id))
	return Token{Value: signed, Phone: phone, IssuedAt: issued}, nil
}

// Validate checks the token signature and that this process minted it, and
// returns the owning phone.
func (s *Store) Validate(token string) (string, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	s.mu.Lock()
	phone, ok := s.sessions[claims.ID]
	s.mu.Unlock()
	if !ok || phone != claims.Phone {
		return "", ErrInvalidToken
	}
	return phone, nil
}

// CodeRequested reports whether a code is outstanding for phone.
func (s *Store) CodeRequested(phone string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.codes[phone]
	return ok
}
