package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-dbgate/internal/errors"
	"github.com/jrsteele09/go-dbgate/sessions"
	"github.com/jrsteele09/go-dbgate/users"
)

// DefaultSessionTimeout is the idle timeout applied when none is configured.
const DefaultSessionTimeout = time.Hour

// LogoutHook is invoked with the owning identity whenever a session ends,
// whether by explicit logout or by lazy-expiry detection. The gateway uses
// it to erase the identity's consent grants so consent never survives a
// session boundary.
type LogoutHook func(identity string)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.Repo    // Credential store
	Sessions sessions.Repo // Live session records
}

// Service owns the session lifecycle: authenticate, validate, refresh and
// logout. All expected conditions (unknown identity, wrong secret, expired
// session) are ordinary return values; only unexpected repository failures
// surface as errors.
type Service struct {
	repos      Repos
	timeout    time.Duration
	logoutHook LogoutHook
	nowTime    func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithSessionTimeout sets the idle timeout for newly issued sessions.
func WithSessionTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithLogoutHook registers a hook invoked when a session ends.
func WithLogoutHook(hook LogoutHook) ServiceOption {
	return func(s *Service) {
		s.logoutHook = hook
	}
}

// NewService initializes a new Service with required dependencies.
// Optional configuration can be provided via options (e.g., WithNowTime for testing).
func NewService(repos Repos, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}

	service := &Service{
		repos:   repos,
		timeout: DefaultSessionTimeout,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Authenticate verifies the credentials and, on success, issues a new
// session token. ok is false for an unknown identity or a wrong secret;
// the failure log and return value deliberately do not reveal which factor
// was wrong. err is reserved for unexpected repository faults.
func (s *Service) Authenticate(identity, secret string) (token string, ok bool, err error) {
	user, err := s.repos.Users.GetByIdentity(identity)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrUserNotFound) {
			return "", false, errors.Wrap(err, "[Authenticate] users.GetByIdentity")
		}
		log.Warn().Str("identity", identity).Msg("authentication failed")
		return "", false, nil
	}

	if !users.CheckPasswordHash(secret, user.PasswordHash) {
		log.Warn().Str("identity", identity).Msg("authentication failed")
		return "", false, nil
	}

	now := s.nowTime()
	token = uuid.New().String()
	if err := s.repos.Sessions.Upsert(token, sessions.Session{
		Token:       token,
		Identity:    identity,
		CreatedAt:   now,
		LastRefresh: now,
		Timeout:     s.timeout,
	}); err != nil {
		return "", false, errors.Wrap(err, "[Authenticate] sessions.Upsert")
	}

	log.Info().Str("identity", identity).Msg("authenticated successfully")
	return token, true, nil
}

// Validate reports whether the token references a live session. Detecting
// an elapsed idle timeout performs an implicit logout as a side effect;
// expiry is only ever discovered here, never by a background timer.
func (s *Service) Validate(token string) bool {
	session, err := s.repos.Sessions.Get(token)
	if err != nil {
		return false
	}

	if session.Expired(s.nowTime()) {
		s.endSession(session)
		log.Info().Str("identity", session.Identity).Msg("session expired")
		return false
	}
	return true
}

// Refresh slides the idle-timeout window from now. No-op for an unknown or
// already expired token.
func (s *Service) Refresh(token string) {
	session, err := s.repos.Sessions.Get(token)
	if err != nil || session.Expired(s.nowTime()) {
		return
	}
	session.LastRefresh = s.nowTime()
	_ = s.repos.Sessions.Upsert(token, session)
}

// Logout ends the session. Idempotent: logging out an unknown token is a
// no-op.
func (s *Service) Logout(token string) {
	session, err := s.repos.Sessions.Get(token)
	if err != nil {
		return
	}
	s.endSession(session)
	log.Info().Str("identity", session.Identity).Msg("logged out")
}

// CurrentIdentity returns the identity owning the session, after the same
// lazy-expiry check as Validate, so stale internal state is never observable.
func (s *Service) CurrentIdentity(token string) (string, bool) {
	if !s.Validate(token) {
		return "", false
	}
	session, err := s.repos.Sessions.Get(token)
	if err != nil {
		return "", false
	}
	return session.Identity, true
}

// HasCapability reports whether the session is valid and its identity holds
// the required capability (CapabilityAdmin satisfies any requirement). A
// denial is not an error condition; callers translate it into a user-facing
// message.
func (s *Service) HasCapability(token string, required users.Capability) bool {
	identity, ok := s.CurrentIdentity(token)
	if !ok {
		return false
	}
	user, err := s.repos.Users.GetByIdentity(identity)
	if err != nil {
		return false
	}
	return user.HasCapability(required)
}

func (s *Service) endSession(session sessions.Session) {
	_ = s.repos.Sessions.Delete(session.Token)
	if s.logoutHook != nil {
		s.logoutHook(session.Identity)
	}
}
