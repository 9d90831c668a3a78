package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hirelane/recruitment-service/internal/auth"
	"github.com/hirelane/recruitment-service/internal/config"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/events"
	"github.com/hirelane/recruitment-service/internal/identity"
	"github.com/hirelane/recruitment-service/internal/observability"
	"github.com/hirelane/recruitment-service/internal/repository"
	"github.com/hirelane/recruitment-service/internal/verification"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

const (
	VerifyBasePath = "/accounts/register/verify"
	ResetBasePath  = "/accounts/password/reset/confirm"

	verifySentinel   = "verify-user"
	verifySessionKey = "_verification_token"
	resetSentinel    = "set-password"
	resetSessionKey  = "_password_reset_token"
)

// ErrInvalidLink is returned when a password is posted without a revalidated reset link.
var ErrInvalidLink = errors.New("password reset link is invalid")

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstNames       string
	LastNames        string
	Email            string
	Username         string
	BirthDate        *time.Time
	NationalIDType   domain.NationalIDType
	NationalIDNumber string
	AcceptedTOS      bool
	Password1        string
	Password2        string
}

// LoginResult carries a freshly issued access token.
type LoginResult struct {
	User   *domain.User
	Groups []domain.Group
	Token  string
	Access domain.AccessToken
}

// AuthService coordinates registration, login and the emailed link flows.
type AuthService struct {
	users      repository.UserRepository
	groups     repository.GroupRepository
	natids     repository.NationalIDRepository
	resolver   *identity.Resolver
	dispatcher events.Dispatcher
	limiter    RateLimiter
	revoker    TokenRevoker
	logger     *zap.Logger

	tokenMgr     *auth.TokenManager
	verifyTokens *auth.OneTimeTokens
	resetTokens  *auth.OneTimeTokens
	verifyFlow   *verification.Flow
	resetFlow    *verification.Flow

	publicURL     string
	bcryptCost    int
	enforceMinAge bool
	minimumAge    int
	loginMax      int
	loginWindow   time.Duration
	now           func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service. Limiter and Revoker are optional.
type AuthDependencies struct {
	Users       repository.UserRepository
	Groups      repository.GroupRepository
	NationalIDs repository.NationalIDRepository
	Resolver    *identity.Resolver
	Dispatcher  events.Dispatcher
	Limiter     RateLimiter
	Revoker     TokenRevoker
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		users:         deps.Users,
		groups:        deps.Groups,
		natids:        deps.NationalIDs,
		resolver:      deps.Resolver,
		dispatcher:    deps.Dispatcher,
		limiter:       deps.Limiter,
		revoker:       deps.Revoker,
		logger:        logger,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		verifyTokens:  auth.NewOneTimeTokens(cfg.Auth.TokenSecret, domain.TokenPurposeVerify, cfg.Auth.VerifyTokenTTL, cfg.Auth.TokenBucket),
		resetTokens:   auth.NewOneTimeTokens(cfg.Auth.TokenSecret, domain.TokenPurposeReset, cfg.Auth.ResetTokenTTL, cfg.Auth.TokenBucket),
		publicURL:     strings.TrimRight(cfg.App.PublicURL, "/"),
		bcryptCost:    cfg.Auth.BcryptCost,
		enforceMinAge: cfg.Accounts.EnforceMinAge,
		minimumAge:    cfg.Accounts.MinimumAgeAllowed,
		loginMax:      cfg.Auth.LoginMaxAttempts,
		loginWindow:   cfg.Auth.LoginAttemptWindow,
		now:           time.Now,
	}

	var observe func(string, verification.State)
	if deps.Metrics != nil {
		observe = func(flow string, state verification.State) {
			deps.Metrics.RecordTokenFlow(flow, string(state))
		}
	}
	s.verifyFlow = &verification.Flow{
		Name:          "registration_verify",
		BasePath:      VerifyBasePath,
		Sentinel:      verifySentinel,
		SessionKey:    verifySessionKey,
		Users:         deps.Users,
		Tokens:        s.verifyTokens,
		OnAccepted:    s.ActivateUser,
		OnRevalidated: s.ActivateUser,
		Observe:       observe,
	}
	s.resetFlow = &verification.Flow{
		Name:       "password_reset",
		BasePath:   ResetBasePath,
		Sentinel:   resetSentinel,
		SessionKey: resetSessionKey,
		Users:      deps.Users,
		Tokens:     s.resetTokens,
		Observe:    observe,
	}
	return s
}

// WithClock overrides the clock used for token issuance, last login and age checks.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	s.tokenMgr = s.tokenMgr.WithClock(now)
	s.verifyTokens = s.verifyTokens.WithClock(now)
	s.resetTokens = s.resetTokens.WithClock(now)
	s.verifyFlow.Tokens = s.verifyTokens
	s.resetFlow.Tokens = s.resetTokens
	return s
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// VerificationFlow is the registration link flow.
func (s *AuthService) VerificationFlow() *verification.Flow {
	return s.verifyFlow
}

// ResetFlow is the password reset link flow.
func (s *AuthService) ResetFlow() *verification.Flow {
	return s.resetFlow
}

// Register creates an inactive account, links it to a person and emails the verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.FirstNames = strings.TrimSpace(in.FirstNames)
	in.LastNames = strings.TrimSpace(in.LastNames)
	in.NationalIDNumber = domain.ReduceToAlphanum(in.NationalIDNumber)
	if in.NationalIDType == "" {
		in.NationalIDType = domain.NationalIDTypeCedula
	}

	errs := fieldErrors{}
	if in.Password1 != in.Password2 {
		errs.add("password2", auth.ErrPasswordsDoNotMatch.Error())
	} else if err := auth.ValidatePassword(in.Password2, in.Username, in.Email); err != nil {
		errs.add("password2", err.Error())
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		errs.add("email", "enter a valid email address")
	}
	if in.Username == "" {
		errs.add("username", "is required")
	}
	if in.FirstNames == "" {
		errs.add("first_names", "is required")
	}
	if in.LastNames == "" {
		errs.add("last_names", "is required")
	}
	if !in.AcceptedTOS {
		errs.add("accepted_tos", "must be accepted")
	}
	if !in.NationalIDType.Valid() {
		errs.add("national_id_type", "is not a valid choice")
	}
	if in.BirthDate == nil {
		errs.add("birth_date", "is required")
	} else if s.enforceMinAge && domain.AgeAt(*in.BirthDate, s.now()) < s.minimumAge {
		errs.add("birth_date", fmt.Sprintf("you must be %d years old to enroll", s.minimumAge))
	}

	if in.NationalIDNumber == "" {
		errs.add("national_id_number", "is required")
	} else if taken, err := s.exists(func() error { _, err := s.natids.GetByNumber(ctx, in.NationalIDNumber); return err }); err != nil {
		return nil, err
	} else if taken {
		errs.add("national_id_number", "this national ID already exists")
	}
	if taken, err := s.exists(func() error { _, err := s.users.GetByEmail(ctx, in.Email); return err }); err != nil {
		return nil, err
	} else if taken {
		errs.add("email", "is already registered")
	}
	if taken, err := s.exists(func() error { _, err := s.users.GetByUsername(ctx, in.Username); return err }); err != nil {
		return nil, err
	} else if taken {
		errs.add("username", "is already taken")
	}
	if err := errs.err("registration is invalid"); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password1, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstNames:   in.FirstNames,
		LastNames:    in.LastNames,
		BirthDate:    in.BirthDate,
		PasswordHash: hash,
		AcceptedTOS:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict("an account with this email or username already exists", nil)
		}
		return nil, err
	}

	match, err := s.resolver.ResolveOrCreate(ctx, identity.Input{
		FirstNames:       in.FirstNames,
		LastNames:        in.LastNames,
		NationalIDType:   in.NationalIDType,
		NationalIDNumber: in.NationalIDNumber,
		Email:            in.Email,
		BirthDate:        in.BirthDate,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve person for user %s: %w", user.ID, err)
	}
	personID := match.Person.ID
	if err := s.users.LinkPerson(ctx, user.ID, personID); err != nil {
		return nil, err
	}
	user.PersonID = &personID

	userID := user.ID
	record := &domain.NationalID{
		Type:     in.NationalIDType,
		Number:   in.NationalIDNumber,
		PersonID: &personID,
		UserID:   &userID,
	}
	if err := s.natids.Create(ctx, record); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewValidationError("registration is invalid", map[string]any{
				"national_id_number": "this national ID already exists",
			})
		}
		return nil, err
	}

	s.assignDefaultGroup(ctx, user)

	link, err := s.verificationLink(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventUserRegistered, &userID, events.UserRegisteredPayload{
		Email:      user.Email,
		FullName:   user.FullName(),
		VerifyLink: link,
	}))
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("match", string(match.Kind)))
	return user, nil
}

func (s *AuthService) exists(lookup func() error) (bool, error) {
	err := lookup()
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *AuthService) assignDefaultGroup(ctx context.Context, user *domain.User) {
	group, err := s.groups.GetByName(ctx, domain.GroupCandidate)
	if err != nil {
		s.logger.Warn("default group unavailable", zap.String("group", domain.GroupCandidate), zap.Error(err))
		return
	}
	if err := s.users.SetGroups(ctx, user.ID, []string{group.ID}); err != nil {
		s.logger.Warn("assign default group", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (s *AuthService) verificationLink(user *domain.User) (string, error) {
	token, err := s.verifyTokens.MakeToken(user)
	if err != nil {
		return "", err
	}
	return s.publicURL + s.verifyFlow.LinkPath(user.ID, token), nil
}

// ActivateUser marks the account verified and active. Safe to call repeatedly.
func (s *AuthService) ActivateUser(ctx context.Context, user *domain.User) error {
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}
	if !user.IsVerified {
		userID := user.ID
		s.publish(ctx, events.New(events.EventUserVerified, &userID, events.UserVerifiedPayload{Email: user.Email}))
	}
	user.IsVerified = true
	user.IsActive = true
	return nil
}

// Login authenticates by email or username.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := s.checkLoginRate(ctx, identifier); err != nil {
		return nil, err
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("this account is inactive")
	}

	groups, err := s.users.GroupsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	token, access, err := s.tokenMgr.GenerateToken(user.ID, names)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return &LoginResult{User: user, Groups: groups, Token: token, Access: access}, nil
}

func (s *AuthService) checkLoginRate(ctx context.Context, identifier string) error {
	if s.limiter == nil || s.loginMax <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, "login:"+strings.ToLower(identifier), int64(s.loginMax), s.loginWindow)
	if err != nil {
		s.logger.Warn("login rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !allowed {
		return apperrors.NewTooManyRequests("too many login attempts; try again later")
	}
	return nil
}

// Logout revokes the access token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now()))
}

// RequestPasswordReset emails a reset link to an active account. Unknown or inactive
// addresses succeed silently so the response never reveals which accounts exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}
	token, err := s.resetTokens.MakeToken(user)
	if err != nil {
		return err
	}
	userID := user.ID
	s.publish(ctx, events.New(events.EventPasswordResetRequested, &userID, events.PasswordResetRequestedPayload{
		Email:     user.Email,
		FullName:  user.FullName(),
		ResetLink: s.publicURL + s.resetFlow.LinkPath(user.ID, token),
	}))
	return nil
}

// ResetPassword sets a new password after the reset link was revalidated from the session.
func (s *AuthService) ResetPassword(ctx context.Context, uidb64 string, sess verification.Session, password1, password2 string) error {
	user, ok, err := s.resetFlow.Revalidate(ctx, uidb64, sess)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidLink
	}
	if err := s.setPassword(ctx, user, password1, password2, "new_password2"); err != nil {
		return err
	}
	s.resetFlow.Clear(sess)
	userID := user.ID
	s.publish(ctx, events.New(events.EventPasswordChanged, &userID, events.PasswordChangedPayload{Email: user.Email, Source: "reset"}))
	return nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, password1, password2 string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewValidationError("password change is invalid", map[string]any{
			"old_password": "your old password was entered incorrectly",
		})
	}
	if err := s.setPassword(ctx, user, password1, password2, "new_password2"); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.EventPasswordChanged, &userID, events.PasswordChangedPayload{Email: user.Email, Source: "change"}))
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password1, password2, field string) error {
	errs := fieldErrors{}
	if password1 != password2 {
		errs.add(field, auth.ErrPasswordsDoNotMatch.Error())
	} else if err := auth.ValidatePassword(password2, user.Username, user.Email); err != nil {
		errs.add(field, err.Error())
	}
	if err := errs.err("password is invalid"); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password1, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("event handlers failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
