package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/auth"
	"github.com/baharkarakas/rewear-backend/internal/metrics"
	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

type UserOptions struct {
	// WelcomeBonus is credited on registration, in the same transaction.
	WelcomeBonus int64
	// AdminEmails register with the admin role.
	AdminEmails []string
}

type UserService struct {
	store repo.Store
	audit *Auditor
	log   *slog.Logger
	opts  UserOptions
}

func NewUserService(store repo.Store, audit *Auditor, log *slog.Logger, opts UserOptions) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{store: store, audit: audit, log: log, opts: opts}
}

func (s *UserService) isAdminEmail(email string) bool {
	for _, e := range s.opts.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	u := models.User{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Role:     models.RoleUser,
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if err := CheckPassword(password); err != nil {
		return models.User{}, err
	}
	if s.isAdminEmail(u.Email) {
		u.Role = models.RoleAdmin
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.CodeInternal, err, "hash password")
	}
	u.PasswordHash = hash

	var created models.User
	err = s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		var err error
		created, err = r.Users.Create(ctx, u)
		if errors.Is(err, repo.ErrDuplicate) {
			return apperr.New(apperr.CodeConflict, "email already registered")
		}
		if err != nil {
			return translate(err, "user")
		}
		if _, err := r.Balances.GetOrCreate(ctx, created.ID); err != nil {
			return translate(err, "balance")
		}
		if s.opts.WelcomeBonus > 0 {
			if _, err := creditTx(ctx, r, created.ID, s.opts.WelcomeBonus, ReasonWelcomeBonus, created.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.User{}, translate(err, "user")
	}
	if s.opts.WelcomeBonus > 0 {
		metrics.PointsTransfersTotal.WithLabelValues("credit", ReasonWelcomeBonus).Inc()
	}
	s.log.Info("user registered", "user_id", created.ID, "role", created.Role)
	s.audit.Record(created.ID, "user", created.ID, "registered", nil)
	return created, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.store.Repos().Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, apperr.New(apperr.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return models.User{}, translate(err, "user")
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, apperr.New(apperr.CodeUnauthorized, "invalid credentials")
	}
	if u.Blocked {
		return models.User{}, apperr.New(apperr.CodeForbidden, "account is blocked")
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	u, err := s.store.Repos().Users.GetByID(ctx, id)
	return u, translate(err, "user")
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	users, err := s.store.Repos().Users.List(ctx, limit, offset)
	return users, translate(err, "users")
}

func (s *UserService) SetBlocked(ctx context.Context, actor Actor, id string, blocked bool) (models.User, error) {
	if !actor.IsAdmin() {
		return models.User{}, apperr.New(apperr.CodeForbidden, "admin only")
	}
	if actor.UserID == id {
		return models.User{}, apperr.New(apperr.CodeValidation, "admins cannot block themselves")
	}
	u, err := s.store.Repos().Users.SetBlocked(ctx, id, blocked)
	if err != nil {
		return models.User{}, translate(err, "user")
	}
	action := "unblocked"
	if blocked {
		action = "blocked"
	}
	s.log.Info("user "+action, "user_id", id, "actor_id", actor.UserID)
	s.audit.Record(actor.UserID, "user", id, action, nil)
	return u, nil
}

const specialChars = "!@#$%^&*"

// CheckPassword enforces at least 8 characters with an upper-case letter, a
// digit and one of !@#$%^&*.
func CheckPassword(p string) error {
	var upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	missing := []string{}
	if len([]rune(p)) < 8 {
		missing = append(missing, "at least 8 characters")
	}
	if !upper {
		missing = append(missing, "an upper-case letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if !special {
		missing = append(missing, "one of "+specialChars)
	}
	if len(missing) > 0 {
		return apperr.New(apperr.CodeValidation, "password too weak").
			WithDetails(map[string]any{"requires": missing})
	}
	return nil
}
