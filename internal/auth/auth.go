// Package auth implements the credential gate and the email-verification
// lifecycle: registration, login against the stored digest, profile
// updates, and completing verification links.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "vetline/internal/lib/logger"
	"vetline/internal/lib/verification"
	"vetline/internal/models"
	"vetline/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrLinkInvalid        = errors.New("verification link invalid or expired")
	ErrUserMismatch       = errors.New("token does not match any current user")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	tokenSecret string
	tokenTTL    time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (int64, error)
	UpdateUser(ctx context.Context, user models.User) error
	SetEmailVerified(ctx context.Context, uid int64) error
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	tokenSecret string,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
	}
}

// Login checks the credentials and returns the user on success. Unknown
// email and wrong password collapse into the same ErrInvalidCredentials so
// the response does not reveal which one it was.
func (a *Auth) Login(ctx context.Context, email, password string) (models.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return models.User{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if !VerifyPassword(password, user.PassHash) {
		log.Info("invalid credentials", slog.Int64("uid", user.ID))
		return models.User{}, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return models.User{}, ErrEmailNotVerified
	}

	log.Info("user logged in", slog.Int64("uid", user.ID))

	return user, nil
}

func (a *Auth) RegisterNewUser(
	ctx context.Context,
	email, firstName, lastName, phone, pass string,
) (int64, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(slog.String("op", op))

	log.Info("registering new user")

	passHash, err := HashPassword(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, models.User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		PassHash:  passHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return 0, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// VerifyOutcome distinguishes the terminal states of a verification link.
type VerifyOutcome int

const (
	Verified VerifyOutcome = iota
	AlreadyVerified
)

// CompleteVerification validates the token and flips the user's verified
// flag. The flip is idempotent, so two still-valid links completing at once
// both land on the same state; a link presented after the flag is already
// set is a harmless no-op reported as AlreadyVerified.
func (a *Auth) CompleteVerification(ctx context.Context, token string) (VerifyOutcome, error) {
	const op = "auth.CompleteVerification"

	log := a.log.With(slog.String("op", op))

	userID, email, err := verification.ParseToken(token, a.tokenSecret)
	if err != nil {
		log.Warn("invalid verification token", sl.Err(err))
		return 0, ErrLinkInvalid
	}

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("token subject no longer exists", slog.Int64("uid", userID))
			return 0, ErrUserMismatch
		}

		log.Error("failed to load user", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// The user may have changed address after the link went out; a token
	// bound to the old address must not verify the new one.
	if user.Email != email {
		log.Warn("token email does not match current address", slog.Int64("uid", userID))
		return 0, ErrUserMismatch
	}

	if user.EmailVerified {
		return AlreadyVerified, nil
	}

	if err := a.usrSaver.SetEmailVerified(ctx, user.ID); err != nil {
		log.Error("failed to set verified flag", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email verified", slog.Int64("uid", user.ID))

	return Verified, nil
}

// CheckUserVerification reports whether the account behind the email is
// already verified, for the resend flow.
func (a *Auth) CheckUserVerification(ctx context.Context, email string) (int64, bool, error) {
	const op = "auth.CheckUserVerification"

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return 0, false, storage.ErrUserNotFound
		}

		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	return user.ID, user.EmailVerified, nil
}

// ProfileUpdate carries the editable account fields. Password fields are
// only acted on when both are present.
type ProfileUpdate struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile applies the update and returns the stored user plus whether
// the email changed. An email change resets the verified flag: the new
// address has to prove itself with a fresh link.
func (a *Auth) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (models.User, bool, error) {
	const op = "auth.UpdateProfile"

	log := a.log.With(slog.String("op", op), slog.Int64("uid", userID))

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		return models.User{}, false, fmt.Errorf("%s: %w", op, err)
	}

	emailChanged := upd.Email != "" && upd.Email != user.Email
	if emailChanged {
		user.Email = upd.Email
		user.EmailVerified = false
	}

	if upd.CurrentPassword != "" && upd.NewPassword != "" {
		if !VerifyPassword(upd.CurrentPassword, user.PassHash) {
			log.Info("current password mismatch")
			return models.User{}, false, ErrInvalidCredentials
		}

		passHash, err := HashPassword(upd.NewPassword)
		if err != nil {
			return models.User{}, false, fmt.Errorf("%s: %w", op, err)
		}
		user.PassHash = passHash
	}

	user.FirstName = upd.FirstName
	user.LastName = upd.LastName
	user.Phone = upd.Phone

	if err := a.usrSaver.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("email already taken")
			return models.User{}, false, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to update user", sl.Err(err))
		return models.User{}, false, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("profile updated", slog.Bool("email_changed", emailChanged))

	return user, emailChanged, nil
}

// Profile loads the account for display.
func (a *Auth) Profile(ctx context.Context, userID int64) (models.User, error) {
	const op = "auth.Profile"

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
