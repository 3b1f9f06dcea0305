package portfolioService

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (s *PortfolioService) Register(ctx context.Context, email, password string) (token string, user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Register"

	slog.Debug("Register start", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	defer func() {
		slog.Debug("Register finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	}()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", model.User{}, err
	}

	userID, err := s.repo.InsertUser(ctx, email, string(passwordHash))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", model.User{}, service.ErrEmailTaken
		}
		slog.Error("got error from repo.InsertUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", model.User{}, err
	}

	user = model.User{UserID: userID, Email: email, CreatedAt: time.Now()}

	token, err = s.createSession(ctx, user)
	if err != nil {
		return "", model.User{}, err
	}

	return token, user, nil
}

func (s *PortfolioService) Login(ctx context.Context, email, password string) (token string, user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Login"

	slog.Debug("Login start", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	defer func() {
		slog.Debug("Login finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))
	}()

	user, passwordHash, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", model.User{}, service.ErrInvalidCredentials
		}
		slog.Error("got error from repo.GetUserByEmail", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", model.User{}, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil {
		return "", model.User{}, service.ErrInvalidCredentials
	}

	token, err = s.createSession(ctx, user)
	if err != nil {
		return "", model.User{}, err
	}

	return token, user, nil
}

func (s *PortfolioService) Logout(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Logout"

	slog.Debug("Logout start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Logout finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err := s.session.DeleteSession(ctx, token)
	if err != nil {
		slog.Error("got error from session.DeleteSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// Authenticate resolves a bearer token into the session stored for it.
func (s *PortfolioService) Authenticate(ctx context.Context, token string) (model.Session, error) {
	sess, err := s.session.GetSession(ctx, token)
	if err != nil {
		return model.Session{}, service.ErrAccessDenied
	}
	return sess, nil
}

func (s *PortfolioService) createSession(ctx context.Context, user model.User) (token string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.createSession"

	token = uuid.NewString()
	err = s.session.SetSession(ctx, token, model.Session{
		UserID:    user.UserID,
		Email:     user.Email,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return token, nil
}
