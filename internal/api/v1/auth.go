package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/plank/internal/auth"
	"github.com/gosuda/plank/internal/domain"
	"github.com/gosuda/plank/internal/server/middleware"
)

type RegisterInput struct {
	Body struct {
		Email       string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Username    string `json:"username" minLength:"1" maxLength:"64" doc:"Username"`
		Password    string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		FullName    string `json:"full_name,omitempty" maxLength:"255" doc:"Display name"`
		AvatarColor string `json:"avatar_color,omitempty" doc:"Avatar hex color"`
	}
}

type RegisterOutput struct {
	Body struct {
		User         *domain.User `json:"user"`
		AccessToken  string       `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string       `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type LoginInput struct {
	Body struct {
		Login    string `json:"login" minLength:"1" maxLength:"255" doc:"Email or username"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

type MeOutput struct {
	Body *domain.User
}

type ForgotPasswordInput struct {
	Body struct {
		Login string `json:"login" minLength:"1" maxLength:"255" doc:"Email or username"`
	}
}

type ForgotPasswordOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

type ResetPasswordInput struct {
	Body struct {
		Token       string `json:"token" minLength:"1" doc:"Reset token"`                      //nolint:gosec // G117: reset flow DTO
		NewPassword string `json:"new_password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: reset flow DTO
	}
}

type ResetPasswordOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new user",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		user, err := authSvc.Register(ctx, input.Body.Email, input.Body.Username, input.Body.Password, input.Body.FullName, input.Body.AvatarColor)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error409Conflict("email or username already registered")
			}
			return nil, huma.Error500InternalServerError("failed to register user", err)
		}

		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("registered but failed to issue tokens", err)
		}

		out := &RegisterOutput{}
		out.Body.User = user
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email or username",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Login, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid login or password")
			}
			return nil, huma.Error500InternalServerError("login failed", err)
		}

		out := &LoginOutput{}
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid or expired refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = accessToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "forgot-password",
		Method:      http.MethodPost,
		Path:        "/auth/forgot-password",
		Summary:     "Request a password reset token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *ForgotPasswordInput) (*ForgotPasswordOutput, error) {
		// Always answer the same way so the endpoint cannot be used to
		// probe which logins exist.
		out := &ForgotPasswordOutput{}
		out.Body.Message = "if the account exists, a reset token has been issued"

		user, token, err := authSvc.ForgotPassword(ctx, input.Body.Login)
		if err != nil {
			if !errors.Is(err, auth.ErrUserNotFound) {
				log.Error().Err(err).Msg("forgot password")
			}
			return out, nil
		}

		// Self-hosted deployments have no mail pipeline; the token is
		// surfaced in the server log for the operator to relay.
		log.Info().Str("username", user.Username).Str("reset_token", token).Msg("password reset requested")
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reset-password",
		Method:      http.MethodPost,
		Path:        "/auth/reset-password",
		Summary:     "Reset password with a token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *ResetPasswordInput) (*ResetPasswordOutput, error) {
		if err := authSvc.ResetPassword(ctx, input.Body.Token, input.Body.NewPassword); err != nil {
			if errors.Is(err, auth.ErrInvalidResetToken) {
				return nil, huma.Error400BadRequest("invalid or expired reset token")
			}
			return nil, huma.Error500InternalServerError("failed to reset password", err)
		}

		out := &ResetPasswordOutput{}
		out.Body.Message = "password updated"
		return out, nil
	})
}

// RegisterMeRoute lives on the authenticated group, unlike the rest of the
// auth routes.
func RegisterMeRoute(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Get the authenticated user",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*MeOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		user, err := authSvc.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to load user", err)
		}

		return &MeOutput{Body: user}, nil
	})
}
