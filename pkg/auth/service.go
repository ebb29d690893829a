package auth

import (
	"context"
	"errors"

	"github.com/marmos91/hubd/internal/telemetry"
	"github.com/marmos91/hubd/pkg/metadata"
)

var ErrPrincipalDisabled = errors.New("principal is disabled")

// AuthenticatedPrincipal is the result of any successful authentication
// path (password login or bearer token), carrying enough of the Principal
// to drive authorization decisions without a second store round-trip.
type AuthenticatedPrincipal struct {
	ID       string
	Username string
	Role     metadata.PrincipalRole
	Groups   []string
}

// Service ties password verification, JWT session issuance, and API token
// validation together behind a single entry point for the HTTP layer.
type Service struct {
	principals metadata.PrincipalStore
	jwt        *JWTService
	tokens     *TokenService
}

func NewService(principals metadata.PrincipalStore, jwt *JWTService, tokens *TokenService) *Service {
	return &Service{principals: principals, jwt: jwt, tokens: tokens}
}

// Login verifies username/password and issues a new session token pair.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	ctx, span := telemetry.StartAuthSpan(ctx, telemetry.SpanAuthLogin, "password")
	defer span.End()
	span.SetAttributes(telemetry.Username(username))

	p, err := s.principals.GetPrincipalByUsername(ctx, username)
	if err != nil {
		if metadata.IsNotFound(err) {
			telemetry.RecordError(ctx, ErrInvalidCredentials)
			return nil, ErrInvalidCredentials
		}
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if p.Disabled {
		telemetry.RecordError(ctx, ErrPrincipalDisabled)
		return nil, ErrPrincipalDisabled
	}
	if p.PasswordHash == "" || !VerifyPassword(password, p.PasswordHash) {
		telemetry.RecordError(ctx, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	span.SetAttributes(telemetry.Principal(p.ID), telemetry.Role(string(p.Role)))
	return s.jwt.GenerateTokenPair(p)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	p, err := s.principals.GetPrincipalByID(ctx, claims.PrincipalID)
	if err != nil {
		return nil, err
	}
	if p.Disabled {
		return nil, ErrPrincipalDisabled
	}
	return s.jwt.GenerateTokenPair(p)
}

// AuthenticateBearer resolves an Authorization header's bearer credential,
// trying it first as a session JWT, then as a hashed API token. This mirrors
// the wire-compatible hub's accepting both browser session tokens and
// long-lived `hub_...` tokens on the same endpoints.
func (s *Service) AuthenticateBearer(ctx context.Context, bearer string) (*AuthenticatedPrincipal, error) {
	if claims, err := s.jwt.ValidateAccessToken(bearer); err == nil {
		return &AuthenticatedPrincipal{
			ID:       claims.PrincipalID,
			Username: claims.Username,
			Role:     claims.Role,
			Groups:   claims.Groups,
		}, nil
	}

	token, err := s.tokens.Authenticate(ctx, bearer)
	if err != nil {
		return nil, ErrInvalidToken
	}
	p, err := s.principals.GetPrincipalByID(ctx, token.PrincipalID)
	if err != nil {
		return nil, err
	}
	if p.Disabled {
		return nil, ErrPrincipalDisabled
	}
	return &AuthenticatedPrincipal{ID: p.ID, Username: p.Username, Role: p.Role, Groups: p.Groups}, nil
}
