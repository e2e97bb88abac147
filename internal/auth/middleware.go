package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	"github.com/spec-kit/municipal-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	identityKey  = "auth_identity"
)

var (
	errNoCredentials = errors.New("no session credentials")
	errInvalidToken  = errors.New("invalid session token")
	errRevoked       = errors.New("session revoked")
	errUnknownUser   = errors.New("session user no longer exists")
)

// Principal is the authenticated caller together with the token that proved it.
type Principal struct {
	Identity  *domain.Identity
	TokenID   string
	ExpiresAt time.Time
}

// SessionResolver turns request credentials into a principal. Tokens come from the
// Authorization bearer header or the session cookie.
type SessionResolver struct {
	tokens     *TokenManager
	users      repository.UserRepository
	revoked    RevocationStore
	cookieName string
	logger     *zap.Logger
}

// NewSessionResolver constructs a resolver. revoked may be nil when logout revocation is disabled.
func NewSessionResolver(tokens *TokenManager, users repository.UserRepository, revoked RevocationStore, cookieName string, logger *zap.Logger) *SessionResolver {
	if cookieName == "" {
		cookieName = "session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionResolver{tokens: tokens, users: users, revoked: revoked, cookieName: cookieName, logger: logger}
}

// CookieName returns the session cookie name.
func (r *SessionResolver) CookieName() string {
	return r.cookieName
}

// Resolve authenticates the request. The identity is rebuilt from the stored account so a
// deleted user loses access immediately.
func (r *SessionResolver) Resolve(c *fiber.Ctx) (*Principal, error) {
	raw, err := r.extractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := r.tokens.ParseToken(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	ctx := c.UserContext()
	if r.revoked != nil {
		revoked, err := r.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errRevoked
		}
	}

	user, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errUnknownUser
		}
		return nil, err
	}
	identity := user.Identity()

	principal := &Principal{Identity: &identity, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Optional resolves the caller, treating any failure as anonymous.
func (r *SessionResolver) Optional(c *fiber.Ctx) *Principal {
	principal, err := r.Resolve(c)
	if err != nil {
		if !errors.Is(err, errNoCredentials) {
			r.logger.Debug("session rejected", zap.Error(err))
		}
		return nil
	}
	return principal
}

func (r *SessionResolver) extractToken(c *fiber.Ctx) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errInvalidToken
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie := c.Cookies(r.cookieName); cookie != "" {
		return cookie, nil
	}
	return "", errNoCredentials
}

// Authenticate enforces a valid session on API routes.
func (r *SessionResolver) Authenticate(c *fiber.Ctx) error {
	principal, err := r.Resolve(c)
	if err != nil {
		switch {
		case errors.Is(err, errNoCredentials):
			return apperrors.NewUnauthorized("No autenticado")
		case errors.Is(err, errInvalidToken), errors.Is(err, errRevoked), errors.Is(err, errUnknownUser):
			return apperrors.NewUnauthorized("Sesión inválida")
		}
		return apperrors.NewInternalError(err)
	}
	SetPrincipal(c, principal)
	return c.Next()
}

// SetPrincipal stores the principal on the request.
func SetPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
	c.Locals(identityKey, principal.Identity)
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}

// IdentityFromContext retrieves the authenticated identity, or nil.
func IdentityFromContext(c *fiber.Ctx) *domain.Identity {
	identity, _ := c.Locals(identityKey).(*domain.Identity)
	return identity
}
