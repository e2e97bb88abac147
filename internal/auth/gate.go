package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

// Page locations the gate redirects to.
const (
	LoginPath          = "/login"
	ForbiddenPath      = "/forbidden"
	AdminDashboardPath = "/admin/dashboard"
	UserDashboardPath  = "/user/dashboard"
)

// DecisionKind enumerates the gate outcomes.
type DecisionKind int

const (
	Allow DecisionKind = iota
	RedirectLogin
	RedirectRoleHome
	RedirectForbidden
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectRoleHome:
		return "redirect_role_home"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Kind     DecisionKind
	Location string
}

// Gate decides page access from the path and the caller identity alone.
type Gate struct {
	publicPaths []string
}

// NewGate returns a gate with the default public pages.
func NewGate() *Gate {
	return &Gate{publicPaths: []string{LoginPath, ForbiddenPath}}
}

// Decide applies the access rules in order: public pages, missing session, admin area,
// user area, role home, allow.
func (g *Gate) Decide(path string, identity *domain.Identity) Decision {
	path = normalizePath(path)

	for _, public := range g.publicPaths {
		if underPrefix(path, public) {
			return Decision{Kind: Allow}
		}
	}

	if identity == nil {
		return Decision{Kind: RedirectLogin, Location: LoginPath}
	}

	if underPrefix(path, "/admin") && identity.Role != domain.RoleAdmin {
		return Decision{Kind: RedirectForbidden, Location: ForbiddenPath}
	}
	if underPrefix(path, "/user") && identity.Role != domain.RoleNormal {
		return Decision{Kind: RedirectForbidden, Location: ForbiddenPath}
	}

	if path == "/" || path == "/dashboard" {
		home, ok := RoleHome(identity.Role)
		if !ok {
			return Decision{Kind: RedirectLogin, Location: LoginPath}
		}
		return Decision{Kind: RedirectRoleHome, Location: home}
	}

	return Decision{Kind: Allow}
}

// RoleHome returns the dashboard for a role.
func RoleHome(role domain.Role) (string, bool) {
	switch role {
	case domain.RoleAdmin:
		return AdminDashboardPath, true
	case domain.RoleNormal:
		return UserDashboardPath, true
	default:
		return "", false
	}
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// underPrefix matches whole segments, so /users is not under /user.
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// PageGate applies gate decisions to page routes with 302 redirects. The identity is
// resolved leniently: a missing or invalid session is treated as anonymous.
func PageGate(gate *Gate, resolver *SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var identity *domain.Identity
		principal := resolver.Optional(c)
		if principal != nil {
			identity = principal.Identity
		}
		decision := gate.Decide(c.Path(), identity)
		if decision.Kind == Allow {
			if principal != nil {
				SetPrincipal(c, principal)
			}
			return c.Next()
		}
		return c.Redirect(decision.Location, http.StatusFound)
	}
}
