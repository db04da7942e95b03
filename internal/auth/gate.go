package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"givehub/internal/domain"
	"givehub/internal/infra"
	"givehub/internal/sqlinline"
)

// Gate verifies bearer identities and resolves their role. Every privileged
// operation passes through it before anything else is touched.
type Gate struct {
	secret          string
	sql             infra.SQLExecutor
	bootstrapAdmins map[string]struct{}
	logger          zerolog.Logger
}

func NewGate(secret string, sql infra.SQLExecutor, bootstrapEmails []string, logger zerolog.Logger) *Gate {
	admins := make(map[string]struct{}, len(bootstrapEmails))
	for _, email := range bootstrapEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &Gate{secret: secret, sql: sql, bootstrapAdmins: admins, logger: logger}
}

// Authorize resolves token to an identity and checks it against minRole.
// ErrUnauthorized means the token did not resolve to an identity;
// ErrForbidden means it did, but the role is insufficient. Bootstrap admin
// promotion is idempotent: the update is guarded on the current role, so
// repeated calls converge without further writes.
func (g *Gate) Authorize(ctx context.Context, token string, minRole domain.Role) (domain.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	claims, err := VerifyJWT(g.secret, token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	row := g.sql.QueryRow(ctx, sqlinline.QGetUserAuth, claims.Sub)
	var id domain.Identity
	var role string
	if err := row.Scan(&id.ActorID, &id.Email, &role); err != nil {
		if infra.IsNoRows(err) {
			return domain.Identity{}, domain.ErrUnauthorized
		}
		return domain.Identity{}, fmt.Errorf("%w: load user: %v", domain.ErrPersistence, err)
	}
	id.Role = domain.Role(role)
	if !id.Role.Valid() {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	if id.Role == domain.RoleUser {
		if _, ok := g.bootstrapAdmins[strings.ToLower(id.Email)]; ok {
			if _, err := g.sql.Exec(ctx, sqlinline.QPromoteUserRole, id.ActorID, string(domain.RoleAdmin)); err != nil {
				return domain.Identity{}, fmt.Errorf("%w: promote bootstrap admin: %v", domain.ErrPersistence, err)
			}
			g.logger.Info().Str("actor_id", id.ActorID).Msg("auth: bootstrap admin promoted")
			id.Role = domain.RoleAdmin
		}
	}

	if !id.Role.AtLeast(minRole) {
		return domain.Identity{}, domain.ErrForbidden
	}
	return id, nil
}
