package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
	"github.com/uptrace/bun"
)

func validRole(name string) bool {
	switch name {
	case common.RoleMinter, common.RolePurchaser, common.RoleSettler:
		return true
	}
	return false
}

// SetAuthorizedRole overwrites a role slot with the given principal.
// Only reachable through the admin-token-gated endpoint (registry owner).
func (svc *FactorhubService) SetAuthorizedRole(ctx context.Context, roleName string, userID int64) (*models.Role, error) {
	if !validRole(roleName) {
		return nil, fmt.Errorf("unknown role %q", roleName)
	}
	if _, err := svc.FindUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("cannot assign role %s: %w", roleName, err)
	}

	role := models.Role{
		Name:      roleName,
		UserID:    userID,
		UpdatedAt: bun.NullTime{},
	}
	_, err := svc.DB.NewInsert().
		Model(&role).
		On("CONFLICT (name) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// AuthorizedUserID returns the principal holding the role, or 0 when the
// slot is unset.
func (svc *FactorhubService) AuthorizedUserID(ctx context.Context, roleName string) (int64, error) {
	var role models.Role
	err := svc.DB.NewSelect().Model(&role).Where("name = ?", roleName).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return role.UserID, nil
}

// requireRole fails with ErrUnauthorized unless callerID holds the role.
// Unset slots reject every caller.
func (svc *FactorhubService) requireRole(ctx context.Context, roleName string, callerID int64) error {
	holder, err := svc.AuthorizedUserID(ctx, roleName)
	if err != nil {
		return err
	}
	if holder == 0 || holder != callerID {
		return ErrUnauthorized
	}
	return nil
}

// requireRoleSet fails with ErrUnauthorized while the role slot is unset.
// Used by the purchase and settle paths, which any principal may invoke but
// which stay disabled until the owner has configured the module's role.
func (svc *FactorhubService) requireRoleSet(ctx context.Context, roleName string) error {
	holder, err := svc.AuthorizedUserID(ctx, roleName)
	if err != nil {
		return err
	}
	if holder == 0 {
		return ErrUnauthorized
	}
	return nil
}

// Roles returns the current role table.
func (svc *FactorhubService) Roles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := svc.DB.NewSelect().Model(&roles).OrderExpr("name ASC").Scan(ctx)
	return roles, err
}
