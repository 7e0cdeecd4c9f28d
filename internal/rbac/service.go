package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service reads group permissions from PostgreSQL.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// EffectivePermissions returns deduplicated global permission names for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT gp.codename
FROM group_permissions gp
JOIN user_groups ug ON ug.group_id = gp.group_id
WHERE ug.user_id = $1
ORDER BY gp.codename`, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: effective permissions: %w", err)
	}
	defer rows.Close()
	var perms []string
	for rows.Next() {
		var codename string
		if err := rows.Scan(&codename); err != nil {
			return nil, err
		}
		perms = append(perms, strings.ToLower(codename))
	}
	return perms, rows.Err()
}

// PagePermissions returns every page permission granted to the user's groups.
func (s *Service) PagePermissions(ctx context.Context, userID int64) ([]PagePermission, error) {
	rows, err := s.pool.Query(ctx, `SELECT gpp.group_id, gpp.page_id, p.path, gpp.permission
FROM group_page_permissions gpp
JOIN user_groups ug ON ug.group_id = gpp.group_id
JOIN pages p ON p.id = gpp.page_id
WHERE ug.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: page permissions: %w", err)
	}
	defer rows.Close()
	var perms []PagePermission
	for rows.Next() {
		var perm PagePermission
		if err := rows.Scan(&perm.GroupID, &perm.PageID, &perm.PagePath, &perm.Permission); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// CreateGroup inserts a group and returns its id.
func (s *Service) CreateGroup(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO groups (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`, strings.TrimSpace(name)).Scan(&id)
	return id, err
}

// AddUserToGroup links a user to a group.
func (s *Service) AddUserToGroup(ctx context.Context, userID, groupID int64) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, groupID)
	return err
}

// GrantGlobal grants a global permission codename to a group.
func (s *Service) GrantGlobal(ctx context.Context, groupID int64, codename string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO group_permissions (group_id, codename) VALUES ($1, $2) ON CONFLICT DO NOTHING`, groupID, strings.ToLower(codename))
	return err
}

// GrantPage grants a page permission codename to a group on a page subtree.
func (s *Service) GrantPage(ctx context.Context, groupID, pageID int64, permission string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO group_page_permissions (group_id, page_id, permission) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, groupID, pageID, strings.ToLower(permission))
	return err
}
