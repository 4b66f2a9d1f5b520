package governance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nikhil-bisht01/asset-portal-backend/internal/tenant"
)

// Repository is the relational store behind the orchestrator. Lookups return
// (nil, nil) when the row is absent; every method is scoped to the tenant
// schema carried in the context.
type Repository interface {
	GetCategory(ctx context.Context, id int64) (*Category, error)
	UpdateCategoryState(ctx context.Context, cat *Category) error

	GetAsset(ctx context.Context, categoryID, assetID int64) (*AssetInstance, error)
	// UpdateAssetState writes the asset's status/stage/sub_stage and, when
	// cascadeMappings is set, removes all mapping rows for the asset in the
	// same transaction. Zero existing mappings is not an error.
	UpdateAssetState(ctx context.Context, asset *AssetInstance, cascadeMappings bool) error

	GetWorkflowByName(ctx context.Context, name string) (*Workflow, error)
	HasWorkflowMembership(ctx context.Context, principal uuid.UUID, workflowID int64) (bool, error)

	ListApprovalGroups(ctx context.Context, categoryID int64, action Action) ([]string, error)
	MissingRoles(ctx context.Context, groups []string) ([]string, error)
	HasRoleGrant(ctx context.Context, principal uuid.UUID, groups []string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates the GORM-backed repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// table resolves a table name inside the tenant's schema namespace.
func (r *gormRepository) table(ctx context.Context, name string) string {
	if schema := tenant.FromContext(ctx); schema != "" {
		return schema + "." + name
	}
	return name
}

func (r *gormRepository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var cat Category
	err := r.db.WithContext(ctx).Table(r.table(ctx, "categories")).Where("id = ?", id).Take(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *gormRepository) UpdateCategoryState(ctx context.Context, cat *Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(r.table(ctx, "categories")).Where("id = ?", cat.ID).Updates(map[string]any{
			"status":     cat.Status,
			"stage":      cat.Stage,
			"updated_at": time.Now(),
		}).Error
	})
}

func (r *gormRepository) GetAsset(ctx context.Context, categoryID, assetID int64) (*AssetInstance, error) {
	var asset AssetInstance
	err := r.db.WithContext(ctx).Table(r.table(ctx, "asset_instances")).
		Where("id = ? AND category_id = ?", assetID, categoryID).Take(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *gormRepository) UpdateAssetState(ctx context.Context, asset *AssetInstance, cascadeMappings bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table(r.table(ctx, "asset_instances")).
			Where("id = ? AND category_id = ?", asset.ID, asset.CategoryID).
			Updates(map[string]any{
				"status":     asset.Status,
				"stage":      asset.Stage,
				"sub_stage":  asset.SubStage,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}
		if !cascadeMappings {
			return nil
		}
		return tx.Table(r.table(ctx, "asset_mappings")).
			Where("asset_id = ? AND category_id = ?", asset.ID, asset.CategoryID).
			Delete(&AssetMapping{}).Error
	})
}

func (r *gormRepository) GetWorkflowByName(ctx context.Context, name string) (*Workflow, error) {
	var wf Workflow
	err := r.db.WithContext(ctx).Table(r.table(ctx, "workflows")).Where("name = ?", name).Take(&wf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

func (r *gormRepository) HasWorkflowMembership(ctx context.Context, principal uuid.UUID, workflowID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(r.table(ctx, "workflow_memberships")).
		Where("principal_id = ? AND workflow_id = ?", principal, workflowID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) ListApprovalGroups(ctx context.Context, categoryID int64, action Action) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Table(r.table(ctx, "approval_groups")).
		Where("category_id = ? AND action = ?", categoryID, action).
		Pluck("group_name", &names).Error
	return names, err
}

func (r *gormRepository) MissingRoles(ctx context.Context, groups []string) ([]string, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	var known []string
	err := r.db.WithContext(ctx).Table(r.table(ctx, "roles")).
		Where("name IN ?", groups).
		Pluck("name", &known).Error
	if err != nil {
		return nil, err
	}
	registered := make(map[string]struct{}, len(known))
	for _, name := range known {
		registered[name] = struct{}{}
	}
	var missing []string
	for _, group := range groups {
		if _, ok := registered[group]; !ok {
			missing = append(missing, group)
		}
	}
	return missing, nil
}

func (r *gormRepository) HasRoleGrant(ctx context.Context, principal uuid.UUID, groups []string) (bool, error) {
	if len(groups) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Table(r.table(ctx, "role_grants")).
		Where("principal_id = ? AND permission_name IN ?", principal, groups).
		Count(&count).Error
	return count > 0, err
}
