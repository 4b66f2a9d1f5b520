package governance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Category is a configurable entity type definition governed by its own
// status/stage lifecycle. Category and asset-schema creation happens outside
// this subsystem; rows here are only read and state-transitioned.
type Category struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name"`
	Status    CategoryStatus `json:"status"`
	Stage     CategoryStage  `json:"stage"`
	Workflow  string         `json:"workflow"`
	CreatedBy uuid.UUID      `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AssetInstance is a concrete item belonging to a category. Its id is unique
// within the category's store, not globally. Category-defined fields live in
// Attributes and are opaque to this subsystem (schema-on-read).
type AssetInstance struct {
	ID         int64             `json:"id" gorm:"primaryKey"`
	CategoryID int64             `json:"category_id" gorm:"primaryKey"`
	Status     AssetStatus       `json:"status"`
	Stage      AssetStage        `json:"stage"`
	SubStage   AssetSubStage     `json:"sub_stage"`
	Attributes datatypes.JSONMap `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Workflow groups categories under a shared authorization context.
type Workflow struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// WorkflowMembership binds a principal to a workflow. A principal must hold
// membership to act on any category bound to that workflow, unless bypass
// applies.
type WorkflowMembership struct {
	PrincipalID uuid.UUID `json:"principal_id" gorm:"primaryKey"`
	WorkflowID  int64     `json:"workflow_id" gorm:"primaryKey"`
}

// ApprovalGroup configures which role group may perform an action on a
// category. GroupName may be the bypass sentinel; that value never leaves the
// policy resolver as a string (see AuthPolicy).
type ApprovalGroup struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	CategoryID int64  `json:"category_id"`
	Action     Action `json:"action"`
	GroupName  string `json:"group_name"`
}

// RoleGrant assigns a permission name to a principal. Permission names are
// compared literally against configured approval group names.
type RoleGrant struct {
	PrincipalID    uuid.UUID `json:"principal_id" gorm:"primaryKey"`
	PermissionName string    `json:"permission_name" gorm:"primaryKey"`
}

// Role is an entry in the role registry, the authoritative set of permission
// names recognized system-wide.
type Role struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// AssetMapping associates an asset instance with a location and assignee.
// Reaching the damage stage cascades deletion of these rows only; the asset
// record itself survives.
type AssetMapping struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	AssetID    int64     `json:"asset_id"`
	CategoryID int64     `json:"category_id"`
	Location   string    `json:"location"`
	AssignedTo uuid.UUID `json:"assigned_to"`
	CreatedAt  time.Time `json:"created_at"`
}
