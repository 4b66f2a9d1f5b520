package governance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requestState tracks an operation's progress through the orchestrator.
// Terminal states are committed and rejected.
type requestState string

const (
	stateReceived       requestState = "received"
	stateValidated      requestState = "validated"
	statePolicyResolved requestState = "policy_resolved"
	stateBypassGranted  requestState = "bypass_granted"
	stateAuthorized     requestState = "authorized"
	stateDenied         requestState = "denied"
	stateCommitted      requestState = "committed"
	stateRejected       requestState = "rejected"
)

// NoteValidator checks an approval-note payload against the schema registered
// for a (category, action) key. Schema management lives outside this package.
type NoteValidator interface {
	Validate(key string, payload map[string]any) error
}

// UpdateCategoryStatusRequest asks for a category status transition. Stage is
// an optional side-channel: it may only carry the resubmitted stage, applied
// together with the status write.
type UpdateCategoryStatusRequest struct {
	CategoryID int64
	Action     Action
	Principal  uuid.UUID
	Status     CategoryStatus
	Stage      *CategoryStage
}

// UpdateCategoryStageRequest asks for a category stage transition. Stage
// moves are catalog-checked but not policy-gated.
type UpdateCategoryStageRequest struct {
	CategoryID int64
	Stage      CategoryStage
}

// UpdateAssetStatusRequest asks for an asset status transition.
type UpdateAssetStatusRequest struct {
	CategoryID int64
	AssetID    int64
	Action     Action
	Principal  uuid.UUID
	Status     AssetStatus
}

// UpdateAssetStageRequest asks for an asset stage transition, optionally
// moving the sub-stage axis in the same commit.
type UpdateAssetStageRequest struct {
	CategoryID int64
	AssetID    int64
	Action     Action
	Principal  uuid.UUID
	Stage      AssetStage
	SubStage   *AssetSubStage
}

// UpdateAssetSubStageRequest asks for an asset sub-stage transition,
// optionally moving the stage axis in the same commit. Note carries the
// approval-note payload validated by the schema registry.
type UpdateAssetSubStageRequest struct {
	CategoryID int64
	AssetID    int64
	Action     Action
	Principal  uuid.UUID
	SubStage   AssetSubStage
	Stage      *AssetStage
	Note       map[string]any
}

// EntityStates is a read-side snapshot of an entity plus the next states the
// catalog would accept for it.
type EntityStates struct {
	AllowedStatuses  []string `json:"allowed_statuses"`
	AllowedStages    []string `json:"allowed_stages"`
	AllowedSubStages []string `json:"allowed_sub_stages,omitempty"`
}

// Service is the orchestrator: per operation it validates shape, runs the
// transition catalog, resolves the approval policy, applies the membership
// and role gates unless bypass was granted, and commits the transition.
type Service interface {
	UpdateCategoryStatus(ctx context.Context, req UpdateCategoryStatusRequest) (*Category, error)
	UpdateCategoryStage(ctx context.Context, req UpdateCategoryStageRequest) (*Category, error)
	UpdateAssetStatus(ctx context.Context, req UpdateAssetStatusRequest) (*AssetInstance, error)
	UpdateAssetStage(ctx context.Context, req UpdateAssetStageRequest) (*AssetInstance, error)
	UpdateAssetSubStage(ctx context.Context, req UpdateAssetSubStageRequest) (*AssetInstance, error)

	GetCategory(ctx context.Context, id int64) (*Category, *EntityStates, error)
	GetAsset(ctx context.Context, categoryID, assetID int64) (*AssetInstance, *EntityStates, error)
}

type governanceService struct {
	repo       Repository
	catalog    *Catalog
	resolver   *PolicyResolver
	membership *MembershipGate
	roles      *RoleGate
	notes      NoteValidator
	logger     *zap.Logger
}

// NewService wires the orchestrator. notes may be nil when no approval-note
// schemas are registered.
func NewService(repo Repository, catalog *Catalog, notes NoteValidator, logger *zap.Logger) Service {
	return &governanceService{
		repo:       repo,
		catalog:    catalog,
		resolver:   NewPolicyResolver(repo),
		membership: NewMembershipGate(repo),
		roles:      NewRoleGate(repo),
		notes:      notes,
		logger:     logger,
	}
}

func (s *governanceService) step(op string, state requestState) {
	s.logger.Debug("transition request", zap.String("op", op), zap.String("state", string(state)))
}

func (s *governanceService) finish(op string, err error) error {
	if err != nil {
		s.step(op, stateRejected)
		return err
	}
	s.step(op, stateCommitted)
	return nil
}

// authorize runs policy resolution and, unless bypass applies, the membership
// gate followed by the role gate. Gate ordering is membership before role;
// the role-registry cross-check happens inside the role gate.
func (s *governanceService) authorize(ctx context.Context, op string, cat *Category, action Action, principal uuid.UUID) error {
	policy, err := s.resolver.Resolve(ctx, cat.ID, action)
	if err != nil {
		s.step(op, stateDenied)
		return err
	}
	s.step(op, statePolicyResolved)

	switch p := policy.(type) {
	case Bypass:
		s.step(op, stateBypassGranted)
		return nil
	case RequireAnyOf:
		wf, err := s.repo.GetWorkflowByName(ctx, cat.Workflow)
		if err != nil {
			return errInternal("loading workflow", err)
		}
		if wf == nil {
			return errNotFound("workflow %q bound to category %d not found", cat.Workflow, cat.ID)
		}
		if err := s.membership.Allow(ctx, principal, wf.ID); err != nil {
			s.step(op, stateDenied)
			return err
		}
		if err := s.roles.Allow(ctx, principal, p.Groups); err != nil {
			s.step(op, stateDenied)
			return err
		}
		s.step(op, stateAuthorized)
		return nil
	default:
		return errInternal("unexpected policy variant", fmt.Errorf("%T", policy))
	}
}

func (s *governanceService) loadCategory(ctx context.Context, id int64) (*Category, error) {
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, errInternal("loading category", err)
	}
	if cat == nil {
		return nil, errNotFound("category %d not found", id)
	}
	return cat, nil
}

func (s *governanceService) loadAsset(ctx context.Context, categoryID, assetID int64) (*AssetInstance, error) {
	asset, err := s.repo.GetAsset(ctx, categoryID, assetID)
	if err != nil {
		return nil, errInternal("loading asset", err)
	}
	if asset == nil {
		return nil, errNotFound("asset %d not found in category %d", assetID, categoryID)
	}
	return asset, nil
}

func (s *governanceService) UpdateCategoryStatus(ctx context.Context, req UpdateCategoryStatusRequest) (*Category, error) {
	const op = "category.status"
	s.step(op, stateReceived)

	if !req.Status.Valid() {
		return nil, s.finish(op, errValidation("invalid category status %q", req.Status))
	}
	if !req.Action.Valid() {
		return nil, s.finish(op, errValidation("unknown action %q", req.Action))
	}
	if req.Principal == uuid.Nil {
		return nil, s.finish(op, errValidation("acting principal is required"))
	}
	if req.Stage != nil && *req.Stage != StageResubmitted {
		return nil, s.finish(op, errValidation("only the %q stage may accompany a status change", StageResubmitted))
	}
	s.step(op, stateValidated)

	cat, err := s.loadCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	if err := s.catalog.CheckCategoryStatus(cat, req.Action, req.Status); err != nil {
		return nil, s.finish(op, err)
	}
	if req.Stage != nil {
		if err := s.catalog.CheckCategoryStage(cat, *req.Stage); err != nil {
			return nil, s.finish(op, err)
		}
	}
	if err := s.authorize(ctx, op, cat, req.Action, req.Principal); err != nil {
		return nil, s.finish(op, err)
	}

	cat.Status = req.Status
	if req.Stage != nil {
		cat.Stage = *req.Stage
	}
	if err := s.repo.UpdateCategoryState(ctx, cat); err != nil {
		return nil, s.finish(op, errInternal("committing category status", err))
	}
	return cat, s.finish(op, nil)
}

func (s *governanceService) UpdateCategoryStage(ctx context.Context, req UpdateCategoryStageRequest) (*Category, error) {
	const op = "category.stage"
	s.step(op, stateReceived)

	if !req.Stage.Valid() {
		return nil, s.finish(op, errValidation("invalid category stage %q", req.Stage))
	}
	s.step(op, stateValidated)

	cat, err := s.loadCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	if err := s.catalog.CheckCategoryStage(cat, req.Stage); err != nil {
		return nil, s.finish(op, err)
	}

	cat.Stage = req.Stage
	if err := s.repo.UpdateCategoryState(ctx, cat); err != nil {
		return nil, s.finish(op, errInternal("committing category stage", err))
	}
	return cat, s.finish(op, nil)
}

func (s *governanceService) UpdateAssetStatus(ctx context.Context, req UpdateAssetStatusRequest) (*AssetInstance, error) {
	const op = "asset.status"
	s.step(op, stateReceived)

	if !req.Status.Valid() {
		return nil, s.finish(op, errValidation("invalid asset status %q", req.Status))
	}
	if !req.Action.Valid() {
		return nil, s.finish(op, errValidation("unknown action %q", req.Action))
	}
	if req.Principal == uuid.Nil {
		return nil, s.finish(op, errValidation("acting principal is required"))
	}
	s.step(op, stateValidated)

	cat, err := s.loadCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	asset, err := s.loadAsset(ctx, req.CategoryID, req.AssetID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	if err := s.catalog.CheckAssetStatus(asset, req.Action, req.Status); err != nil {
		return nil, s.finish(op, err)
	}
	if err := s.authorize(ctx, op, cat, req.Action, req.Principal); err != nil {
		return nil, s.finish(op, err)
	}

	asset.Status = req.Status
	if err := s.repo.UpdateAssetState(ctx, asset, false); err != nil {
		return nil, s.finish(op, errInternal("committing asset status", err))
	}
	return asset, s.finish(op, nil)
}

func (s *governanceService) UpdateAssetStage(ctx context.Context, req UpdateAssetStageRequest) (*AssetInstance, error) {
	const op = "asset.stage"
	s.step(op, stateReceived)

	if !req.Stage.Valid() {
		return nil, s.finish(op, errValidation("invalid asset stage %q", req.Stage))
	}
	if !req.Action.Valid() {
		return nil, s.finish(op, errValidation("unknown action %q", req.Action))
	}
	if req.Principal == uuid.Nil {
		return nil, s.finish(op, errValidation("acting principal is required"))
	}
	if req.SubStage != nil && !req.SubStage.Valid() {
		return nil, s.finish(op, errValidation("invalid asset sub-stage %q", *req.SubStage))
	}
	s.step(op, stateValidated)

	cat, err := s.loadCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	asset, err := s.loadAsset(ctx, req.CategoryID, req.AssetID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	if err := s.catalog.CheckAssetStage(asset, req.Action, req.Stage); err != nil {
		return nil, s.finish(op, err)
	}
	if req.SubStage != nil && !s.catalog.SubStageReachable(asset, *req.SubStage) {
		return nil, s.finish(op, errInvalidTransition("asset sub-stage %q cannot move to %q", asset.SubStage, *req.SubStage))
	}
	if err := s.authorize(ctx, op, cat, req.Action, req.Principal); err != nil {
		return nil, s.finish(op, err)
	}

	asset.Stage = req.Stage
	if req.SubStage != nil {
		asset.SubStage = *req.SubStage
	}
	cascade := req.Stage == AssetStageDamage
	if err := s.repo.UpdateAssetState(ctx, asset, cascade); err != nil {
		return nil, s.finish(op, errInternal("committing asset stage", err))
	}
	return asset, s.finish(op, nil)
}

func (s *governanceService) UpdateAssetSubStage(ctx context.Context, req UpdateAssetSubStageRequest) (*AssetInstance, error) {
	const op = "asset.substage"
	s.step(op, stateReceived)

	if !req.SubStage.Valid() {
		return nil, s.finish(op, errValidation("invalid asset sub-stage %q", req.SubStage))
	}
	if !req.Action.Valid() {
		return nil, s.finish(op, errValidation("unknown action %q", req.Action))
	}
	if req.Principal == uuid.Nil {
		return nil, s.finish(op, errValidation("acting principal is required"))
	}
	if req.Stage != nil && !req.Stage.Valid() {
		return nil, s.finish(op, errValidation("invalid asset stage %q", *req.Stage))
	}
	if req.Note != nil && s.notes != nil {
		key := fmt.Sprintf("%d/%s", req.CategoryID, req.Action)
		if err := s.notes.Validate(key, req.Note); err != nil {
			return nil, s.finish(op, errValidation("approval note rejected: %v", err))
		}
	}
	s.step(op, stateValidated)

	cat, err := s.loadCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	asset, err := s.loadAsset(ctx, req.CategoryID, req.AssetID)
	if err != nil {
		return nil, s.finish(op, err)
	}
	if err := s.catalog.CheckAssetSubStage(asset, req.Action, req.SubStage); err != nil {
		return nil, s.finish(op, err)
	}
	if req.Stage != nil && !s.catalog.StageReachable(asset, *req.Stage) {
		return nil, s.finish(op, errInvalidTransition("%s asset in stage %q cannot move to %q", asset.Status, asset.Stage, *req.Stage))
	}
	if err := s.authorize(ctx, op, cat, req.Action, req.Principal); err != nil {
		return nil, s.finish(op, err)
	}

	asset.SubStage = req.SubStage
	cascade := false
	if req.Stage != nil {
		asset.Stage = *req.Stage
		cascade = *req.Stage == AssetStageDamage
	}
	if err := s.repo.UpdateAssetState(ctx, asset, cascade); err != nil {
		return nil, s.finish(op, errInternal("committing asset sub-stage", err))
	}
	return asset, s.finish(op, nil)
}

func (s *governanceService) GetCategory(ctx context.Context, id int64) (*Category, *EntityStates, error) {
	cat, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return cat, &EntityStates{
		AllowedStatuses: s.catalog.AllowedCategoryStatuses(cat),
		AllowedStages:   s.catalog.AllowedCategoryStages(cat),
	}, nil
}

func (s *governanceService) GetAsset(ctx context.Context, categoryID, assetID int64) (*AssetInstance, *EntityStates, error) {
	asset, err := s.loadAsset(ctx, categoryID, assetID)
	if err != nil {
		return nil, nil, err
	}
	return asset, &EntityStates{
		AllowedStatuses:  s.catalog.AllowedAssetStatuses(asset),
		AllowedStages:    s.catalog.AllowedAssetStages(asset),
		AllowedSubStages: s.catalog.AllowedAssetSubStages(asset),
	}, nil
}
