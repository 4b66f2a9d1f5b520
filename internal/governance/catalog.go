package governance

import (
	"github.com/nikhil-bisht01/asset-portal-backend/pkg/workflows"
)

// Catalog holds the static transition tables for every lifecycle axis. The
// category stage and asset stage tables are keyed by (status, stage) pairs,
// not by stage alone; the sub-stage table is keyed by the current sub-stage
// only.
type Catalog struct {
	categoryStatus *workflows.StateMachine
	categoryStage  *workflows.StateMachine
	assetStatus    *workflows.StateMachine
	assetStage     *workflows.StateMachine
	assetSubStage  *workflows.StateMachine
}

// NewCatalog creates the catalog with the fixed transition tables.
func NewCatalog() *Catalog {
	return &Catalog{
		categoryStatus: workflows.NewStateMachine(map[string][]string{
			string(CategoryDraft):    {string(CategoryActive), string(CategoryDraft)},
			string(CategoryActive):   {string(CategoryInactive)},
			string(CategoryInactive): {string(CategoryActive)},
		}),
		categoryStage: workflows.NewStateMachine(map[string][]string{
			string(CategoryDraft):    {string(StagePreview), string(StageFormDesign), string(StageResubmitted), string(StageSubmittedForApproval)},
			string(CategoryActive):   {string(StageApproved)},
			string(CategoryInactive): {string(StageHidden)},
		}),
		assetStatus: workflows.NewStateMachine(map[string][]string{
			string(AssetRepository): {string(AssetInventory)},
			string(AssetInventory):  {string(AssetRepository)},
		}),
		assetStage: workflows.NewStateMachine(map[string][]string{
			workflows.ScopedKey(string(AssetRepository), string(AssetStageAdded)):            {string(AssetStageAwaitingApproval)},
			workflows.ScopedKey(string(AssetRepository), string(AssetStageAwaitingApproval)): {string(AssetStageActive), string(AssetStageResubmitted)},
			workflows.ScopedKey(string(AssetRepository), string(AssetStageResubmitted)):      {string(AssetStageAwaitingApproval)},
			workflows.ScopedKey(string(AssetInventory), string(AssetStageActive)):            {string(AssetStageMapped), string(AssetStageInactive)},
			workflows.ScopedKey(string(AssetInventory), string(AssetStageMapped)):            {string(AssetStageDamage)},
			workflows.ScopedKey(string(AssetInventory), string(AssetStageDamage)):            {string(AssetStageSendForRepair)},
			workflows.ScopedKey(string(AssetInventory), string(AssetStageSendForRepair)):     {string(AssetStageRepaired), string(AssetStageDiscard)},
			workflows.ScopedKey(string(AssetInventory), string(AssetStageRepaired)):          {string(AssetStageActive)},
			workflows.ScopedKey(string(AssetInventory), string(AssetStageInactive)):          {string(AssetStageActive), string(AssetStageDiscard)},
		}),
		assetSubStage: workflows.NewStateMachine(map[string][]string{
			string(SubStageAdded):            {string(SubStageAwaitingApproval)},
			string(SubStageAwaitingApproval): {string(SubStageApproved), string(SubStageResubmitted)},
			string(SubStageResubmitted):      {string(SubStageAwaitingApproval)},
			string(SubStageApproved):         {string(SubStageAwaitingApproval)},
		}),
	}
}

// actionAllowedStates maps each action to the next states it may request.
// The catalog reachability check still applies on top of these sets.
var actionAllowedStates = map[Action][]string{
	ActionCategoryApproval: {string(CategoryActive), string(CategoryInactive), string(CategoryDraft)},
	ActionAssetTransfer:    {string(AssetInventory), string(AssetRepository)},
	ActionAssetAddition:    {string(AssetStageAwaitingApproval)},
	ActionAssetApproval:    {string(AssetStageActive), string(AssetStageResubmitted), string(AssetStageAwaitingApproval)},
	ActionMappingApprove:   {string(AssetStageMapped)},
	ActionDiscardApprove:   {string(AssetStageDiscard), string(AssetStageInactive)},
	ActionRepairApprove:    {string(AssetStageSendForRepair), string(AssetStageRepaired)},
	ActionDamageApprove:    {string(AssetStageDamage)},
	ActionMappingRequest:   {string(SubStageAwaitingApproval), string(SubStageApproved), string(SubStageResubmitted)},
	ActionDiscardRequest:   {string(SubStageAwaitingApproval), string(SubStageApproved), string(SubStageResubmitted)},
	ActionRepairRequest:    {string(SubStageAwaitingApproval), string(SubStageApproved), string(SubStageResubmitted)},
	ActionDamageRequest:    {string(SubStageAwaitingApproval), string(SubStageApproved), string(SubStageResubmitted)},
}

// checkAction verifies the declared action belongs to the endpoint's domain
// and that the requested next state is within the action's allowed set.
func checkAction(action Action, domain Domain, requested string) error {
	d, ok := action.Domain()
	if !ok {
		return errValidation("unknown action %q", action)
	}
	if d != domain {
		return errInvalidTransition("action %q does not operate on %s", action, domain)
	}
	for _, s := range actionAllowedStates[action] {
		if s == requested {
			return nil
		}
	}
	return errInvalidTransition("action %q may not request state %q", action, requested)
}

// CheckCategoryStatus validates a category status transition, including the
// publication lock: once a category's stage is approved, the only status
// change still permitted is to inactive.
func (c *Catalog) CheckCategoryStatus(cat *Category, action Action, next CategoryStatus) error {
	if err := checkAction(action, DomainCategoryStatus, string(next)); err != nil {
		return err
	}
	if cat.Stage == StageApproved && next != CategoryInactive {
		return errInvalidTransition("category %d is published; only a status change to %q is permitted", cat.ID, CategoryInactive)
	}
	if !c.categoryStatus.CanTransition(string(cat.Status), string(next)) {
		return errInvalidTransition("category status %q cannot move to %q", cat.Status, next)
	}
	return nil
}

// CheckCategoryStage validates a category stage transition. Stage
// destinations are keyed by the category's current status.
func (c *Catalog) CheckCategoryStage(cat *Category, next CategoryStage) error {
	if !c.categoryStage.CanTransition(string(cat.Status), string(next)) {
		return errInvalidTransition("category in status %q cannot move to stage %q", cat.Status, next)
	}
	return nil
}

// CheckAssetStatus validates an asset status transition.
func (c *Catalog) CheckAssetStatus(asset *AssetInstance, action Action, next AssetStatus) error {
	if err := checkAction(action, DomainAssetStatus, string(next)); err != nil {
		return err
	}
	if !c.assetStatus.CanTransition(string(asset.Status), string(next)) {
		return errInvalidTransition("asset status %q cannot move to %q", asset.Status, next)
	}
	return nil
}

// CheckAssetStage validates an asset stage transition. Stage destinations are
// keyed by the asset's current status.
func (c *Catalog) CheckAssetStage(asset *AssetInstance, action Action, next AssetStage) error {
	if err := checkAction(action, DomainAssetStage, string(next)); err != nil {
		return err
	}
	key := workflows.ScopedKey(string(asset.Status), string(asset.Stage))
	if !c.assetStage.CanTransition(key, string(next)) {
		return errInvalidTransition("%s asset in stage %q cannot move to %q", asset.Status, asset.Stage, next)
	}
	return nil
}

// CheckAssetSubStage validates an asset sub-stage transition. The sub-stage
// axis is independent of the asset's status and stage.
func (c *Catalog) CheckAssetSubStage(asset *AssetInstance, action Action, next AssetSubStage) error {
	if err := checkAction(action, DomainAssetSubStage, string(next)); err != nil {
		return err
	}
	if !c.assetSubStage.CanTransition(string(asset.SubStage), string(next)) {
		return errInvalidTransition("asset sub-stage %q cannot move to %q", asset.SubStage, next)
	}
	return nil
}

// StageReachable reports whether the stage table permits the move from the
// asset's current (status, stage) pair, ignoring action constraints. Used for
// side-channel stage writes riding on a sub-stage operation.
func (c *Catalog) StageReachable(asset *AssetInstance, next AssetStage) bool {
	return c.assetStage.CanTransition(workflows.ScopedKey(string(asset.Status), string(asset.Stage)), string(next))
}

// SubStageReachable reports whether the sub-stage table permits the move,
// ignoring action constraints.
func (c *Catalog) SubStageReachable(asset *AssetInstance, next AssetSubStage) bool {
	return c.assetSubStage.CanTransition(string(asset.SubStage), string(next))
}

// AllowedCategoryStatuses returns the statuses a category may move to,
// honoring the publication lock.
func (c *Catalog) AllowedCategoryStatuses(cat *Category) []string {
	allowed := c.categoryStatus.GetAllowedTransitions(string(cat.Status))
	if cat.Stage != StageApproved {
		return allowed
	}
	out := []string{}
	for _, s := range allowed {
		if s == string(CategoryInactive) {
			out = append(out, s)
		}
	}
	return out
}

// AllowedCategoryStages returns the stages a category may move to from its
// current status.
func (c *Catalog) AllowedCategoryStages(cat *Category) []string {
	return c.categoryStage.GetAllowedTransitions(string(cat.Status))
}

// AllowedAssetStatuses returns the statuses an asset may move to.
func (c *Catalog) AllowedAssetStatuses(asset *AssetInstance) []string {
	return c.assetStatus.GetAllowedTransitions(string(asset.Status))
}

// AllowedAssetStages returns the stages an asset may move to from its current
// (status, stage) pair.
func (c *Catalog) AllowedAssetStages(asset *AssetInstance) []string {
	return c.assetStage.GetAllowedTransitions(workflows.ScopedKey(string(asset.Status), string(asset.Stage)))
}

// AllowedAssetSubStages returns the sub-stages an asset may move to.
func (c *Catalog) AllowedAssetSubStages(asset *AssetInstance) []string {
	return c.assetSubStage.GetAllowedTransitions(string(asset.SubStage))
}
