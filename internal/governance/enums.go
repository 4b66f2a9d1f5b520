package governance

// CategoryStatus is the coarse lifecycle axis of a category.
type CategoryStatus string

const (
	CategoryDraft    CategoryStatus = "draft"
	CategoryActive   CategoryStatus = "active"
	CategoryInactive CategoryStatus = "inactive"
)

func (s CategoryStatus) Valid() bool {
	switch s {
	case CategoryDraft, CategoryActive, CategoryInactive:
		return true
	}
	return false
}

// CategoryStage is the fine-grained lifecycle axis of a category. Its legal
// destinations depend on the category's status.
type CategoryStage string

const (
	StageFormDesign            CategoryStage = "form_design"
	StagePreview               CategoryStage = "preview"
	StageResubmitted           CategoryStage = "resubmitted"
	StageSubmittedForApproval  CategoryStage = "submitted_for_approval"
	StageApproved              CategoryStage = "approved"
	StageHidden                CategoryStage = "hidden"
)

func (s CategoryStage) Valid() bool {
	switch s {
	case StageFormDesign, StagePreview, StageResubmitted, StageSubmittedForApproval, StageApproved, StageHidden:
		return true
	}
	return false
}

// AssetStatus is the coarse lifecycle axis of an asset instance.
type AssetStatus string

const (
	AssetRepository AssetStatus = "repository"
	AssetInventory  AssetStatus = "inventory"
)

func (s AssetStatus) Valid() bool {
	return s == AssetRepository || s == AssetInventory
}

// AssetStage is the fine-grained lifecycle axis of an asset instance. Its
// domain depends on the asset's status: the review cycle states belong to
// repository assets, the operational states to inventory assets.
type AssetStage string

const (
	AssetStageAdded            AssetStage = "added"
	AssetStageAwaitingApproval AssetStage = "awaiting_approval"
	AssetStageActive           AssetStage = "active"
	AssetStageResubmitted      AssetStage = "resubmitted"
	AssetStageMapped           AssetStage = "mapped"
	AssetStageDamage           AssetStage = "damage"
	AssetStageSendForRepair    AssetStage = "send_for_repair"
	AssetStageRepaired         AssetStage = "repaired"
	AssetStageDiscard          AssetStage = "discard"
	AssetStageInactive         AssetStage = "inactive"
)

func (s AssetStage) Valid() bool {
	switch s {
	case AssetStageAdded, AssetStageAwaitingApproval, AssetStageActive, AssetStageResubmitted,
		AssetStageMapped, AssetStageDamage, AssetStageSendForRepair, AssetStageRepaired,
		AssetStageDiscard, AssetStageInactive:
		return true
	}
	return false
}

// AssetSubStage is the second, parallel approval axis of an asset instance.
// Despite the overlapping labels it is fully independent of AssetStage.
type AssetSubStage string

const (
	SubStageAdded            AssetSubStage = "added"
	SubStageAwaitingApproval AssetSubStage = "awaiting_approval"
	SubStageApproved         AssetSubStage = "approved"
	SubStageResubmitted      AssetSubStage = "resubmitted"
)

func (s AssetSubStage) Valid() bool {
	switch s {
	case SubStageAdded, SubStageAwaitingApproval, SubStageApproved, SubStageResubmitted:
		return true
	}
	return false
}

// Action is the caller-declared approval action token. Approval policies are
// configured per (category, action) pair against these tokens.
type Action string

const (
	ActionCategoryApproval Action = "CategoryApproval"
	ActionAssetTransfer    Action = "AssetTransfer"
	ActionAssetAddition    Action = "AssetAddition"
	ActionAssetApproval    Action = "AssetApproval"
	ActionMappingApprove   Action = "MappingApprove"
	ActionDiscardApprove   Action = "DiscardApprove"
	ActionRepairApprove    Action = "RepairApprove"
	ActionDamageApprove    Action = "DamageApprove"
	ActionMappingRequest   Action = "MappingRequest"
	ActionDiscardRequest   Action = "DiscardRequest"
	ActionRepairRequest    Action = "RepairRequest"
	ActionDamageRequest    Action = "DamageRequest"
)

// Domain tags the lifecycle axis an endpoint mutates. Every action is
// statically bound to exactly one domain; a mismatch between the declared
// action and the endpoint's domain is rejected before anything else.
type Domain string

const (
	DomainCategoryStatus Domain = "category_status"
	DomainAssetStatus    Domain = "asset_status"
	DomainAssetStage     Domain = "asset_stage"
	DomainAssetSubStage  Domain = "asset_sub_stage"
)

var actionDomains = map[Action]Domain{
	ActionCategoryApproval: DomainCategoryStatus,
	ActionAssetTransfer:    DomainAssetStatus,
	ActionAssetAddition:    DomainAssetStage,
	ActionAssetApproval:    DomainAssetStage,
	ActionMappingApprove:   DomainAssetStage,
	ActionDiscardApprove:   DomainAssetStage,
	ActionRepairApprove:    DomainAssetStage,
	ActionDamageApprove:    DomainAssetStage,
	ActionMappingRequest:   DomainAssetSubStage,
	ActionDiscardRequest:   DomainAssetSubStage,
	ActionRepairRequest:    DomainAssetSubStage,
	ActionDamageRequest:    DomainAssetSubStage,
}

func (a Action) Valid() bool {
	_, ok := actionDomains[a]
	return ok
}

// Domain returns the lifecycle axis the action is bound to.
func (a Action) Domain() (Domain, bool) {
	d, ok := actionDomains[a]
	return d, ok
}
