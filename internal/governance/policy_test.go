package governance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) UpdateCategoryState(ctx context.Context, cat *Category) error {
	args := m.Called(ctx, cat)
	return args.Error(0)
}

func (m *MockRepository) GetAsset(ctx context.Context, categoryID, assetID int64) (*AssetInstance, error) {
	args := m.Called(ctx, categoryID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AssetInstance), args.Error(1)
}

func (m *MockRepository) UpdateAssetState(ctx context.Context, asset *AssetInstance, cascadeMappings bool) error {
	args := m.Called(ctx, asset, cascadeMappings)
	return args.Error(0)
}

func (m *MockRepository) GetWorkflowByName(ctx context.Context, name string) (*Workflow, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Workflow), args.Error(1)
}

func (m *MockRepository) HasWorkflowMembership(ctx context.Context, principal uuid.UUID, workflowID int64) (bool, error) {
	args := m.Called(ctx, principal, workflowID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListApprovalGroups(ctx context.Context, categoryID int64, action Action) ([]string, error) {
	args := m.Called(ctx, categoryID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) MissingRoles(ctx context.Context, groups []string) ([]string, error) {
	args := m.Called(ctx, groups)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) HasRoleGrant(ctx context.Context, principal uuid.UUID, groups []string) (bool, error) {
	args := m.Called(ctx, principal, groups)
	return args.Bool(0), args.Error(1)
}

func TestResolveBypass(t *testing.T) {
	mockRepo := new(MockRepository)
	resolver := NewPolicyResolver(mockRepo)
	ctx := context.Background()

	mockRepo.On("ListApprovalGroups", ctx, int64(5), ActionDamageApprove).
		Return([]string{"asset_managers", BypassGroup}, nil)

	policy, err := resolver.Resolve(ctx, 5, ActionDamageApprove)

	assert.NoError(t, err)
	assert.IsType(t, Bypass{}, policy)
	mockRepo.AssertExpectations(t)
}

func TestResolveEmptyPolicyFailsClosed(t *testing.T) {
	mockRepo := new(MockRepository)
	resolver := NewPolicyResolver(mockRepo)
	ctx := context.Background()

	mockRepo.On("ListApprovalGroups", ctx, int64(5), ActionCategoryApproval).
		Return([]string{}, nil)

	policy, err := resolver.Resolve(ctx, 5, ActionCategoryApproval)

	assert.Nil(t, policy)
	assert.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestResolveDeduplicatesGroups(t *testing.T) {
	mockRepo := new(MockRepository)
	resolver := NewPolicyResolver(mockRepo)
	ctx := context.Background()

	mockRepo.On("ListApprovalGroups", ctx, int64(5), ActionCategoryApproval).
		Return([]string{"hr_admins", "hr_admins", "dept_heads"}, nil)

	policy, err := resolver.Resolve(ctx, 5, ActionCategoryApproval)

	assert.NoError(t, err)
	anyOf, ok := policy.(RequireAnyOf)
	assert.True(t, ok)
	assert.Equal(t, []string{"hr_admins", "dept_heads"}, anyOf.Groups)
}

func TestRoleGateRejectsUnregisteredGroup(t *testing.T) {
	mockRepo := new(MockRepository)
	gate := NewRoleGate(mockRepo)
	ctx := context.Background()
	principal := uuid.New()

	// The principal's own grant matches the configured name exactly, but the
	// registry does not recognize it: denied before any grant lookup.
	mockRepo.On("MissingRoles", ctx, []string{"ghost_group"}).
		Return([]string{"ghost_group"}, nil)

	err := gate.Allow(ctx, principal, []string{"ghost_group"})

	assert.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	mockRepo.AssertNotCalled(t, "HasRoleGrant", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoleGateGrantMatch(t *testing.T) {
	mockRepo := new(MockRepository)
	gate := NewRoleGate(mockRepo)
	ctx := context.Background()
	principal := uuid.New()

	mockRepo.On("MissingRoles", ctx, []string{"hr_admins"}).Return([]string{}, nil)
	mockRepo.On("HasRoleGrant", ctx, principal, []string{"hr_admins"}).Return(true, nil)

	assert.NoError(t, gate.Allow(ctx, principal, []string{"hr_admins"}))
	mockRepo.AssertExpectations(t)
}

func TestMembershipGateDeniesNonMember(t *testing.T) {
	mockRepo := new(MockRepository)
	gate := NewMembershipGate(mockRepo)
	ctx := context.Background()
	principal := uuid.New()

	mockRepo.On("HasWorkflowMembership", ctx, principal, int64(7)).Return(false, nil)

	err := gate.Allow(ctx, principal, 7)

	assert.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}
