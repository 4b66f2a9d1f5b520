package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaContextRoundTrip(t *testing.T) {
	ctx := WithSchema(context.Background(), "org_acme")
	assert.Equal(t, "org_acme", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestStaticResolver(t *testing.T) {
	resolver := NewStaticResolver("")
	resolver.Register("acme", "org_acme")

	schema, err := resolver.Resolve(context.Background(), "acme")
	assert.NoError(t, err)
	assert.Equal(t, "org_acme", schema)

	_, err = resolver.Resolve(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownOrg)
}

func TestStaticResolverDefault(t *testing.T) {
	resolver := NewStaticResolver("public")

	schema, err := resolver.Resolve(context.Background(), "anyone")
	assert.NoError(t, err)
	assert.Equal(t, "public", schema)
}
