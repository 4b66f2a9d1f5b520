package tenant

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// Resolver maps an organization identifier to its storage schema namespace.
// Tenant provisioning happens outside this service; the resolver only answers
// lookups.
type Resolver interface {
	Resolve(ctx context.Context, orgID string) (string, error)
}

type contextKey struct{}

// WithSchema returns a context carrying the tenant's schema namespace.
func WithSchema(ctx context.Context, schema string) context.Context {
	return context.WithValue(ctx, contextKey{}, schema)
}

// FromContext returns the schema namespace for the request, or "" when the
// request is unscoped.
func FromContext(ctx context.Context) string {
	schema, _ := ctx.Value(contextKey{}).(string)
	return schema
}

// Middleware resolves the acting principal's organization to a schema and
// scopes the request context with it. Requests without a resolvable tenant
// are rejected before reaching any handler.
func Middleware(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetString("org_id")
		if orgID == "" {
			orgID = c.GetHeader("X-Org-ID")
		}
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "organization not identified"})
			return
		}
		schema, err := resolver.Resolve(c.Request.Context(), orgID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown organization"})
			return
		}
		c.Request = c.Request.WithContext(WithSchema(c.Request.Context(), schema))
		c.Next()
	}
}

// StaticResolver serves a fixed org -> schema map, with an optional default
// for single-tenant deployments.
type StaticResolver struct {
	mu      sync.RWMutex
	schemas map[string]string
	Default string
}

func NewStaticResolver(defaultSchema string) *StaticResolver {
	return &StaticResolver{schemas: make(map[string]string), Default: defaultSchema}
}

// Register maps an organization to a schema namespace.
func (r *StaticResolver) Register(orgID, schema string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[orgID] = schema
}

func (r *StaticResolver) Resolve(_ context.Context, orgID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if schema, ok := r.schemas[orgID]; ok {
		return schema, nil
	}
	if r.Default != "" {
		return r.Default, nil
	}
	return "", ErrUnknownOrg
}
