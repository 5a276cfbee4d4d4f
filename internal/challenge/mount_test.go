package challenge

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routedChallenge struct {
	BaseChallenge
}

func (c *routedChallenge) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello from "+c.Meta.Slug)
	})
}

func newRouted(slug string) *routedChallenge {
	return &routedChallenge{BaseChallenge: NewBase(Descriptor{
		Slug: slug, Title: slug, Flag: "FLAG{" + slug + "}",
	}, "")}
}

func TestMounterMount(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	m := NewMounter(router)

	require.NoError(t, m.Mount(newRouted("alpha")))
	require.NoError(t, m.Mount(newRouted("beta")))

	// 路由挂在由标识推导的命名空间下
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/challenge/alpha/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello from alpha", w.Body.String())

	assert.Equal(t, []string{"alpha", "beta"}, m.Slugs())
}

func TestMounterDuplicateSlug(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	m := NewMounter(gin.New())

	first := newRouted("dup")
	require.NoError(t, m.Mount(first))

	err := m.Mount(newRouted("dup"))
	assert.ErrorIs(t, err, util.ErrDuplicateChallenge)

	// 先挂载的实例保持不变
	got, ok := m.Get("dup")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestMounterGetUnknown(t *testing.T) {
	t.Parallel()

	m := NewMounter(gin.New())
	_, ok := m.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, m.All())
}
