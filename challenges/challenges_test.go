package challenges

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"flagdojo_backend/internal/challenge"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var builtinNames = []string{
	"csrf-attack",
	"path-traversal",
	"sqli-basic",
	"xss-reflected",
	"xss-stored",
}

func TestRegisterAll(t *testing.T) {
	challenge.ResetRegistry()
	defer challenge.ResetRegistry()

	RegisterAll()

	for _, name := range builtinNames {
		ctors := challenge.Registered(name)
		require.Len(t, ctors, 1, "plugin %s", name)

		ch, err := ctors[0](t.TempDir())
		require.NoError(t, err, "plugin %s", name)

		// 注册名、声明标识和挂载命名空间三者必须一致
		assert.Equal(t, name, ch.Slug())
		assert.Equal(t, "/challenge/"+name, ch.MountPath())

		d := ch.Descriptor()
		assert.NotEmpty(t, d.Title, "plugin %s", name)
		assert.NotEmpty(t, d.Flag, "plugin %s", name)
		assert.Greater(t, d.Points, 0, "plugin %s", name)
		assert.NotEmpty(t, d.Category, "plugin %s", name)

		assert.True(t, ch.CheckFlag(d.Flag), "plugin %s", name)
		assert.False(t, ch.CheckFlag("FLAG{definitely_wrong}"), "plugin %s", name)
	}
}

func TestReflectedXSSEchoesQuery(t *testing.T) {
	challenge.ResetRegistry()
	defer challenge.ResetRegistry()
	gin.SetMode(gin.TestMode)

	RegisterAll()

	ctors := challenge.Registered("xss-reflected")
	require.Len(t, ctors, 1)
	ch, err := ctors[0](t.TempDir())
	require.NoError(t, err)

	router := gin.New()
	m := challenge.NewMounter(router)
	require.NoError(t, m.Mount(ch))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/challenge/xss-reflected/?q=%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// 输入必须未经转义地回显，这是题目成立的前提
	assert.Contains(t, w.Body.String(), "<script>alert(1)</script>")
}

func TestPathTraversalSeedsDocuments(t *testing.T) {
	challenge.ResetRegistry()
	defer challenge.ResetRegistry()
	gin.SetMode(gin.TestMode)

	RegisterAll()

	ctors := challenge.Registered("path-traversal")
	require.Len(t, ctors, 1)

	dir := t.TempDir()
	ch, err := ctors[0](dir)
	require.NoError(t, err)

	router := gin.New()
	m := challenge.NewMounter(router)
	require.NoError(t, m.Mount(ch))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/challenge/path-traversal/?file=welcome.txt", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to FileViewer Pro!")
}
