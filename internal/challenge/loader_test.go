package challenge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testChallenge struct {
	BaseChallenge
	setupErr error
}

func (c *testChallenge) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", func(ctx *gin.Context) {})
}

func (c *testChallenge) SetupStorage(db *gorm.DB) error {
	return c.setupErr
}

func newTestCtor(meta Descriptor, setupErr error) Constructor {
	return func(dir string) (Challenge, error) {
		return &testChallenge{BaseChallenge: NewBase(meta, dir), setupErr: setupErr}, nil
	}
}

// mkPlugin 在根目录下创建一个带入口文件的插件目录
func mkPlugin(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, EntryPointFile), []byte("package x\n"), 0o644))
}

func TestLoaderDiscover(t *testing.T) {
	defer ResetRegistry()

	root := t.TempDir()
	mkPlugin(t, root, "alpha")
	mkPlugin(t, root, "beta")
	mkPlugin(t, root, "_disabled")

	Register("alpha", newTestCtor(Descriptor{Slug: "alpha", Title: "Alpha", Flag: "FLAG{a}"}, nil))
	Register("beta", newTestCtor(Descriptor{Slug: "beta", Title: "Beta", Flag: "FLAG{b}"}, nil))
	Register("_disabled", newTestCtor(Descriptor{Slug: "disabled", Title: "D", Flag: "FLAG{d}"}, nil))

	loaded, failures, err := NewLoader(root, nil).Discover()
	require.NoError(t, err)

	require.Len(t, loaded, 2)
	assert.Empty(t, failures)
	// 目录按字典序枚举
	assert.Equal(t, "alpha", loaded[0].Slug())
	assert.Equal(t, "beta", loaded[1].Slug())
}

func TestLoaderMissingEntryPoint(t *testing.T) {
	defer ResetRegistry()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	Register("empty", newTestCtor(Descriptor{Slug: "empty", Title: "E", Flag: "FLAG{e}"}, nil))

	loaded, failures, err := NewLoader(root, nil).Discover()
	require.NoError(t, err)

	assert.Empty(t, loaded)
	require.Len(t, failures, 1)
	assert.Equal(t, "empty", failures[0].Plugin)
	assert.ErrorIs(t, failures[0].Err, util.ErrMissingEntryPoint)
}

func TestLoaderContractResolution(t *testing.T) {
	defer ResetRegistry()

	root := t.TempDir()
	mkPlugin(t, root, "orphan")
	mkPlugin(t, root, "twins")

	// orphan 没有注册构造函数，twins 注册了两个
	Register("twins", newTestCtor(Descriptor{Slug: "twins", Title: "T", Flag: "FLAG{t}"}, nil))
	Register("twins", newTestCtor(Descriptor{Slug: "twins2", Title: "T2", Flag: "FLAG{t2}"}, nil))

	loaded, failures, err := NewLoader(root, nil).Discover()
	require.NoError(t, err)

	assert.Empty(t, loaded)
	require.Len(t, failures, 2)
	for _, f := range failures {
		assert.ErrorIs(t, f.Err, util.ErrContractResolution)
	}
}

func TestLoaderIsolatesFailures(t *testing.T) {
	defer ResetRegistry()

	root := t.TempDir()
	mkPlugin(t, root, "broken")
	mkPlugin(t, root, "incomplete")
	mkPlugin(t, root, "healthy")

	// 构造函数 panic 只导致该插件失败
	Register("broken", func(dir string) (Challenge, error) {
		panic("boom")
	})
	// 缺 flag 是契约违规
	Register("incomplete", newTestCtor(Descriptor{Slug: "incomplete", Title: "I"}, nil))
	Register("healthy", newTestCtor(Descriptor{Slug: "healthy", Title: "H", Flag: "FLAG{h}"}, nil))

	loaded, failures, err := NewLoader(root, nil).Discover()
	require.NoError(t, err)

	require.Len(t, loaded, 1)
	assert.Equal(t, "healthy", loaded[0].Slug())

	require.Len(t, failures, 2)
	byPlugin := map[string]error{}
	for _, f := range failures {
		byPlugin[f.Plugin] = f.Err
	}
	assert.ErrorIs(t, byPlugin["broken"], util.ErrLoadFailure)
	assert.ErrorIs(t, byPlugin["incomplete"], util.ErrContractViolation)
}

func TestLoaderConstructorError(t *testing.T) {
	defer ResetRegistry()

	root := t.TempDir()
	mkPlugin(t, root, "failing")

	Register("failing", func(dir string) (Challenge, error) {
		return nil, errors.New("cannot initialize")
	})

	loaded, failures, err := NewLoader(root, nil).Discover()
	require.NoError(t, err)

	assert.Empty(t, loaded)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].Err, util.ErrLoadFailure)
}

func TestLoaderSetupStorageFailure(t *testing.T) {
	defer ResetRegistry()

	root := t.TempDir()
	mkPlugin(t, root, "nostorage")

	Register("nostorage", newTestCtor(
		Descriptor{Slug: "nostorage", Title: "N", Flag: "FLAG{n}"},
		errors.New("table creation failed"),
	))

	loaded, failures, err := NewLoader(root, nil).Discover()
	require.NoError(t, err)

	assert.Empty(t, loaded)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].Err, util.ErrLoadFailure)
}

func TestLoaderMissingRoot(t *testing.T) {
	loaded, failures, err := NewLoader(filepath.Join(t.TempDir(), "nope"), nil).Discover()

	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Empty(t, failures)
}

// 根目录存在但读不了时必须报错而不是当作零插件，
// 否则同步会把整个 catalog 下架
func TestLoaderUnreadableRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	loaded, failures, err := NewLoader(file, nil).Discover()

	require.Error(t, err)
	assert.Empty(t, loaded)
	assert.Empty(t, failures)
}
