package challenge

import (
	"fmt"
	"sort"
	"sync"

	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// Mounter 把存活的题目实例挂到各自的命名空间下，并在运行期
// 按 slug 解析实例。命名空间只由标识推导，重复标识在第二次
// 挂载时被拒绝，先挂载的实例保持不变。
type Mounter struct {
	router gin.IRouter

	mu      sync.RWMutex
	mounted map[string]Challenge
}

func NewMounter(router gin.IRouter) *Mounter {
	return &Mounter{
		router:  router,
		mounted: make(map[string]Challenge),
	}
}

// Mount 注册题目路由，整个进程生命周期内每个实例只调用一次
func (m *Mounter) Mount(ch Challenge) error {
	slug := ch.Slug()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounted[slug]; exists {
		return fmt.Errorf("%w: %s", util.ErrDuplicateChallenge, slug)
	}

	group := m.router.Group(MountNamespace(slug))
	ch.RegisterRoutes(group)
	m.mounted[slug] = ch
	return nil
}

// Get 按 slug 解析存活实例
func (m *Mounter) Get(slug string) (Challenge, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.mounted[slug]
	return ch, ok
}

// All 返回全部已挂载实例，slug 字典序
func (m *Mounter) All() []Challenge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slugs := make([]string, 0, len(m.mounted))
	for slug := range m.mounted {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	out := make([]Challenge, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, m.mounted[slug])
	}
	return out
}

// Slugs 返回全部已挂载的题目标识，字典序
func (m *Mounter) Slugs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slugs := make([]string, 0, len(m.mounted))
	for slug := range m.mounted {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
