package challenge

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Challenge 是每个题目插件必须满足的契约。
// 插件包通过 Register 在启动阶段登记构造函数，由 Loader 统一实例化，
// 任何一个插件的失败都不会影响其它插件的加载。
type Challenge interface {
	// Slug 返回题目的稳定唯一标识，同时决定挂载命名空间
	Slug() string

	// Descriptor 返回题目声明的全部元数据，用于同步到持久化目录
	Descriptor() Descriptor

	// CheckFlag 判定提交的 flag 是否正确，每次提交只会被调用一次
	CheckFlag(candidate string) bool

	// MountPath 返回题目的挂载命名空间，由 Slug 推导
	MountPath() string

	// SetupStorage 建立题目私有表，可选，默认空操作
	SetupStorage(db *gorm.DB) error

	// RegisterRoutes 注册题目自身的路由，至少要有一条
	RegisterRoutes(rg *gin.RouterGroup)
}

// Descriptor 是插件在内存中声明的题目元数据。
// Slug、Title、Flag 缺一不可，缺失视为契约违规，仅该插件加载失败。
type Descriptor struct {
	Slug        string
	Title       string
	Category    string
	Difficulty  string // easy / medium / hard
	Points      int
	Summary     string
	Description string
	Flag        string
	Hints       []string
	Order       int
}

const (
	DefaultDifficulty  = "medium"
	DefaultPoints      = 100
	DefaultDescription = "No description provided."
)

// MountNamespace 把题目标识映射为挂载前缀。
// 命名空间只由标识决定，插件无法自行指定，两个插件只有声明相同
// 标识时才可能冲突，而这本身就是需要暴露的配置错误。
func MountNamespace(slug string) string {
	return "/challenge/" + slug
}

// Normalized 返回补全默认值后的描述副本
func (d Descriptor) Normalized() Descriptor {
	out := d
	if out.Difficulty == "" {
		out.Difficulty = DefaultDifficulty
	}
	if out.Points <= 0 {
		out.Points = DefaultPoints
	}
	if strings.TrimSpace(out.Description) == "" {
		out.Description = DefaultDescription
	}
	return out
}
