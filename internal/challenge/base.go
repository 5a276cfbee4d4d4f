package challenge

import (
	"fmt"
	"strings"

	"flagdojo_backend/internal/util"

	"gorm.io/gorm"
)

// BaseChallenge 提供契约的默认实现。
// 插件类型内嵌 BaseChallenge 后只需实现 RegisterRoutes，
// 需要自定义校验逻辑时可覆盖 CheckFlag，默认实现始终可用。
type BaseChallenge struct {
	Meta Descriptor

	// 插件目录，构造时由 Loader 传入
	Dir string
}

func NewBase(meta Descriptor, dir string) BaseChallenge {
	return BaseChallenge{Meta: meta.Normalized(), Dir: dir}
}

func (b *BaseChallenge) Slug() string {
	return b.Meta.Slug
}

func (b *BaseChallenge) Descriptor() Descriptor {
	return b.Meta
}

// CheckFlag 默认实现：去除首尾空白后精确比较，大小写敏感
func (b *BaseChallenge) CheckFlag(candidate string) bool {
	return strings.TrimSpace(candidate) == strings.TrimSpace(b.Meta.Flag)
}

func (b *BaseChallenge) MountPath() string {
	return MountNamespace(b.Meta.Slug)
}

// SetupStorage 默认无私有表
func (b *BaseChallenge) SetupStorage(db *gorm.DB) error {
	return nil
}

// Validate 校验必填元数据，缺失只导致该插件加载失败
func (b *BaseChallenge) Validate() error {
	if b.Meta.Slug == "" {
		return fmt.Errorf("%w: descriptor missing slug", util.ErrContractViolation)
	}
	if b.Meta.Title == "" {
		return fmt.Errorf("%w: %q missing title", util.ErrContractViolation, b.Meta.Slug)
	}
	if b.Meta.Flag == "" {
		return fmt.Errorf("%w: %q missing flag", util.ErrContractViolation, b.Meta.Slug)
	}
	return nil
}

// validator 由 Loader 在实例化后调用；BaseChallenge 内嵌即满足
type validator interface {
	Validate() error
}
