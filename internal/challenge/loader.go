package challenge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flagdojo_backend/internal/util"
	"flagdojo_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DisablePrefix 开头的插件目录整体跳过
const DisablePrefix = "_"

// EntryPointFile 是每个插件目录必须包含的入口文件
const EntryPointFile = "challenge.go"

// LoadFailure 记录单个插件的加载失败及其原因
type LoadFailure struct {
	Plugin string
	Err    error
}

func (f LoadFailure) Error() string {
	return fmt.Sprintf("plugin %s: %v", f.Plugin, f.Err)
}

// Loader 扫描插件根目录并实例化全部题目。
// 加载在启动阶段串行完成，任何插件的失败只记录不中断。
type Loader struct {
	Root string
	DB   *gorm.DB
}

func NewLoader(root string, db *gorm.DB) *Loader {
	return &Loader{Root: root, DB: db}
}

// Discover 枚举根目录的直接子目录（按目录名字典序），逐个加载。
// 返回全部存活实例和带插件名的失败列表，调用方据此逐条记录日志，
// 加载永远不会静默丢失插件。
// 根目录不存在视为没有插件；其它读取失败必须整体报错，否则一次
// 临时的 IO 故障会让后续同步把整个目录当作插件全部缺席来下架。
func (l *Loader) Discover() ([]Challenge, []LoadFailure, error) {
	var (
		loaded   []Challenge
		failures []LoadFailure
	)

	entries, err := os.ReadDir(l.Root)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Log.Warn("challenges directory absent",
				zap.String("root", l.Root), zap.Error(err))
			return loaded, failures, nil
		}
		return nil, nil, fmt.Errorf("read challenges root %s: %w", l.Root, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, DisablePrefix) {
			continue
		}

		ch, err := l.load(name)
		if err != nil {
			failures = append(failures, LoadFailure{Plugin: name, Err: err})
			logger.Log.Warn("challenge skipped",
				zap.String("plugin", name), zap.Error(err))
			continue
		}

		loaded = append(loaded, ch)
		logger.Log.Info("challenge loaded",
			zap.String("plugin", name), zap.String("slug", ch.Slug()))
	}

	logger.Log.Info("challenge discovery finished",
		zap.Int("loaded", len(loaded)), zap.Int("failed", len(failures)))
	return loaded, failures, nil
}

func (l *Loader) load(name string) (Challenge, error) {
	dir := filepath.Join(l.Root, name)

	if _, err := os.Stat(filepath.Join(dir, EntryPointFile)); err != nil {
		return nil, fmt.Errorf("%w in %s", util.ErrMissingEntryPoint, name)
	}

	ctors := Registered(name)
	switch len(ctors) {
	case 0:
		return nil, fmt.Errorf("%w: no constructor registered for %s", util.ErrContractResolution, name)
	case 1:
	default:
		// 多个候选时不做任何猜测，确定性地全部弃用
		return nil, fmt.Errorf("%w: %d constructors registered for %s", util.ErrContractResolution, len(ctors), name)
	}

	ch, err := l.instantiate(ctors[0], dir)
	if err != nil {
		return nil, err
	}

	if v, ok := ch.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	if err := ch.SetupStorage(l.DB); err != nil {
		return nil, fmt.Errorf("%w: setup storage: %v", util.ErrLoadFailure, err)
	}

	return ch, nil
}

// instantiate 在恢复屏障内运行构造函数，插件代码的 panic 被捕获为
// 该插件自己的加载失败，宿主进程不受影响。
func (l *Loader) instantiate(ctor Constructor, dir string) (ch Challenge, err error) {
	defer func() {
		if r := recover(); r != nil {
			ch = nil
			err = fmt.Errorf("%w: constructor panic: %v", util.ErrLoadFailure, r)
		}
	}()

	ch, err = ctor(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrLoadFailure, err)
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: constructor returned nil", util.ErrLoadFailure)
	}
	return ch, nil
}
