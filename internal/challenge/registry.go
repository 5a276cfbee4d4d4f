package challenge

import "sync"

// Constructor 以插件目录为上下文实例化一个题目
type Constructor func(dir string) (Challenge, error)

// 构造函数按插件目录名登记。原实现靠运行时扫描目录内的类型，
// 这里改为每个插件包在启动阶段显式注册一次；同名注册不覆盖而是
// 累积，由 Loader 把零个或多个候选都当作可报告的解析失败。
var (
	regMu        sync.RWMutex
	constructors = make(map[string][]Constructor)
)

// Register 把插件构造函数登记到目录名下
func Register(name string, ctor Constructor) {
	regMu.Lock()
	defer regMu.Unlock()
	constructors[name] = append(constructors[name], ctor)
}

// Registered 返回目录名下的全部候选构造函数
func Registered(name string) []Constructor {
	regMu.RLock()
	defer regMu.RUnlock()
	return constructors[name]
}

// ResetRegistry 清空注册表，仅测试使用
func ResetRegistry() {
	regMu.Lock()
	defer regMu.Unlock()
	constructors = make(map[string][]Constructor)
}
