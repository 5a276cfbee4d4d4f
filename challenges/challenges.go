// Package challenges 汇总内置题目插件的注册。
// 每个插件包以目录名登记自己的构造函数，实际的目录扫描、
// 实例化和失败隔离由 internal/challenge 的 Loader 完成，
// 目录名前加下划线即可停用对应插件。
package challenges

import (
	csrfattack "flagdojo_backend/challenges/csrf-attack"
	pathtraversal "flagdojo_backend/challenges/path-traversal"
	sqlibasic "flagdojo_backend/challenges/sqli-basic"
	xssreflected "flagdojo_backend/challenges/xss-reflected"
	xssstored "flagdojo_backend/challenges/xss-stored"
)

// RegisterAll 在启动阶段登记全部内置插件
func RegisterAll() {
	sqlibasic.Register()
	xssreflected.Register()
	xssstored.Register()
	csrfattack.Register()
	pathtraversal.Register()
}
