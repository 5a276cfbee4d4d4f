package configwatcher

import (
	"path/filepath"
	"testing"
	"time"

	"flagdojo_backend/internal/config"
)

// 配置文件监听建不起来时只能返回，绝不能把进程杀掉
func TestWatchConfigReturnsOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	done := make(chan struct{})
	go func() {
		WatchConfig(path, func(*config.Config) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchConfig did not return for a missing config file")
	}
}
