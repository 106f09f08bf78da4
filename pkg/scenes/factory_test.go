package scenes

import (
	"testing"
	"testing/fstest"

	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/embedded"
	"github.com/gonewx/gridworld/pkg/game"
)

func initTestEmbedded(t *testing.T) {
	t.Helper()
	embedded.Init(fstest.MapFS{
		"data/config.toml": {Data: []byte(`
[view]
follow_factor = 1.0

[map]
path = "data/maps/demo.yaml"

[animation]
script = "data/anim/player.yaml"

[storage]
app_name = ""
`)},
		"data/maps/demo.yaml":   {Data: []byte(sceneMapYAML)},
		"data/anim/player.yaml": {Data: []byte(sceneMachineYAML)},
	})
	// 在空目录中运行，确保读取的是嵌入资源
	t.Chdir(t.TempDir())
}

// TestLoadConfigEmbedded 测试从嵌入资源读取默认配置
func TestLoadConfigEmbedded(t *testing.T) {
	initTestEmbedded(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.View.FollowFactor != 1 {
		t.Errorf("Expected follow_factor from the embedded file, got %v", cfg.View.FollowFactor)
	}
	if cfg.View.CellSize != 32 {
		t.Errorf("Unset values should keep defaults, got cell_size %v", cfg.View.CellSize)
	}

	if _, err := LoadConfig("missing.toml"); err == nil {
		t.Error("Expected error for a missing config file")
	}
}

// TestLoadResources 测试地图与动画规则的加载
func TestLoadResources(t *testing.T) {
	initTestEmbedded(t)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	res, err := LoadResources(cfg, "")
	if err != nil {
		t.Fatalf("LoadResources failed: %v", err)
	}
	if res.Map.Name != "scene" {
		t.Errorf("Unexpected map %q", res.Map.Name)
	}
	if res.Machine == nil || len(res.Machine.Rules) != 2 {
		t.Errorf("Expected the scripted machine, got %+v", res.Machine)
	}

	cfg.Animation.Script = ""
	res, err = LoadResources(cfg, "")
	if err != nil {
		t.Fatalf("LoadResources failed: %v", err)
	}
	if res.Machine != nil {
		t.Error("Empty script should select built-in rules")
	}

	if _, err := LoadResources(cfg, "data/maps/nowhere.yaml"); err == nil {
		t.Error("Expected error for a missing map")
	}
}

// TestFactory 测试场景工厂与场景管理器协作
func TestFactory(t *testing.T) {
	initTestEmbedded(t)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	settings := OpenSettings(cfg, nil)
	if settings.Persistent() {
		t.Error("Empty app_name should disable persistence")
	}

	sm := game.NewSceneManager(nil)
	sm.SetSceneFactory(NewFactory(cfg, settings, &InputQueue{}, nil))
	if err := sm.LoadMap(""); err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}
	first, ok := sm.GetCurrentScene().(*MapScene)
	if !ok {
		t.Fatalf("Expected *MapScene, got %T", sm.GetCurrentScene())
	}

	if err := sm.LoadMap("data/maps/nowhere.yaml"); err == nil {
		t.Error("Expected error for a missing map")
	}
	if sm.GetCurrentScene() != first {
		t.Error("A failed load should keep the current scene")
	}

	// 重新加载同一地图会关闭旧场景
	if err := sm.LoadMap(""); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !first.Closed() {
		t.Error("The replaced scene should be closed")
	}
	sm.Close()
}

// TestOpenSettingsPersistent 测试配置了 app_name 时使用 gdata 存储
func TestOpenSettingsPersistent(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	cfg := config.Defaults()
	cfg.Storage.AppName = "test_open_settings"
	if !OpenSettings(cfg, nil).Persistent() {
		t.Error("Expected persistent settings")
	}
}
