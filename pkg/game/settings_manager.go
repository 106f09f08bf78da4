package game

import (
	"fmt"

	"github.com/gonewx/gridworld/pkg/camera"
	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ViewSettings 持久化的视图设置
// 退出时保存，下次启动时恢复摄像机位置和缩放
type ViewSettings struct {
	Zoom     float64 `yaml:"zoom"`     // 缩放倍数
	CellSize float64 `yaml:"cellSize"` // 格子边长（像素）
	CameraX  float64 `yaml:"cameraX"`  // 摄像机世界坐标
	CameraY  float64 `yaml:"cameraY"`
	CameraZ  int     `yaml:"cameraZ"`

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultViewSettings 返回默认设置
func DefaultViewSettings() *ViewSettings {
	return &ViewSettings{
		Zoom:     1,
		CellSize: 32,
	}
}

// Camera 把设置转换为摄像机
func (v *ViewSettings) Camera() camera.Camera {
	return camera.Camera{X: v.CameraX, Y: v.CameraY, Z: v.CameraZ, Zoom: v.Zoom}
}

// SettingsManager 设置管理器
// 负责视图设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ViewSettings  // 当前设置
	log          *zap.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "view"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//   - log: 日志记录器，可为 nil
//
// 加载失败不是致命错误，记录警告后使用默认设置。
func NewSettingsManager(gdataManager *gdata.Manager, log *zap.Logger) *SettingsManager {
	if log == nil {
		log = zap.NewNop()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultViewSettings(),
		log:          log.Named("settings"),
	}

	if err := sm.Load(); err != nil {
		sm.log.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
//
// 返回：
//   - error: 如果读取或反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultViewSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultViewSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultViewSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultViewSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultViewSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.Zoom <= 0 {
		loaded.Zoom = 1
	}
	if loaded.CellSize <= 0 {
		loaded.CellSize = DefaultViewSettings().CellSize
	}

	sm.settings = loaded
	sm.log.Debug("settings loaded", zap.Float64("zoom", loaded.Zoom), zap.Float64("cellSize", loaded.CellSize))
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.log.Debug("settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewSettings {
	return sm.settings
}

// Persistent 是否能够持久化
func (sm *SettingsManager) Persistent() bool {
	return sm.gdataManager != nil
}

// SetCamera 记录摄像机位置和缩放
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetCamera(cam camera.Camera) {
	sm.settings.CameraX = cam.X
	sm.settings.CameraY = cam.Y
	sm.settings.CameraZ = cam.Z
	sm.settings.Zoom = cam.EffectiveZoom()
}

// SetCellSize 设置格子边长，非正数被忽略
func (sm *SettingsManager) SetCellSize(size float64) {
	if size > 0 {
		sm.settings.CellSize = size
	}
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}
