package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-fsmkit/pkg/logger"
)

// ErrNotFound 默认路径下没有找到配置文件
var ErrNotFound = errors.New("no valid config file found")

// Manager 通用配置管理器，T 为配置结构体类型
type Manager[T any] struct {
	opts       *options
	defaults   T          // 构造时的值，重载时以它为起点
	instance   *T         // 当前配置
	configPath string     // 配置文件路径
	serializer Serializer // 当前使用的序列化器
	once       sync.Once  // 确保配置只加载一次
	mu         sync.RWMutex
	loadErr    error

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
	watchQuit chan struct{}
	closeOnce sync.Once

	callbacks []func(old, new *T)
}

// NewManager 创建配置管理器，cfg 中已填写的字段作为默认值
func NewManager[T any](cfg *T, opts ...Option) *Manager[T] {
	if cfg == nil {
		panic("config instance cannot be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Manager[T]{
		opts:       o,
		defaults:   *cfg,
		instance:   cfg,
		serializer: o.serializer,
		watchQuit:  make(chan struct{}),
	}
}

// Load 加载配置文件，customPath 为空时按默认路径查找
func (m *Manager[T]) Load(customPath string) error {
	m.once.Do(func() {
		var err error

		m.mu.Lock()
		defer m.mu.Unlock()

		if customPath != "" {
			if err = validateConfigPath(customPath); err != nil {
				m.loadErr = fmt.Errorf("invalid custom config path: %w", err)
				return
			}
			m.configPath = customPath
			m.chooseSerializer(customPath)
		} else if m.configPath, err = m.findDefaultConfigPath(); err != nil {
			m.loadErr = fmt.Errorf("default config not found: %w", err)
			return
		}

		if err = m.parseConfigFile(m.instance); err != nil {
			m.loadErr = fmt.Errorf("parse config failed: %w", err)
			return
		}

		if err = applyEnvOverrides(m.instance); err != nil {
			m.loadErr = fmt.Errorf("apply env overrides failed: %w", err)
			return
		}

		if m.opts.enableWatch {
			if err = m.startWatch(); err != nil {
				m.opts.log.Warn("config watch disabled", logger.String("path", m.configPath), logger.Err(err))
			}
		}
	})

	return m.loadErr
}

// Get 获取当前配置
func (m *Manager[T]) Get() (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.configPath == "" {
		return nil, errors.New("config not loaded, call Load first")
	}
	return m.instance, nil
}

// Path 返回实际加载的配置文件路径
func (m *Manager[T]) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configPath
}

// Save 保存当前配置到文件（先写临时文件再替换）
func (m *Manager[T]) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.configPath == "" {
		return errors.New("config not loaded")
	}

	data, err := m.serializer.Marshal(m.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	tmpPath := m.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}
	if err := os.Rename(tmpPath, m.configPath); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}
	return nil
}

// Reload 重新读取配置文件，成功后触发 OnChange 回调
func (m *Manager[T]) Reload() error {
	m.mu.Lock()

	if m.configPath == "" {
		m.mu.Unlock()
		return errors.New("config path not initialized")
	}
	if err := validateConfigPath(m.configPath); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("invalid config path: %w", err)
	}

	next := new(T)
	*next = m.defaults
	if err := m.parseConfigFile(next); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := applyEnvOverrides(next); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("apply env overrides failed: %w", err)
	}

	old := m.instance
	m.instance = next
	m.loadErr = nil

	callbacks := make([]func(old, new *T), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	// 回调在锁外执行
	for _, callback := range callbacks {
		callback(old, next)
	}
	return nil
}

// EnableWatch 动态启用/禁用配置监听
func (m *Manager[T]) EnableWatch(enable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opts.enableWatch = enable
	if !enable {
		m.stopWatch()
		return nil
	}
	if m.configPath == "" {
		return errors.New("config not loaded")
	}
	return m.startWatch()
}

// Close 停止监听
func (m *Manager[T]) Close() {
	m.mu.Lock()
	m.stopWatch()
	m.mu.Unlock()
	m.closeOnce.Do(func() { close(m.watchQuit) })
}

// OnChange 注册配置变更回调
func (m *Manager[T]) OnChange(callback func(old, new *T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

/* ------------------------------ 内部方法 ------------------------------ */

// chooseSerializer 强制格式 > 后缀识别 > 默认
func (m *Manager[T]) chooseSerializer(path string) {
	if m.opts.forceFormat != nil {
		m.serializer = m.opts.forceFormat
		return
	}

	ext := filepath.Ext(path)
	for _, format := range m.opts.supportedFormats {
		if format.GetFileExt() == ext {
			m.serializer = format
			return
		}
	}
}

func (m *Manager[T]) findDefaultConfigPath() (string, error) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	for _, pathTpl := range m.opts.defaultPaths {
		basePath := replacePathVars(pathTpl, map[string]string{
			"AppName": m.opts.appName,
			"ExecDir": execDir,
		})

		// 先尝试无后缀文件
		if err := validateConfigPath(basePath); err == nil {
			m.chooseSerializer(basePath)
			return basePath, nil
		}

		for _, format := range m.opts.supportedFormats {
			fullPath := basePath + format.GetFileExt()
			if err := validateConfigPath(fullPath); err == nil {
				m.serializer = format
				if m.opts.forceFormat != nil {
					m.serializer = m.opts.forceFormat
				}
				return fullPath, nil
			}
		}
	}

	return "", fmt.Errorf("%w (tried %d default paths)", ErrNotFound, len(m.opts.defaultPaths))
}

func (m *Manager[T]) parseConfigFile(dst *T) error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("read file failed: %w", err)
	}
	if err := m.serializer.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal failed (%s): %w", m.serializer.GetName(), err)
	}
	return nil
}

// startWatch 监听配置文件所在目录，兼容编辑器"写临时文件再改名"的保存方式。调用方持有 m.mu
func (m *Manager[T]) startWatch() error {
	var err error
	m.watchOnce.Do(func() {
		var w *fsnotify.Watcher
		if w, err = fsnotify.NewWatcher(); err != nil {
			err = fmt.Errorf("create watcher failed: %w", err)
			return
		}
		if err = w.Add(filepath.Dir(m.configPath)); err != nil {
			_ = w.Close()
			err = fmt.Errorf("add watch path failed: %w", err)
			return
		}
		m.watcher = w
		go m.watchLoop(w, filepath.Clean(m.configPath))
	})
	if err != nil {
		m.watchOnce = sync.Once{}
	}
	return err
}

// stopWatch 调用方持有 m.mu
func (m *Manager[T]) stopWatch() {
	m.watchOnce = sync.Once{}
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
}

func (m *Manager[T]) watchLoop(w *fsnotify.Watcher, target string) {
	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(m.opts.watchDebounceInterval)
			}

		case <-debounce.C:
			if err := m.Reload(); err != nil {
				m.opts.log.Warn("config auto reload failed", logger.String("path", target), logger.Err(err))
			} else {
				m.opts.log.Info("config auto reloaded", logger.String("path", target))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.opts.log.Warn("config watch error", logger.Err(err))

		case <-m.watchQuit:
			return
		}
	}
}
