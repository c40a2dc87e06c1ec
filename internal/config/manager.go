package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/volkeep/volkeep/pkg/models"
)

const (
	DefaultRetentionDays = 30
	DefaultHelperImage   = "alpine:latest"
)

type ConfigManager struct {
	configPath string
	config     *models.GlobalConfig
}

func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return NewConfigManagerAt(filepath.Join(homeDir, ".volkeep", "config.toml"))
}

func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath: configPath,
	}

	if err := cm.Load(); err != nil {
		if os.IsNotExist(err) {
			// first run: persist the defaults so the operator has a
			// file to edit
			cm.config = defaultConfig(filepath.Dir(configPath))
			if err := cm.Save(); err != nil {
				return nil, err
			}
			return cm, nil
		}
		return nil, err
	}

	return cm, nil
}

func (cm *ConfigManager) Load() error {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return err
	}

	// decode over the defaults: absent keys keep their default while an
	// explicit retention_days = 0 survives as "retention disabled"
	config := defaultConfig(filepath.Dir(cm.configPath))
	if _, err := toml.DecodeFile(cm.configPath, config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	applyDefaults(config, filepath.Dir(cm.configPath))

	cm.config = config
	return nil
}

func (cm *ConfigManager) Save() error {
	dir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(cm.configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cm.config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

func (cm *ConfigManager) GetConfig() *models.GlobalConfig {
	return cm.config
}

func defaultConfig(baseDir string) *models.GlobalConfig {
	cfg := &models.GlobalConfig{}
	cfg.Backup.RetentionDays = DefaultRetentionDays
	applyDefaults(cfg, baseDir)
	return cfg
}

// applyDefaults fills keys whose zero value cannot be a deliberate choice.
// RetentionDays is not among them: its default is seeded before decode.
func applyDefaults(cfg *models.GlobalConfig, baseDir string) {
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = filepath.Join(baseDir, "archives")
	}
	if cfg.Store.LogPath == "" {
		cfg.Store.LogPath = filepath.Join(baseDir, "volkeep.log")
	}
	if cfg.Backup.HelperImage == "" {
		cfg.Backup.HelperImage = DefaultHelperImage
	}
	if cfg.Remote.StorePath == "" && cfg.Remote.User != "" {
		cfg.Remote.StorePath = filepath.Join("/home", cfg.Remote.User, ".volkeep", "archives")
	}
}
