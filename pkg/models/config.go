package models

type GlobalConfig struct {
	Store   StoreConfig   `toml:"store" json:"store"`
	Backup  BackupConfig  `toml:"backup" json:"backup"`
	Remote  RemoteConfig  `toml:"remote" json:"remote"`
	Runtime RuntimeConfig `toml:"runtime" json:"runtime"`
}

type StoreConfig struct {
	Dir     string `toml:"dir" json:"dir"`
	LogPath string `toml:"log_path" json:"log_path"`
}

type BackupConfig struct {
	RetentionDays int    `toml:"retention_days" json:"retention_days"`
	HelperImage   string `toml:"helper_image" json:"helper_image"`
}

type RemoteConfig struct {
	User      string `toml:"user" json:"user"`
	Address   string `toml:"address" json:"address"`
	StorePath string `toml:"store_path" json:"store_path"`
}

type RuntimeConfig struct {
	Prefer     string `toml:"prefer" json:"prefer"`
	SocketPath string `toml:"socket_path" json:"socket_path"`
}
