package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	NATS   NATSConfig   `mapstructure:"nats"`
	Health HealthConfig `mapstructure:"health"`
	Room   RoomConfig   `mapstructure:"room"`
	Game   GameConfig   `mapstructure:"game"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	WorkerCount    int           `mapstructure:"worker_count"`
	BufferSize     int           `mapstructure:"buffer_size"`
}

type HealthConfig struct {
	Addr string `mapstructure:"addr"`
}

type RoomConfig struct {
	MaxPlayers         int           `mapstructure:"max_players"`
	CodeLength         int           `mapstructure:"code_length"`
	EvictTimeout       time.Duration `mapstructure:"evict_timeout"`
	EvictCheckInterval time.Duration `mapstructure:"evict_check_interval"`
}

type GameConfig struct {
	// StartGraceDelay 开局广播到第一回合之间的缓冲时间
	StartGraceDelay time.Duration `mapstructure:"start_grace_delay"`
	// RevealDelay 回合结算广播到下一回合之间的展示时间
	RevealDelay time.Duration `mapstructure:"reveal_delay"`
	// AllAnsweredDelay 全员作答后提前结束回合的压缩延迟
	AllAnsweredDelay time.Duration `mapstructure:"all_answered_delay"`
	// TimerSafetyMargin 回合超时定时器在客户端计时之外的安全余量
	TimerSafetyMargin time.Duration `mapstructure:"timer_safety_margin"`
	// ChoiceCount 选择题模式每回合的选项数量
	ChoiceCount int `mapstructure:"choice_count"`
}

// Load 从指定路径加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.NATS.ConnectTimeout <= 0 {
		cfg.NATS.ConnectTimeout = 10 * time.Second
	}
	if cfg.NATS.WorkerCount <= 0 {
		cfg.NATS.WorkerCount = 8
	}
	if cfg.NATS.BufferSize <= 0 {
		cfg.NATS.BufferSize = 256
	}
	if cfg.Health.Addr == "" {
		cfg.Health.Addr = ":8081"
	}
	if cfg.Room.MaxPlayers <= 0 {
		cfg.Room.MaxPlayers = 8
	}
	if cfg.Room.CodeLength <= 0 {
		cfg.Room.CodeLength = 6
	}
	if cfg.Room.EvictTimeout <= 0 {
		cfg.Room.EvictTimeout = 10 * time.Minute
	}
	if cfg.Room.EvictCheckInterval <= 0 {
		cfg.Room.EvictCheckInterval = time.Minute
	}
	if cfg.Game.StartGraceDelay <= 0 {
		cfg.Game.StartGraceDelay = 3 * time.Second
	}
	if cfg.Game.RevealDelay <= 0 {
		cfg.Game.RevealDelay = 5 * time.Second
	}
	if cfg.Game.AllAnsweredDelay <= 0 {
		cfg.Game.AllAnsweredDelay = 2 * time.Second
	}
	if cfg.Game.TimerSafetyMargin <= 0 {
		cfg.Game.TimerSafetyMargin = 2 * time.Second
	}
	if cfg.Game.ChoiceCount <= 0 {
		cfg.Game.ChoiceCount = 4
	}
}
