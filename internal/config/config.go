// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"safari-connect/internal/responder"
)

const EnvPrefix = "SAFARI"

type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Database  DatabaseConfig    `mapstructure:"database"`
	Contact   responder.Contact `mapstructure:"contact"`
	Chat      ChatConfig        `mapstructure:"chat"`
	Inventory InventoryConfig   `mapstructure:"inventory"`
	Notify    NotifyConfig      `mapstructure:"notify"`
	Admin     AdminConfig       `mapstructure:"admin"`
	CORS      CORSConfig        `mapstructure:"cors"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
	Index     string `mapstructure:"index"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ChatConfig struct {
	RepliesFile    string        `mapstructure:"replies_file"`
	WatchReplies   bool          `mapstructure:"watch_replies"`
	TypingDelayMin time.Duration `mapstructure:"typing_delay_min"`
	TypingDelayMax time.Duration `mapstructure:"typing_delay_max"`
	LLM            LLMConfig     `mapstructure:"llm"`
}

type LLMConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type InventoryConfig struct {
	Timezone             string        `mapstructure:"timezone"`
	DecrementInterval    time.Duration `mapstructure:"decrement_interval"`
	RolloverInterval     time.Duration `mapstructure:"rollover_interval"`
	DecrementProbability float64       `mapstructure:"decrement_probability"`
	ViewWindow           time.Duration `mapstructure:"view_window"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID string `mapstructure:"chat_id"`
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != ""
}

type DiscordConfig struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

func (d DiscordConfig) Enabled() bool {
	return d.Token != "" && d.ChannelID != ""
}

type AdminConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SetDefaults registers every key so environment variables can override
// values that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "./web/static")
	v.SetDefault("server.index", "./web/templates/index.html")
	v.SetDefault("database.path", "./safari.db")
	v.SetDefault("contact.phone", "+255 754 000 000")
	v.SetDefault("contact.whatsapp_number", "+255754000000")
	v.SetDefault("chat.replies_file", "")
	v.SetDefault("chat.watch_replies", false)
	v.SetDefault("chat.typing_delay_min", time.Second)
	v.SetDefault("chat.typing_delay_max", 2*time.Second)
	v.SetDefault("chat.llm.enabled", false)
	v.SetDefault("chat.llm.url", "http://localhost:11434")
	v.SetDefault("chat.llm.model", "llama3.2")
	v.SetDefault("chat.llm.timeout", 20*time.Second)
	v.SetDefault("inventory.timezone", "Local")
	v.SetDefault("inventory.decrement_interval", 30*time.Second)
	v.SetDefault("inventory.rollover_interval", 60*time.Second)
	v.SetDefault("inventory.decrement_probability", 0.05)
	v.SetDefault("inventory.view_window", 2*time.Minute)
	v.SetDefault("notify.telegram.token", "")
	v.SetDefault("notify.telegram.chat_id", "")
	v.SetDefault("notify.discord.token", "")
	v.SetDefault("notify.discord.channel_id", "")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// New returns a viper instance with defaults and SAFARI_* environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Chat.TypingDelayMin < 0 || c.Chat.TypingDelayMax < c.Chat.TypingDelayMin {
		errs = append(errs, errors.New("chat typing delay range is invalid"))
	}
	if c.Chat.WatchReplies && c.Chat.RepliesFile == "" {
		errs = append(errs, errors.New("chat.watch_replies needs chat.replies_file"))
	}
	if c.Chat.LLM.Enabled && (c.Chat.LLM.URL == "" || c.Chat.LLM.Model == "") {
		errs = append(errs, errors.New("chat.llm.url and chat.llm.model are required when the model is enabled"))
	}
	if p := c.Inventory.DecrementProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("inventory.decrement_probability %v outside [0, 1]", p))
	}
	if c.Inventory.DecrementInterval <= 0 || c.Inventory.RolloverInterval <= 0 {
		errs = append(errs, errors.New("inventory intervals must be positive"))
	}
	if _, err := c.Inventory.Location(); err != nil {
		errs = append(errs, err)
	}
	if (c.Notify.Telegram.Token == "") != (c.Notify.Telegram.ChatID == "") {
		errs = append(errs, errors.New("notify.telegram needs both token and chat_id"))
	}
	if (c.Notify.Discord.Token == "") != (c.Notify.Discord.ChannelID == "") {
		errs = append(errs, errors.New("notify.discord needs both token and channel_id"))
	}
	return errors.Join(errs...)
}

// Location resolves the inventory time zone; "Local" and "" mean the process zone.
func (c InventoryConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("inventory.timezone: %w", err)
	}
	return loc, nil
}
