// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "./safari.db", cfg.Database.Path)
	assert.Equal(t, time.Second, cfg.Chat.TypingDelayMin)
	assert.Equal(t, 2*time.Second, cfg.Chat.TypingDelayMax)
	assert.Equal(t, 30*time.Second, cfg.Inventory.DecrementInterval)
	assert.Equal(t, 60*time.Second, cfg.Inventory.RolloverInterval)
	assert.Equal(t, 0.05, cfg.Inventory.DecrementProbability)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Notify.Telegram.Enabled())

	loc, err := cfg.Inventory.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safari.yaml")
	content := `
server:
  addr: ":9090"
contact:
  phone: "+255 111 222 333"
  whatsapp_number: "+255111222333"
chat:
  typing_delay_min: 500ms
  typing_delay_max: 1500ms
inventory:
  timezone: Africa/Dar_es_Salaam
  decrement_interval: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v := New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "+255 111 222 333", cfg.Contact.Phone)
	assert.Equal(t, "+255111222333", cfg.Contact.WhatsAppNumber)
	assert.Equal(t, 500*time.Millisecond, cfg.Chat.TypingDelayMin)
	assert.Equal(t, 10*time.Second, cfg.Inventory.DecrementInterval)
	assert.Equal(t, 60*time.Second, cfg.Inventory.RolloverInterval)

	loc, err := cfg.Inventory.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Dar_es_Salaam", loc.String())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SAFARI_SERVER_ADDR", ":7070")
	t.Setenv("SAFARI_CONTACT_PHONE", "+255 999")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "+255 999", cfg.Contact.Phone)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]interface{}
		wantErr string
	}{
		{"probability", map[string]interface{}{"inventory.decrement_probability": 1.5}, "decrement_probability"},
		{"delay range", map[string]interface{}{"chat.typing_delay_min": "3s"}, "typing delay"},
		{"timezone", map[string]interface{}{"inventory.timezone": "Mars/Olympus"}, "inventory.timezone"},
		{"telegram half", map[string]interface{}{"notify.telegram.token": "abc"}, "token and chat_id"},
		{"discord half", map[string]interface{}{"notify.discord.channel_id": "42"}, "token and channel_id"},
		{"watch without file", map[string]interface{}{"chat.watch_replies": true}, "chat.replies_file"},
		{"llm", map[string]interface{}{"chat.llm.enabled": true, "chat.llm.model": ""}, "chat.llm"},
		{"interval", map[string]interface{}{"inventory.rollover_interval": "0s"}, "intervals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
