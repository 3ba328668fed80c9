package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.AllRooms(), 14)
	assert.Equal(t, "OPERATING", cfg.DefaultStatus())
	assert.True(t, cfg.HasRoom("회복실"))
	assert.False(t, cfg.HasRoom("Z9"))
	assert.True(t, cfg.IsValidStatus("WAITING"))
	assert.False(t, cfg.IsValidStatus("수술"))
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
board:
  zones:
    - name: "테스트 구역"
      rooms: [R1, R2]
  reset_hour: 6
  poll_interval_sec: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"R1", "R2"}, cfg.AllRooms())
	assert.Equal(t, 6, cfg.Board.ResetHour)
	assert.Equal(t, 5, cfg.Board.PollIntervalSec)
	// 명시하지 않은 항목은 기본값 유지
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Len(t, cfg.Board.Statuses, 3)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "없는파일.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o644))

	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("ORBOARD_DB", "/tmp/다른경로.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/tmp/다른경로.db", cfg.DB.Path)
}

// 설정 파일 없이 기본값으로 기동하는 경로에서도 환경변수가 적용되어야 합니다.
func TestApplyEnv_OnDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("ORBOARD_DB", "/tmp/다른경로.db")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/tmp/다른경로.db", cfg.DB.Path)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"방 목록 없음", func(c *Config) { c.Board.Zones = nil }},
		{"방 이름 중복", func(c *Config) {
			c.Board.Zones = append(c.Board.Zones, Zone{Name: "중복", Rooms: []string{"A1"}})
		}},
		{"빈 방 이름", func(c *Config) { c.Board.Zones[0].Rooms[0] = "" }},
		{"상태 목록 없음", func(c *Config) { c.Board.Statuses = nil }},
		{"리셋 시각 범위 밖", func(c *Config) { c.Board.ResetHour = 24 }},
		{"폴링 주기 0", func(c *Config) { c.Board.PollIntervalSec = 0 }},
		{"모드 오타", func(c *Config) { c.Board.ShiftNoteMode = "freeform" }},
		{"tagged인데 태그 없음", func(c *Config) {
			c.Board.ShiftNoteMode = ShiftNoteModeTagged
			c.Board.ShiftTags = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
