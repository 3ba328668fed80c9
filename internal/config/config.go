package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// 근무 기록(오전/점심/오후) 필드의 입력 모드입니다.
const (
	ShiftNoteModeFree   = "free"   // 자유 텍스트
	ShiftNoteModeTagged = "tagged" // 고정 태그 목록만 허용
)

// Zone은 대시보드의 한 구역(A 구역, B 구역 등)입니다.
type Zone struct {
	Name  string   `yaml:"name"`
	Rooms []string `yaml:"rooms"`
}

// StatusOption은 수술방 상태 값 1개와 화면 표시용 라벨입니다.
// (저장소에는 Value가 기록되고, Label은 뷰에서만 사용됩니다)
type StatusOption struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Config는 기동 시 1회 로드되는 정적 설정입니다.
// (방 목록/상태 도메인은 런타임에 변하지 않습니다)
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`

	Board struct {
		Zones              []Zone         `yaml:"zones"`
		Statuses           []StatusOption `yaml:"statuses"`
		ShiftNoteMode      string         `yaml:"shift_note_mode"`
		ShiftTags          []string       `yaml:"shift_tags"`
		PollIntervalSec    int            `yaml:"poll_interval_sec"`
		ResetHour          int            `yaml:"reset_hour"`
		ClearNoticeOnReset bool           `yaml:"clear_notice_on_reset"`
		SessionTTLMin      int            `yaml:"session_ttl_min"`
	} `yaml:"board"`

	Slack struct {
		Channel string `yaml:"channel"` // 비어 있으면 Slack 발송 기능 비활성화
	} `yaml:"slack"`
}

// Default는 원 배포처(JNUH 수술부)의 설정을 반환합니다.
func Default() *Config {
	var c Config
	c.Server.Port = 3000
	c.DB.Path = "./data/orboard.db"
	c.Board.Zones = []Zone{
		{Name: "A 구역", Rooms: []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"}},
		{Name: "B / C / 기타", Rooms: []string{"B1", "B2", "B3", "B4", "C2", "Angio", "회복실"}},
	}
	c.Board.Statuses = []StatusOption{
		{Value: "OPERATING", Label: "▶ 수술"},
		{Value: "WAITING", Label: "Ⅱ 대기"},
		{Value: "CLOSED", Label: "■ 종료"},
	}
	c.Board.ShiftNoteMode = ShiftNoteModeFree
	c.Board.PollIntervalSec = 2
	c.Board.ResetHour = 7
	c.Board.ClearNoticeOnReset = false
	c.Board.SessionTTLMin = 720
	return &c
}

// Load는 YAML 설정 파일을 읽고 기본값을 채운 뒤 검증합니다.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
	}

	c.ApplyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv는 배포 환경용 환경변수 오버라이드를 적용합니다.
// 설정 파일 없이 기본값으로 기동하는 경로에서도 호출해야 합니다.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("ORBOARD_DB"); v != "" {
		c.DB.Path = v
	}
}

// Validate는 도메인 불변식(방 목록 비어있지 않음, 중복 없음 등)을 확인합니다.
func (c *Config) Validate() error {
	rooms := c.AllRooms()
	if len(rooms) == 0 {
		return fmt.Errorf("설정 오류: 방 목록이 비어 있습니다")
	}
	seen := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		if r == "" {
			return fmt.Errorf("설정 오류: 빈 방 이름이 있습니다")
		}
		if seen[r] {
			return fmt.Errorf("설정 오류: 방 이름 중복 (%s)", r)
		}
		seen[r] = true
	}
	if len(c.Board.Statuses) == 0 {
		return fmt.Errorf("설정 오류: 상태 목록이 비어 있습니다")
	}
	switch c.Board.ShiftNoteMode {
	case ShiftNoteModeFree:
	case ShiftNoteModeTagged:
		if len(c.Board.ShiftTags) == 0 {
			return fmt.Errorf("설정 오류: tagged 모드는 shift_tags가 필요합니다")
		}
	default:
		return fmt.Errorf("설정 오류: shift_note_mode는 free 또는 tagged만 가능합니다 (%s)", c.Board.ShiftNoteMode)
	}
	if c.Board.ResetHour < 0 || c.Board.ResetHour > 23 {
		return fmt.Errorf("설정 오류: reset_hour는 0~23 사이여야 합니다 (%d)", c.Board.ResetHour)
	}
	if c.Board.PollIntervalSec < 1 {
		return fmt.Errorf("설정 오류: poll_interval_sec는 1 이상이어야 합니다 (%d)", c.Board.PollIntervalSec)
	}
	return nil
}

// AllRooms는 구역 순서대로 전체 방 ID 목록을 반환합니다.
func (c *Config) AllRooms() []string {
	var rooms []string
	for _, z := range c.Board.Zones {
		rooms = append(rooms, z.Rooms...)
	}
	return rooms
}

// HasRoom은 방 ID가 설정된 목록에 있는지 확인합니다.
func (c *Config) HasRoom(id string) bool {
	for _, r := range c.AllRooms() {
		if r == id {
			return true
		}
	}
	return false
}

// DefaultStatus는 리셋/신규 생성 시 사용할 기본 상태 값입니다. (목록의 첫 항목)
func (c *Config) DefaultStatus() string {
	return c.Board.Statuses[0].Value
}

// IsValidStatus는 상태 값이 설정된 도메인에 속하는지 확인합니다.
func (c *Config) IsValidStatus(v string) bool {
	for _, s := range c.Board.Statuses {
		if s.Value == v {
			return true
		}
	}
	return false
}

// IsValidShiftTag는 tagged 모드에서 허용되는 값인지 확인합니다. (빈 값은 항상 허용)
func (c *Config) IsValidShiftTag(v string) bool {
	if v == "" {
		return true
	}
	for _, t := range c.Board.ShiftTags {
		if t == v {
			return true
		}
	}
	return false
}
