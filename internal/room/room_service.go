package room

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"orboard/internal/config"
)

// 한 칸짜리 입력 위젯에 들어가는 짧은 메모의 상한 (rune 기준)
const maxNoteLen = 40

// Service는 값 검증을 담당하고 나머지는 Store에 위임합니다.
type Service struct {
	store *Store
	cfg   *config.Config
}

// NewService는 새 Service를 생성합니다.
func NewService(store *Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Board는 전체 방 테이블을 반환합니다.
func (s *Service) Board() ([]Room, error) {
	return s.store.LoadAll()
}

// Get은 방 1개를 반환합니다.
func (s *Service) Get(roomID string) (*Room, error) {
	return s.store.Get(roomID)
}

// UpdateField는 입력 값을 필드 종류에 맞게 검증한 뒤 저장합니다.
func (s *Service) UpdateField(roomID string, field Field, value string, baseVersion int64) (*UpdateResult, error) {
	value = strings.TrimSpace(value)

	switch field {
	case FieldStatus:
		if !s.cfg.IsValidStatus(value) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, value)
		}
	case FieldMorning, FieldLunch, FieldAfternoon:
		// 근무 메모: 설정에 따라 자유 텍스트 또는 고정 태그
		if s.cfg.Board.ShiftNoteMode == config.ShiftNoteModeTagged {
			if !s.cfg.IsValidShiftTag(value) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidShiftTag, value)
			}
		} else if utf8.RuneCountInString(value) > maxNoteLen {
			return nil, fmt.Errorf("%w (%d자 초과)", ErrNoteTooLong, maxNoteLen)
		}
	}

	return s.store.UpdateField(roomID, field, value, baseVersion)
}

// Reset은 전체 방을 기본값으로 되돌립니다.
func (s *Service) Reset() error {
	return s.store.ResetAll()
}
