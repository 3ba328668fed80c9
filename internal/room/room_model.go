package room

import (
	"errors"
	"fmt"
)

// Field는 수술방 레코드에서 편집 가능한 필드입니다.
// ("m_"+방이름 같은 문자열 조합 키 대신 타입으로 구분합니다)
type Field string

const (
	FieldStatus    Field = "status"
	FieldMorning   Field = "morning"
	FieldLunch     Field = "lunch"
	FieldAfternoon Field = "afternoon"
)

// ParseField는 URL 등 외부 입력의 필드 이름을 검증합니다.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldStatus, FieldMorning, FieldLunch, FieldAfternoon:
		return Field(s), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, s)
}

// Room은 'rooms' 테이블의 스키마입니다.
type Room struct {
	RoomID     string `json:"room_id" db:"room_id"`
	Status     string `json:"status" db:"status"`
	Morning    string `json:"morning" db:"morning"`
	Lunch      string `json:"lunch" db:"lunch"`
	Afternoon  string `json:"afternoon" db:"afternoon"`
	LastUpdate string `json:"last_update" db:"last_update"` // HH:MM (분 단위 민원 시각)
	Version    int64  `json:"version" db:"version"`         // 필드 변경마다 1 증가 (유실 쓰기 감지용)
}

// FieldValue는 레코드에서 해당 필드 값을 꺼냅니다.
func (r *Room) FieldValue(f Field) string {
	switch f {
	case FieldStatus:
		return r.Status
	case FieldMorning:
		return r.Morning
	case FieldLunch:
		return r.Lunch
	case FieldAfternoon:
		return r.Afternoon
	}
	return ""
}

// UpdateResult는 필드 쓰기 1회의 결과입니다.
type UpdateResult struct {
	Changed    bool   `json:"changed"`
	Stale      bool   `json:"stale"` // 클라이언트가 본 버전 이후 다른 쓰기가 있었음 (LWW는 그대로 적용됨)
	LastUpdate string `json:"last_update"`
	Version    int64  `json:"version"`
}

var (
	ErrRoomNotFound    = errors.New("설정에 없는 방입니다")
	ErrUnknownField    = errors.New("알 수 없는 필드입니다")
	ErrInvalidStatus   = errors.New("허용되지 않는 상태 값입니다")
	ErrInvalidShiftTag = errors.New("허용되지 않는 근무 태그입니다")
	ErrNoteTooLong     = errors.New("메모가 너무 깁니다")

	// 손상 복구(삭제 후 재생성)가 재시도 한도를 넘었을 때.
	// 무한 재시도 대신 명시적 실패를 반환합니다.
	ErrStoreUnavailable = errors.New("저장소를 사용할 수 없습니다")
)
