package viewsync

import (
	"github.com/google/uuid"

	"orboard/internal/room"
)

// FieldKey는 "어느 방의 어느 필드"를 가리키는 타입 키입니다.
type FieldKey struct {
	RoomID string     `json:"room_id"`
	Field  room.Field `json:"field"`
}

// RoomCache는 뷰어가 마지막으로 본 방 1개의 필드 값과 버전입니다.
type RoomCache struct {
	Values  map[room.Field]string `json:"values"`
	Version int64                 `json:"version"`
}

// ViewerCache는 접속 뷰어 1명의 로컬 캐시 전체입니다. (fiber 세션에 JSON으로 저장)
// 저장소의 사본일 뿐 권위 있는 상태가 아니며, 폴링마다 Reconcile로 맞춰집니다.
type ViewerCache struct {
	ViewerID string                `json:"viewer_id"`
	Rooms    map[string]*RoomCache `json:"rooms"`
	Notice   string                `json:"notice"`
}

// NewCache는 새 뷰어의 빈 캐시를 만듭니다.
func NewCache() *ViewerCache {
	return &ViewerCache{
		ViewerID: uuid.NewString(),
		Rooms:    make(map[string]*RoomCache),
	}
}

func (c *ViewerCache) roomCache(roomID string) *RoomCache {
	rc, ok := c.Rooms[roomID]
	if !ok {
		rc = &RoomCache{Values: make(map[room.Field]string)}
		c.Rooms[roomID] = rc
	}
	if rc.Values == nil {
		rc.Values = make(map[room.Field]string)
	}
	return rc
}

// BaseVersion은 뷰어가 마지막으로 본 방 버전을 반환합니다. (본 적 없으면 -1)
func (c *ViewerCache) BaseVersion(roomID string) int64 {
	if rc, ok := c.Rooms[roomID]; ok {
		return rc.Version
	}
	return -1
}
