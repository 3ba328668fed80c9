package viewsync

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2/middleware/session"
	log "github.com/sirupsen/logrus"

	"orboard/internal/notice"
	"orboard/internal/room"
)

// 세션에 캐시를 저장할 때 쓰는 키
const sessionKey = "viewer_cache"

// 폴링마다 확인하는 필드 목록
var allFields = []room.Field{room.FieldStatus, room.FieldMorning, room.FieldLunch, room.FieldAfternoon}

// Service는 뷰어 로컬 캐시와 권위 저장소 사이의 동기화를 담당합니다.
type Service struct{}

// NewService는 새 Service를 생성합니다.
func NewService() *Service {
	return &Service{}
}

// LoadCache는 세션에서 캐시를 복원합니다. 없거나 깨져 있으면 새 캐시를 만듭니다.
func (s *Service) LoadCache(sess *session.Session) *ViewerCache {
	raw, ok := sess.Get(sessionKey).([]byte)
	if !ok {
		return NewCache()
	}
	var c ViewerCache
	if err := json.Unmarshal(raw, &c); err != nil {
		log.Warnf("뷰어 캐시 복원 실패, 새로 만듭니다: %v", err)
		return NewCache()
	}
	if c.Rooms == nil {
		c.Rooms = make(map[string]*RoomCache)
	}
	return &c
}

// SaveCache는 캐시를 세션에 저장합니다.
func (s *Service) SaveCache(sess *session.Session, c *ViewerCache) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	sess.Set(sessionKey, raw)
	return sess.Save()
}

// Reconcile은 폴링 1회분의 동기화입니다: 모든 방의 모든 필드와 공지에 대해
// 캐시 값이 저장소 값과 다르면 저장소 값으로 덮어씁니다.
// 단, editing이 가리키는 필드(이번 요청에서 뷰어가 직접 고치고 있는 필드)는
// 건드리지 않습니다. 그 필드는 저장소 쪽으로 쓰여야 할 값이기 때문입니다.
// 반환값은 이번에 캐시가 바뀐 필드 목록 + 공지 변경 여부입니다.
func (s *Service) Reconcile(c *ViewerCache, rooms []room.Room, n *notice.Notice, editing *FieldKey) (changed []FieldKey, noticeChanged bool) {
	live := make(map[string]bool, len(rooms))

	for i := range rooms {
		r := &rooms[i]
		live[r.RoomID] = true
		rc := c.roomCache(r.RoomID)

		for _, f := range allFields {
			if editing != nil && editing.RoomID == r.RoomID && editing.Field == f {
				continue
			}
			v := r.FieldValue(f)
			if rc.Values[f] != v {
				rc.Values[f] = v
				changed = append(changed, FieldKey{RoomID: r.RoomID, Field: f})
			}
		}
		rc.Version = r.Version
	}

	// 설정에서 빠진 방의 잔존 캐시 정리 (재기동으로 방 목록이 바뀐 경우)
	for id := range c.Rooms {
		if !live[id] {
			delete(c.Rooms, id)
		}
	}

	if n != nil && c.Notice != n.Contents {
		c.Notice = n.Contents
		noticeChanged = true
	}
	return changed, noticeChanged
}

// ApplyWrite는 뷰어 자신의 쓰기가 성공한 뒤 캐시를 그 값으로 맞춥니다.
func (s *Service) ApplyWrite(c *ViewerCache, key FieldKey, value string, version int64) {
	rc := c.roomCache(key.RoomID)
	rc.Values[key.Field] = value
	rc.Version = version
}
