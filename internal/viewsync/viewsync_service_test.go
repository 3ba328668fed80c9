package viewsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orboard/internal/notice"
	"orboard/internal/room"
)

func storeRooms() []room.Room {
	return []room.Room{
		{RoomID: "A1", Status: "OPERATING", Morning: "3건", Version: 2, LastUpdate: "09:10"},
		{RoomID: "A2", Status: "CLOSED", Version: 1, LastUpdate: "09:05"},
	}
}

func TestReconcile_FreshCacheTakesStoreValues(t *testing.T) {
	svc := NewService()
	cache := NewCache()

	changed, noticeChanged := svc.Reconcile(cache, storeRooms(), &notice.Notice{Contents: "공지"}, nil)

	assert.Contains(t, changed, FieldKey{RoomID: "A1", Field: room.FieldStatus})
	assert.Contains(t, changed, FieldKey{RoomID: "A1", Field: room.FieldMorning})
	assert.Contains(t, changed, FieldKey{RoomID: "A2", Field: room.FieldStatus})
	assert.True(t, noticeChanged)

	assert.Equal(t, "OPERATING", cache.Rooms["A1"].Values[room.FieldStatus])
	assert.Equal(t, "3건", cache.Rooms["A1"].Values[room.FieldMorning])
	assert.Equal(t, "공지", cache.Notice)
	assert.EqualValues(t, 2, cache.Rooms["A1"].Version)
}

func TestReconcile_NoChangeWhenCacheMatches(t *testing.T) {
	svc := NewService()
	cache := NewCache()

	svc.Reconcile(cache, storeRooms(), &notice.Notice{Contents: "공지"}, nil)
	changed, noticeChanged := svc.Reconcile(cache, storeRooms(), &notice.Notice{Contents: "공지"}, nil)

	assert.Empty(t, changed)
	assert.False(t, noticeChanged)
}

func TestReconcile_DoesNotClobberActivelyEditedField(t *testing.T) {
	svc := NewService()
	cache := NewCache()
	svc.Reconcile(cache, storeRooms(), nil, nil)

	// 뷰어가 A1 오전 메모를 고치는 중 + 그 사이 저장소에는 다른 값이 들어옴
	cache.Rooms["A1"].Values[room.FieldMorning] = "입력 중인 글자"
	rooms := storeRooms()
	rooms[0].Morning = "다른 뷰어의 값"
	rooms[0].Status = "WAITING"

	editing := &FieldKey{RoomID: "A1", Field: room.FieldMorning}
	changed, _ := svc.Reconcile(cache, rooms, nil, editing)

	// 편집 중인 필드는 그대로, 나머지는 저장소 값으로
	assert.Equal(t, "입력 중인 글자", cache.Rooms["A1"].Values[room.FieldMorning])
	assert.Equal(t, "WAITING", cache.Rooms["A1"].Values[room.FieldStatus])
	assert.NotContains(t, changed, *editing)
	assert.Contains(t, changed, FieldKey{RoomID: "A1", Field: room.FieldStatus})
}

func TestReconcile_DropsRoomsRemovedFromConfig(t *testing.T) {
	svc := NewService()
	cache := NewCache()
	svc.Reconcile(cache, storeRooms(), nil, nil)
	require.Contains(t, cache.Rooms, "A2")

	svc.Reconcile(cache, storeRooms()[:1], nil, nil)
	assert.NotContains(t, cache.Rooms, "A2")
	assert.Contains(t, cache.Rooms, "A1")
}

func TestBaseVersion_UnseenRoomIsMinusOne(t *testing.T) {
	cache := NewCache()
	assert.EqualValues(t, -1, cache.BaseVersion("A1"))

	NewService().Reconcile(cache, storeRooms(), nil, nil)
	assert.EqualValues(t, 2, cache.BaseVersion("A1"))
}

func TestApplyWrite_UpdatesCacheAndVersion(t *testing.T) {
	svc := NewService()
	cache := NewCache()
	svc.Reconcile(cache, storeRooms(), nil, nil)

	svc.ApplyWrite(cache, FieldKey{RoomID: "A1", Field: room.FieldStatus}, "CLOSED", 3)

	assert.Equal(t, "CLOSED", cache.Rooms["A1"].Values[room.FieldStatus])
	assert.EqualValues(t, 3, cache.Rooms["A1"].Version)
}
