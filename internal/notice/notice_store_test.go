package notice

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orboard/internal/repository"
)

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	db, err := repository.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.CreateSchema(db))
	t.Cleanup(func() { db.Close() })

	clk := clockwork.NewFakeClockAt(time.Date(2025, 1, 3, 9, 0, 0, 0, time.Local))
	return NewStore(db, clk), clk
}

func TestGet_MissingRowReturnsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	n, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, n.Contents)
	assert.Empty(t, n.LastUpdate)
}

func TestSet_StampsOnlyOnChange(t *testing.T) {
	store, clk := newTestStore(t)

	changed, err := store.Set("금일 오후 회의 14시")
	require.NoError(t, err)
	assert.True(t, changed)

	n, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "09:00", n.LastUpdate)

	// 같은 내용 다시 저장 -> 타임스탬프 유지
	clk.Advance(45 * time.Minute)
	changed, err = store.Set("금일 오후 회의 14시")
	require.NoError(t, err)
	assert.False(t, changed)

	n, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "09:00", n.LastUpdate)

	// 다른 내용 -> 갱신
	changed, err = store.Set("회의 취소")
	require.NoError(t, err)
	assert.True(t, changed)

	n, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "회의 취소", n.Contents)
	assert.Equal(t, "09:45", n.LastUpdate)
}

func TestSet_EmptyOnFreshStoreIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)

	// 행이 없는 상태에서 빈 내용 저장은 변경이 아니다
	changed, err := store.Set("")
	require.NoError(t, err)
	assert.False(t, changed)

	n, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, n.Contents)
	assert.Empty(t, n.LastUpdate)
}

func TestSet_EmptyClearsContents(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Set("지워질 공지")
	require.NoError(t, err)

	changed, err := store.Set("")
	require.NoError(t, err)
	assert.True(t, changed)

	n, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, n.Contents)
}
