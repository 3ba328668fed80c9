package notice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Slack 미설정(클라이언트 nil) 경로: 저장만 하고 전파는 건너뜁니다.
func TestService_SetWithoutSlack(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewService(store, nil, "")

	changed, err := svc.Set("  전달사항입니다  ")
	require.NoError(t, err)
	assert.True(t, changed)

	n, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "전달사항입니다", n.Contents, "앞뒤 공백은 저장 전에 제거")
}

func TestService_RejectsOversizedNotice(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewService(store, nil, "")

	_, err := svc.Set(strings.Repeat("가", maxNoticeLen+1))
	assert.ErrorIs(t, err, ErrNoticeTooLong)
}

func TestService_ClearIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewService(store, nil, "")

	_, err := svc.Set("공지")
	require.NoError(t, err)

	require.NoError(t, svc.Clear())
	require.NoError(t, svc.Clear())

	n, err := svc.Get()
	require.NoError(t, err)
	assert.Empty(t, n.Contents)
}
