package scheduler

import (
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
)

// 마지막 자동 리셋이 속한 윈도우의 날짜(YYYY-MM-DD)를 기록하는 키
const markerKey = "last_reset"

// Store는 리셋 마커의 DB 로직을 관리합니다.
type Store struct {
	db *sqlx.DB
}

// NewStore는 새 Store를 생성합니다.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// LoadMarker는 저장된 마커를 반환합니다. 없으면 빈 문자열이며 에러가 아닙니다.
func (s *Store) LoadMarker() (string, error) {
	var v string
	err := s.db.Get(&v, `SELECT marker_value FROM board_markers WHERE marker_key = ?`, markerKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		log.Printf("[ERROR] [Scheduler] 마커 조회 실패: %v", err)
		return "", err
	}
	return v, nil
}

// SaveMarker는 마커를 저장합니다. (리셋과 같은 흐름 안에서 즉시 호출되어
// 곧바로 이어지는 다음 체크가 같은 윈도우에서 재발화하지 않도록 합니다)
func (s *Store) SaveMarker(date string) error {
	_, err := s.db.Exec(`
		INSERT INTO board_markers (marker_key, marker_value) VALUES (?, ?)
		ON CONFLICT (marker_key) DO UPDATE SET marker_value = excluded.marker_value
	`, markerKey, date)
	if err != nil {
		log.Printf("[ERROR] [Scheduler] 마커 저장 실패: %v", err)
		return err
	}
	return nil
}
