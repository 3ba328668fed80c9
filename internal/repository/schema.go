package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSchema는 필요한 테이블을 생성합니다. (IF NOT EXISTS라 여러 번 호출해도 안전)
func CreateSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("스키마 생성 실패: %w", err)
	}
	return nil
}

const schema = `
-- 수술방 상태 테이블 (방 1개 = 행 1개, 방 집합은 설정으로 고정)
CREATE TABLE IF NOT EXISTS rooms (
    room_id     TEXT PRIMARY KEY,
    status      TEXT NOT NULL,
    morning     TEXT NOT NULL DEFAULT '',
    lunch       TEXT NOT NULL DEFAULT '',
    afternoon   TEXT NOT NULL DEFAULT '',
    last_update TEXT NOT NULL DEFAULT '',
    version     INTEGER NOT NULL DEFAULT 0
);

-- 공지사항 (싱글턴 행: id=1 고정)
CREATE TABLE IF NOT EXISTS board_notice (
    id          INTEGER PRIMARY KEY CHECK (id = 1),
    contents    TEXT NOT NULL DEFAULT '',
    last_update TEXT NOT NULL DEFAULT ''
);

-- 스케줄러 마커 등 스칼라 값 저장 (key-value)
CREATE TABLE IF NOT EXISTS board_markers (
    marker_key   TEXT PRIMARY KEY,
    marker_value TEXT NOT NULL
);
`
