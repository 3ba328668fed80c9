package notice

import (
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

// Store는 공지사항 싱글턴 행의 DB 로직을 관리합니다.
type Store struct {
	db    *sqlx.DB
	clock clockwork.Clock
}

// NewStore는 새 Store를 생성합니다.
func NewStore(db *sqlx.DB, clock clockwork.Clock) *Store {
	return &Store{db: db, clock: clock}
}

// Get은 현재 공지를 반환합니다. 행이 없으면 빈 공지를 반환하며 에러가 아닙니다.
func (s *Store) Get() (*Notice, error) {
	var n Notice
	err := s.db.Get(&n, `SELECT contents, last_update FROM board_notice WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return &Notice{}, nil
	}
	if err != nil {
		log.Printf("[ERROR] 공지 조회 DB 에러: %v", err)
		return nil, err
	}
	return &n, nil
}

// Set은 공지 내용을 diff-then-write로 저장합니다.
// 내용이 저장된 값과 같으면 아무것도 하지 않고(타임스탬프 유지) false를 반환합니다.
func (s *Store) Set(contents string) (bool, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// 행이 없으면 빈 공지로 취급합니다. 그래야 빈 내용 저장이
	// 첫 기동 직후에도 no-op이 되어 타임스탬프가 움직이지 않습니다.
	var cur Notice
	err = tx.Get(&cur, `SELECT contents, last_update FROM board_notice WHERE id = 1`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Printf("[ERROR] 공지 조회 실패: %v", err)
		return false, err
	}
	if cur.Contents == contents {
		return false, nil
	}

	now := s.clock.Now().Format("15:04")
	_, err = tx.Exec(`
		INSERT INTO board_notice (id, contents, last_update) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET contents = excluded.contents, last_update = excluded.last_update
	`, contents, now)
	if err != nil {
		log.Printf("[ERROR] 공지 저장 실패: %v", err)
		return false, err
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[ERROR] 공지 저장 커밋 실패: %v", err)
		return false, err
	}
	return true, nil
}
