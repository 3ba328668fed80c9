package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // 드라이버 임포트 (CGO 불필요)
)

func init() {
	// modernc 드라이버 이름("sqlite")을 sqlx의 '?' 바인딩으로 등록
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect는 임베디드 SQLite 저장소에 연결합니다.
// 프라그마:
//   - journal_mode(WAL): 읽기(폴링)와 쓰기가 서로 막지 않도록
//   - busy_timeout(5000): 일시적 잠금 경합 흡수
//   - synchronous(FULL): 커밋 반환 전 디스크 플러시 보장
//     (공지/마커처럼 작고 드문 쓰기에는 동기 내구성이 저렴합니다)
func Connect(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("데이터 디렉터리 생성 실패: %w", err)
		}
	}

	DSN := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)", path)

	db, err := sqlx.Connect("sqlite", DSN)
	if err != nil {
		return nil, err
	}

	// 단일 쓰기 커넥션: 필드 단위 read-modify-write가 항상 직렬화되도록
	db.SetMaxOpenConns(1)

	return db, nil
}
