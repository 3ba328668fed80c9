package room

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"orboard/internal/config"
)

// 손상 복구 재시도 한도 (한도 초과 시 ErrStoreUnavailable)
const (
	loadMaxAttempts = 5
	loadRetryDelay  = 100 * time.Millisecond
)

// 내부 전용: 테이블 손상(도메인 불변식 위반). 항상 Store 안에서 복구됩니다.
var errCorruptStore = errors.New("방 테이블 손상")

// Store는 수술방 테이블의 DB 로직을 관리합니다.
// 모든 쓰기는 "읽고-비교하고-다르면 쓰기" 경로를 거칩니다.
// (변경 없는 폴링이 타임스탬프를 갱신하지 않도록 하는 핵심 규칙)
type Store struct {
	db    *sqlx.DB
	cfg   *config.Config
	clock clockwork.Clock
}

// NewStore는 새 Store를 생성합니다.
func NewStore(db *sqlx.DB, cfg *config.Config, clock clockwork.Clock) *Store {
	return &Store{db: db, cfg: cfg, clock: clock}
}

// stamp는 분 단위 민원 시각(HH:MM)을 반환합니다.
func (s *Store) stamp() string {
	return s.clock.Now().Format("15:04")
}

const selectRoomColumns = `room_id, status, morning, lunch, afternoon, last_update, version`

// LoadAll은 전체 방 테이블을 설정 순서대로 반환합니다.
//   - 테이블이 비어 있으면 기본값으로 생성합니다.
//   - 도메인 불변식(방 집합 == 설정 목록, 상태 ∈ 도메인)을 위반하면
//     테이블을 삭제하고 재생성합니다. 재시도는 loadMaxAttempts회로 제한되며,
//     그래도 실패하면 빈 테이블 대신 ErrStoreUnavailable을 반환합니다.
func (s *Store) LoadAll() ([]Room, error) {
	var lastErr error
	for attempt := 1; attempt <= loadMaxAttempts; attempt++ {
		rooms, err := s.loadOnce()
		if err == nil {
			return rooms, nil
		}
		if !errors.Is(err, errCorruptStore) {
			log.Printf("[ERROR] LoadAll DB 에러: %v", err)
			return nil, err
		}
		lastErr = err
		log.Printf("[WARN] 방 테이블 손상 감지, 재생성합니다 (%d/%d): %v", attempt, loadMaxAttempts, err)
		time.Sleep(loadRetryDelay)
	}
	return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

func (s *Store) loadOnce() ([]Room, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var rows []Room
	if err := tx.Select(&rows, `SELECT `+selectRoomColumns+` FROM rooms`); err != nil {
		return nil, err
	}

	// 첫 기동: 기본값 생성
	if len(rows) == 0 {
		seeded, err := s.seedTx(tx)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return seeded, nil
	}

	// 불변식 위반이면 전체 삭제 후 커밋 -> 다음 시도에서 기본값으로 재생성
	if err := s.validate(rows); err != nil {
		if _, derr := tx.Exec(`DELETE FROM rooms`); derr != nil {
			return nil, derr
		}
		if cerr := tx.Commit(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %v", errCorruptStore, err)
	}

	return s.ordered(rows), nil
}

// seedTx는 설정된 모든 방을 기본 상태로 INSERT합니다.
func (s *Store) seedTx(tx *sqlx.Tx) ([]Room, error) {
	now := s.stamp()
	defaults := make([]Room, 0, len(s.cfg.AllRooms()))
	for _, id := range s.cfg.AllRooms() {
		r := Room{RoomID: id, Status: s.cfg.DefaultStatus(), LastUpdate: now}
		_, err := tx.NamedExec(`
			INSERT INTO rooms (room_id, status, morning, lunch, afternoon, last_update, version)
			VALUES (:room_id, :status, :morning, :lunch, :afternoon, :last_update, :version)
		`, r)
		if err != nil {
			return nil, err
		}
		defaults = append(defaults, r)
	}
	log.Printf("[INFO] 방 테이블을 기본값으로 생성했습니다 (%d개 방)", len(defaults))
	return defaults, nil
}

// validate는 저장된 테이블이 설정 도메인과 정확히 일치하는지 확인합니다.
func (s *Store) validate(rows []Room) error {
	configured := s.cfg.AllRooms()
	if len(rows) != len(configured) {
		return fmt.Errorf("방 수 불일치: 저장 %d / 설정 %d", len(rows), len(configured))
	}
	byID := make(map[string]*Room, len(rows))
	for i := range rows {
		byID[rows[i].RoomID] = &rows[i]
	}
	for _, id := range configured {
		r, ok := byID[id]
		if !ok {
			return fmt.Errorf("설정된 방 누락: %s", id)
		}
		if !s.cfg.IsValidStatus(r.Status) {
			return fmt.Errorf("도메인 밖 상태 값: %s=%q", id, r.Status)
		}
	}
	return nil
}

// ordered는 행을 설정 파일의 구역/방 순서로 정렬합니다.
func (s *Store) ordered(rows []Room) []Room {
	byID := make(map[string]Room, len(rows))
	for _, r := range rows {
		byID[r.RoomID] = r
	}
	out := make([]Room, 0, len(rows))
	for _, id := range s.cfg.AllRooms() {
		out = append(out, byID[id])
	}
	return out
}

// Get은 방 1개를 조회합니다. 설정에 없는 방이면 ErrRoomNotFound입니다.
func (s *Store) Get(roomID string) (*Room, error) {
	if !s.cfg.HasRoom(roomID) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	var r Room
	err := s.db.Get(&r, `SELECT `+selectRoomColumns+` FROM rooms WHERE room_id = ?`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		// 설정에는 있는데 행이 없음 = 테이블 손상. 자가 복구 후 1회 재조회.
		if _, lerr := s.LoadAll(); lerr != nil {
			return nil, lerr
		}
		err = s.db.Get(&r, `SELECT `+selectRoomColumns+` FROM rooms WHERE room_id = ?`, roomID)
	}
	if err != nil {
		log.Printf("[ERROR] Get(%s) DB 에러: %v", roomID, err)
		return nil, err
	}
	return &r, nil
}

// column은 Field를 컬럼 이름으로 바꿉니다. (고정 매핑이라 쿼리 조립에 안전)
func column(f Field) (string, error) {
	switch f {
	case FieldStatus:
		return "status", nil
	case FieldMorning:
		return "morning", nil
	case FieldLunch:
		return "lunch", nil
	case FieldAfternoon:
		return "afternoon", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, f)
}

// UpdateField는 필드 1개를 diff-then-write로 갱신합니다.
//   - 저장된 값과 같으면: 쓰기 없음, 타임스탬프 유지, Changed=false
//   - 다르면: 값 갱신 + last_update 스탬프 + version 증가
//   - baseVersion >= 0이고 저장된 version과 다르면 Stale=true로 보고합니다.
//     (사이에 다른 뷰어의 쓰기가 있었다는 뜻. 정책은 그대로 last-write-wins)
func (s *Store) UpdateField(roomID string, field Field, value string, baseVersion int64) (*UpdateResult, error) {
	if !s.cfg.HasRoom(roomID) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	col, err := column(field)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		log.Printf("[ERROR] UpdateField 트랜잭션 시작 실패: %v", err)
		return nil, err
	}
	defer tx.Rollback()

	var r Room
	if err := tx.Get(&r, `SELECT `+selectRoomColumns+` FROM rooms WHERE room_id = ?`, roomID); err != nil {
		log.Printf("[ERROR] UpdateField(%s) 조회 실패: %v", roomID, err)
		return nil, err
	}

	// 변경 없음 -> 아무것도 하지 않음 (타임스탬프도 그대로)
	if r.FieldValue(field) == value {
		return &UpdateResult{Changed: false, LastUpdate: r.LastUpdate, Version: r.Version}, nil
	}

	stale := baseVersion >= 0 && baseVersion != r.Version
	now := s.stamp()
	query := fmt.Sprintf(`UPDATE rooms SET %s = ?, last_update = ?, version = version + 1 WHERE room_id = ?`, col)
	if _, err := tx.Exec(query, value, now, roomID); err != nil {
		log.Printf("[ERROR] UpdateField(%s.%s) 갱신 실패: %v", roomID, field, err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[ERROR] UpdateField(%s.%s) 커밋 실패: %v", roomID, field, err)
		return nil, err
	}

	if stale {
		log.Printf("[WARN] 유실 쓰기 감지: %s.%s (본 버전 %d / 저장 버전 %d) - last-write-wins 적용",
			roomID, field, baseVersion, r.Version)
	}

	return &UpdateResult{Changed: true, Stale: stale, LastUpdate: now, Version: r.Version + 1}, nil
}

// ResetAll은 모든 방을 기본 상태/빈 메모로 되돌리고 현재 시각으로 스탬프합니다.
// ("하루 시작" 버튼과 일일 자동 리셋이 같은 경로를 사용합니다)
func (s *Store) ResetAll() error {
	// 방 집합이 깨져 있으면 먼저 복구
	if _, err := s.LoadAll(); err != nil {
		return err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := s.stamp()
	_, err = tx.Exec(`
		UPDATE rooms
		SET status = ?, morning = '', lunch = '', afternoon = '',
		    last_update = ?, version = version + 1
	`, s.cfg.DefaultStatus(), now)
	if err != nil {
		log.Printf("[ERROR] ResetAll 갱신 실패: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[ERROR] ResetAll 커밋 실패: %v", err)
		return err
	}
	return nil
}
