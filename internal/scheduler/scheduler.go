package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"orboard/internal/config"
	"orboard/internal/notice"
	"orboard/internal/room"
)

const markerLayout = "2006-01-02"

// Scheduler는 하루 1회(설정된 시각)의 전체 리셋을 담당합니다.
// 1분마다 CheckDue를 호출해 윈도우 경계를 넘었는지만 봅니다.
type Scheduler struct {
	cron *cron.Cron
	// (의존성)
	store     *Store
	roomSvc   *room.Service
	noticeSvc *notice.Service
	cfg       *config.Config
	clock     clockwork.Clock
}

// NewScheduler는 새 Scheduler를 생성합니다.
func NewScheduler(store *Store, roomSvc *room.Service, noticeSvc *notice.Service, cfg *config.Config, clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		store:     store,
		roomSvc:   roomSvc,
		noticeSvc: noticeSvc,
		cfg:       cfg,
		clock:     clock,
	}
}

// Start는 1분 주기 체크를 시작합니다.
func (s *Scheduler) Start() {
	log.Printf("[INFO] 일일 리셋 스케줄러를 시작합니다 (매일 %02d:00)", s.cfg.Board.ResetHour)
	s.cron.AddFunc("@every 1m", func() {
		if _, err := s.CheckDue(); err != nil {
			log.Printf("[ERROR] [Scheduler] 리셋 체크 실패: %v", err)
		}
	})
	s.cron.Start()
}

// Stop은 스케줄러를 중지합니다.
func (s *Scheduler) Stop() {
	log.Println("[INFO] 일일 리셋 스케줄러를 중지합니다...")
	s.cron.Stop()
}

// windowBoundary는 현재 시각이 속한 리셋 윈도우의 시작 경계를 계산합니다.
// 리셋 시각 이전(예: 06:30, 설정 07:00)이면 경계는 어제의 리셋 시각입니다.
func (s *Scheduler) windowBoundary(now time.Time) time.Time {
	boundary := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.Board.ResetHour, 0, 0, 0, now.Location())
	if now.Before(boundary) {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}

// CheckDue는 리셋 윈도우 경계가 마커 이후에 지났으면 전체 리셋을 정확히 1회
// 수행합니다. 같은 윈도우 안에서 몇 번을 다시 호출해도 두 번 발화하지 않고,
// 프로세스가 며칠 꺼져 있다 올라와도 따라잡기 리셋은 정확히 1회입니다.
func (s *Scheduler) CheckDue() (bool, error) {
	now := s.clock.Now()
	boundary := s.windowBoundary(now)
	boundaryDate := boundary.Format(markerLayout)

	markerStr, err := s.store.LoadMarker()
	if err != nil {
		return false, err
	}

	// 첫 기동: 리셋 없이 현재 윈도우를 채택만 합니다.
	// (배포 당일 한낮에 올라온 프로세스가 멀쩡한 현황판을 비우지 않도록)
	if markerStr == "" {
		log.Printf("[Scheduler] 마커가 없어 현재 윈도우(%s)로 초기화합니다", boundaryDate)
		return false, s.store.SaveMarker(boundaryDate)
	}

	if _, err := time.ParseInLocation(markerLayout, markerStr, now.Location()); err != nil {
		// 마커가 깨졌으면 현재 윈도우로 재초기화 (다음 경계부터 정상 동작)
		log.Printf("[WARN] [Scheduler] 마커 형식 오류(%q), 재초기화합니다", markerStr)
		return false, s.store.SaveMarker(boundaryDate)
	}

	// YYYY-MM-DD는 문자열 비교가 곧 날짜 비교입니다.
	// 마커가 이틀 이상 뒤져 있어도(다운타임) 리셋은 이번 1회뿐입니다.
	if markerStr >= boundaryDate {
		// 이번 윈도우는 이미 처리됨
		return false, nil
	}

	return true, s.fire(boundaryDate)
}

// fire는 리셋을 수행하고 마커를 같은 흐름에서 즉시 저장합니다.
func (s *Scheduler) fire(boundaryDate string) error {
	log.Printf("[Scheduler] 일일 리셋을 수행합니다 (윈도우: %s)", boundaryDate)

	if err := s.roomSvc.Reset(); err != nil {
		return fmt.Errorf("일일 리셋 실패: %w", err)
	}
	if s.cfg.Board.ClearNoticeOnReset {
		if err := s.noticeSvc.Clear(); err != nil {
			return fmt.Errorf("리셋 중 공지 초기화 실패: %w", err)
		}
	}
	if err := s.store.SaveMarker(boundaryDate); err != nil {
		return fmt.Errorf("리셋 후 마커 저장 실패: %w", err)
	}

	log.Printf("[Scheduler] 일일 리셋 완료 (마커: %s)", boundaryDate)
	return nil
}

// ForceReset은 "하루 시작" 버튼용 수동 리셋입니다. 자동 리셋과 같은 경로를 쓰고
// 마커도 현재 윈도우로 맞춰, 직후의 정기 체크가 이중 리셋하지 않게 합니다.
func (s *Scheduler) ForceReset() error {
	boundaryDate := s.windowBoundary(s.clock.Now()).Format(markerLayout)
	return s.fire(boundaryDate)
}
