package dashboard

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	log "github.com/sirupsen/logrus"

	"orboard/internal/config"
	"orboard/internal/notice"
	"orboard/internal/room"
	"orboard/internal/scheduler"
	"orboard/internal/viewsync"
)

// DashboardHandler는 현황판 페이지와 폴링/편집 API를 처리합니다.
// (편집 API는 방/공지 서비스와 뷰어 캐시를 함께 만지므로 여기에 모았습니다)
type DashboardHandler struct {
	service      *Service
	roomSvc      *room.Service
	noticeSvc    *notice.Service
	sched        *scheduler.Scheduler
	syncSvc      *viewsync.Service
	sessionStore *session.Store
	cfg          *config.Config
}

// NewDashboardHandler는 새 핸들러를 생성합니다.
func NewDashboardHandler(service *Service, roomSvc *room.Service, noticeSvc *notice.Service,
	sched *scheduler.Scheduler, syncSvc *viewsync.Service, sessionStore *session.Store, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		roomSvc:      roomSvc,
		noticeSvc:    noticeSvc,
		sched:        sched,
		syncSvc:      syncSvc,
		sessionStore: sessionStore,
		cfg:          cfg,
	}
}

// HandleShowBoard는 'GET /board' 요청을 처리합니다. (현황판 페이지 렌더링)
func (h *DashboardHandler) HandleShowBoard(c *fiber.Ctx) error {
	data, err := h.service.GetBoardData()
	if err != nil {
		log.Errorf("현황판 데이터 조회 실패: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("데이터 조회 중 오류 발생")
	}

	return c.Render("board", fiber.Map{
		"Title":    "수술방 현황판",
		"Data":     data,
		"Statuses": h.cfg.Board.Statuses,
		"PollMs":   h.cfg.Board.PollIntervalSec * 1000,
	}, "layout")
}

// HandlePollBoard는 'GET /api/board' 폴링 요청을 처리합니다.
// 뷰어의 세션 캐시를 저장소 스냅샷과 대조해 맞추고(Reconcile) 스냅샷을 반환합니다.
// 캐시 저장 실패는 뷰어에게 전파하지 않습니다. 다음 폴링에서 다시 맞춰집니다.
func (h *DashboardHandler) HandlePollBoard(c *fiber.Ctx) error {
	data, err := h.service.GetBoardData()
	if err != nil {
		log.Errorf("폴링 스냅샷 조회 실패: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "스냅샷 조회 실패"})
	}

	sess, err := h.sessionStore.Get(c)
	if err != nil {
		log.Warnf("폴링 중 세션 로드 실패: %v", err)
		return c.JSON(fiber.Map{"rooms": data.Rooms, "notice": data.Notice})
	}

	cache := h.syncSvc.LoadCache(sess)
	changed, noticeChanged := h.syncSvc.Reconcile(cache, data.Rooms, data.Notice, nil)
	if err := h.syncSvc.SaveCache(sess, cache); err != nil {
		log.Warnf("뷰어 캐시 저장 실패: %v", err)
	}

	return c.JSON(fiber.Map{
		"rooms":          data.Rooms,
		"notice":         data.Notice,
		"changed":        changed,
		"notice_changed": noticeChanged,
	})
}

type updateRequest struct {
	Value string `json:"value"`
}

// HandleUpdateRoomField는 'POST /api/rooms/:room/:field' 요청을 처리합니다.
// 이 요청의 필드가 곧 "지금 편집 중인 필드"입니다: 저장소에서 덮어써지는 대신
// 저장소 쪽으로 쓰입니다. 세션 캐시에 남은 버전이 유실 쓰기 감지의 기준입니다.
func (h *DashboardHandler) HandleUpdateRoomField(c *fiber.Ctx) error {
	roomID := c.Params("room")
	field, err := room.ParseField(c.Params("field"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "요청 본문 파싱 실패"})
	}

	sess, serr := h.sessionStore.Get(c)
	var cache *viewsync.ViewerCache
	base := int64(-1)
	if serr == nil {
		cache = h.syncSvc.LoadCache(sess)
		base = cache.BaseVersion(roomID)
	}

	res, err := h.roomSvc.UpdateField(roomID, field, req.Value, base)
	if err != nil {
		return h.updateError(c, err)
	}

	if res.Stale {
		log.Warnf("뷰어 %s의 %s.%s 편집이 다른 편집과 경합했습니다 (last-write-wins 적용)",
			viewerID(c), roomID, field)
	}

	if cache != nil {
		h.syncSvc.ApplyWrite(cache, viewsync.FieldKey{RoomID: roomID, Field: field},
			strings.TrimSpace(req.Value), res.Version)
		if err := h.syncSvc.SaveCache(sess, cache); err != nil {
			log.Warnf("뷰어 캐시 저장 실패: %v", err)
		}
	}

	return c.JSON(res)
}

// HandleUpdateNotice는 'POST /api/notice' 요청을 처리합니다.
func (h *DashboardHandler) HandleUpdateNotice(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "요청 본문 파싱 실패"})
	}

	changed, err := h.noticeSvc.Set(req.Value)
	if err != nil {
		return h.updateError(c, err)
	}

	if sess, serr := h.sessionStore.Get(c); serr == nil {
		cache := h.syncSvc.LoadCache(sess)
		cache.Notice = strings.TrimSpace(req.Value)
		if err := h.syncSvc.SaveCache(sess, cache); err != nil {
			log.Warnf("뷰어 캐시 저장 실패: %v", err)
		}
	}

	return c.JSON(fiber.Map{"changed": changed})
}

// HandleReset은 'POST /api/reset' 요청("하루 시작" 버튼)을 처리합니다.
func (h *DashboardHandler) HandleReset(c *fiber.Ctx) error {
	log.Infof("뷰어 %s가 수동 리셋을 요청했습니다", viewerID(c))
	if err := h.sched.ForceReset(); err != nil {
		log.Errorf("수동 리셋 실패: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "리셋 실패"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleHealthz는 'GET /healthz' 요청을 처리합니다.
func (h *DashboardHandler) HandleHealthz(c *fiber.Ctx) error {
	if _, err := h.service.GetBoardData(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("store unavailable")
	}
	return c.SendString("ok")
}

// updateError는 도메인 에러를 HTTP 상태 코드로 옮깁니다.
func (h *DashboardHandler) updateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, room.ErrUnknownField),
		errors.Is(err, room.ErrInvalidStatus),
		errors.Is(err, room.ErrInvalidShiftTag),
		errors.Is(err, room.ErrNoteTooLong),
		errors.Is(err, notice.ErrNoticeTooLong):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, room.ErrStoreUnavailable):
		log.Errorf("저장소 사용 불가: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "저장소를 사용할 수 없습니다"})
	default:
		log.Errorf("편집 처리 실패: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "편집 처리 실패"})
	}
}

func viewerID(c *fiber.Ctx) string {
	if id, ok := c.Locals("viewer_id").(string); ok {
		return id
	}
	return "(unknown)"
}
