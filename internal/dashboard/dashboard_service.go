package dashboard

import (
	"log"

	"golang.org/x/sync/errgroup" // (방 테이블/공지 조회를 병렬로 처리하기 위함)

	"orboard/internal/config"
	"orboard/internal/notice"
	"orboard/internal/room"
)

// ZoneView는 구역 1개와 그 구역의 방 레코드들입니다. (뷰 전달용)
type ZoneView struct {
	Name  string      `json:"name"`
	Rooms []room.Room `json:"rooms"`
}

// BoardData는 현황판 뷰/폴링 API에 전달되는 스냅샷 전체입니다.
type BoardData struct {
	Zones  []ZoneView     `json:"zones"`
	Rooms  []room.Room    `json:"rooms"`
	Notice *notice.Notice `json:"notice"`
}

// Service는 현황판 읽기 모델 조합을 담당합니다. (여러 서비스에 의존합니다)
type Service struct {
	roomSvc   *room.Service
	noticeSvc *notice.Service
	cfg       *config.Config
}

// NewService는 현황판 서비스를 생성합니다.
func NewService(roomSvc *room.Service, noticeSvc *notice.Service, cfg *config.Config) *Service {
	return &Service{roomSvc: roomSvc, noticeSvc: noticeSvc, cfg: cfg}
}

// GetBoardData는 방 테이블과 공지를 병렬로 조회하여 스냅샷으로 묶습니다.
func (s *Service) GetBoardData() (*BoardData, error) {
	var data BoardData
	var eg errgroup.Group

	eg.Go(func() error {
		rooms, err := s.roomSvc.Board()
		if err != nil {
			log.Printf("[ERROR] GetBoardData: 방 테이블 조회 실패: %v", err)
			return err
		}
		data.Rooms = rooms
		return nil
	})

	eg.Go(func() error {
		n, err := s.noticeSvc.Get()
		if err != nil {
			log.Printf("[ERROR] GetBoardData: 공지 조회 실패: %v", err)
			return err
		}
		data.Notice = n
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	data.Zones = s.groupByZone(data.Rooms)
	return &data, nil
}

// groupByZone은 방 목록을 설정된 구역 순서대로 묶습니다.
func (s *Service) groupByZone(rooms []room.Room) []ZoneView {
	byID := make(map[string]room.Room, len(rooms))
	for _, r := range rooms {
		byID[r.RoomID] = r
	}
	zones := make([]ZoneView, 0, len(s.cfg.Board.Zones))
	for _, z := range s.cfg.Board.Zones {
		zv := ZoneView{Name: z.Name}
		for _, id := range z.Rooms {
			if r, ok := byID[id]; ok {
				zv.Rooms = append(zv.Rooms, r)
			}
		}
		zones = append(zones, zv)
	}
	return zones
}
