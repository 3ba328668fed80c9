package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal" // (우아한 종료)
	"syscall"   // (우아한 종료)
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus" // Logrus 사용
	"github.com/slack-go/slack"

	// orboard의 내부 패키지 임포트
	"orboard/internal/config"
	"orboard/internal/dashboard"
	"orboard/internal/middleware" // (미들웨어 임포트)
	"orboard/internal/notice"
	"orboard/internal/repository"
	"orboard/internal/room"
	"orboard/internal/scheduler" // (스케줄러 임포트)
	"orboard/internal/viewsync"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "conf", "./configs/config.yaml", "설정 파일 경로")
	flag.Parse()

	// .env가 있으면 로드 (없어도 무방)
	_ = godotenv.Load()

	// Configure File load
	var cfg *config.Config
	if _, err := os.Stat(configPath); err != nil {
		log.Warnf("설정 파일(%s)이 없어 기본 설정으로 기동합니다", configPath)
		cfg = config.Default()
		cfg.ApplyEnv()
	} else {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Panic(err)
		}
	}

	// DB 연결 (임베디드 SQLite)
	dbo, err := repository.Connect(cfg.DB.Path)
	if err != nil {
		log.Fatalf("저장소 연결 실패: %v", err)
	}
	if err := repository.CreateSchema(dbo); err != nil {
		log.Fatalf("스키마 준비 실패: %v", err)
	}
	log.Infof("저장소 준비 완료 (%s)", cfg.DB.Path)

	// 공용 시계 (스케줄러/타임스탬프가 같은 시계를 봅니다)
	clock := clockwork.NewRealClock()

	// Slack 클라이언트 (토큰/채널이 모두 있어야 활성화)
	var slackClient *slack.Client
	if token := os.Getenv("SLACK_TOKEN"); token != "" && cfg.Slack.Channel != "" {
		slackClient = slack.New(token)
		log.Infof("공지 Slack 전파가 활성화되었습니다 (channel=%s)", cfg.Slack.Channel)
	}

	// 세션 스토어: 뷰어 로컬 캐시 전용이라 인메모리로 충분합니다.
	// (프로세스 재기동 시 캐시가 날아가도 다음 폴링에서 다시 맞춰집니다)
	sessionStore := session.New(session.Config{
		Expiration:     time.Duration(cfg.Board.SessionTTLMin) * time.Minute,
		CookieName:     "orboard_session",
		CookieSecure:   false,
		CookieHTTPOnly: true,
	})

	// 의존성 조립 (Dependency Injection)

	// Room
	roomStore := room.NewStore(dbo, cfg, clock)
	roomService := room.NewService(roomStore, cfg)

	// Notice
	noticeStore := notice.NewStore(dbo, clock)
	noticeService := notice.NewService(noticeStore, slackClient, cfg.Slack.Channel)

	// Scheduler
	schedStore := scheduler.NewStore(dbo)
	sched := scheduler.NewScheduler(schedStore, roomService, noticeService, cfg, clock)

	// Viewer sync
	syncService := viewsync.NewService()

	// Dashboard
	dashboardService := dashboard.NewService(roomService, noticeService, cfg)
	dashboardHandler := dashboard.NewDashboardHandler(
		dashboardService, roomService, noticeService, sched, syncService, sessionStore, cfg)

	// 첫 기동 시 방 테이블을 미리 점검/생성해 둡니다.
	if _, err := roomService.Board(); err != nil {
		log.Fatalf("방 테이블 초기화 실패: %v", err)
	}

	// Fiber 앱 생성 및 템플릿 설정
	engine := html.New("./web/views", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
	})

	// 정적 파일(CSS, JS) 라우팅
	app.Static("/public", "./web/public")

	// 라우트(URL) 설정
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/board")
	})
	app.Get("/healthz", dashboardHandler.HandleHealthz)

	// 뷰어 세션이 필요한 그룹 (인증은 없고 식별만 합니다)
	boardGroup := app.Group("/", middleware.ViewerSession(sessionStore))
	{
		boardGroup.Get("/board", dashboardHandler.HandleShowBoard)
		boardGroup.Get("/api/board", dashboardHandler.HandlePollBoard)
		boardGroup.Post("/api/rooms/:room/:field", dashboardHandler.HandleUpdateRoomField)
		boardGroup.Post("/api/notice", dashboardHandler.HandleUpdateNotice)
		boardGroup.Post("/api/reset", dashboardHandler.HandleReset)
	}

	// 서버 시작 (우아한 종료 로직)

	// 재기동 직후에도 놓친 리셋 윈도우를 바로 따라잡습니다.
	if _, err := sched.CheckDue(); err != nil {
		log.Errorf("기동 시 리셋 체크 실패: %v", err)
	}
	sched.Start()

	go func() {
		serverPort := os.Getenv("SERVER_PORT")
		if serverPort == "" {
			serverPort = fmt.Sprintf("%d", cfg.Server.Port)
		}
		log.Infof("orboard 서버(HTTP)가 [::]:%s 포트에서 시작됩니다.", serverPort)
		if err := app.Listen(fmt.Sprintf(":%s", serverPort)); err != nil {
			log.Panicf("HTTP 서버 Listen 실패: %v", err)
		}
	}()

	// (종료 신호 대기)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("[INFO] orboard 서버 종료 신호 수신...")

	sched.Stop()

	if err := app.Shutdown(); err != nil {
		log.Errorf("HTTP 서버 Shutdown 실패: %v", err)
	}

	if err := dbo.Close(); err != nil {
		log.Errorf("저장소 Close 실패: %v", err)
	}

	log.Println("[INFO] orboard 서버가 정상적으로 종료되었습니다.")
}
