package notice

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/slack-go/slack"
	log "github.com/sirupsen/logrus"
)

// 공지 입력 상한 (rune 기준)
const maxNoticeLen = 500

// Service는 공지 저장과 (설정된 경우) Slack 전파를 담당합니다.
type Service struct {
	store        *Store
	slackClient  *slack.Client // nil이면 Slack 발송 비활성화
	slackChannel string
}

// NewService는 새 Service를 생성합니다. slackClient는 nil일 수 있습니다.
func NewService(store *Store, slackClient *slack.Client, slackChannel string) *Service {
	return &Service{store: store, slackClient: slackClient, slackChannel: slackChannel}
}

// Get은 현재 공지를 반환합니다.
func (s *Service) Get() (*Notice, error) {
	return s.store.Get()
}

// Set은 공지를 저장하고, 내용이 실제로 바뀐 경우에만 Slack에 전파합니다.
// Slack 실패는 로그만 남기고 편집 자체를 실패시키지 않습니다.
func (s *Service) Set(contents string) (bool, error) {
	contents = strings.TrimSpace(contents)
	if utf8.RuneCountInString(contents) > maxNoticeLen {
		return false, fmt.Errorf("%w (%d자 초과)", ErrNoticeTooLong, maxNoticeLen)
	}

	changed, err := s.store.Set(contents)
	if err != nil {
		return false, err
	}

	if changed && contents != "" && s.slackClient != nil {
		go s.broadcast(contents)
	}
	return changed, nil
}

// Clear는 공지를 비웁니다. (일일 리셋 연동용, Slack 전파 없음)
func (s *Service) Clear() error {
	_, err := s.store.Set("")
	return err
}

func (s *Service) broadcast(contents string) {
	msg := fmt.Sprintf("[수술방 현황판 공지] %s", contents)
	_, _, err := s.slackClient.PostMessage(s.slackChannel, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Errorf("공지 Slack 발송 실패 (channel=%s): %v", s.slackChannel, err)
		return
	}
	log.Infof("공지 Slack 발송 완료 (channel=%s)", s.slackChannel)
}
