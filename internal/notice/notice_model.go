package notice

import "errors"

// ErrNoticeTooLong은 공지 입력이 길이 상한을 넘었을 때 반환됩니다.
var ErrNoticeTooLong = errors.New("공지가 너무 깁니다")

// Notice는 'board_notice' 테이블의 싱글턴 행(id=1)입니다.
// 모든 화면에 공통으로 뜨는 전달사항 1건만 유지합니다.
type Notice struct {
	Contents   string `json:"contents" db:"contents"`
	LastUpdate string `json:"last_update" db:"last_update"` // HH:MM, 내용이 실제로 바뀐 때만 갱신
}
