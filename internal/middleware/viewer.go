package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// ViewerSession은 모든 요청에 뷰어 식별자를 보장합니다.
// 로그인은 없습니다. 병동 복도의 공용 화면도 뷰어 1명입니다.
func ViewerSession(store *session.Store) fiber.Handler {

	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Printf("[ERROR] 미들웨어: 세션 로드 실패 (%s): %v", c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).SendString("세션 오류")
		}

		id, ok := sess.Get("viewer_id").(string)
		if !ok || id == "" {
			id = uuid.NewString()
			sess.Set("viewer_id", id)
			if err := sess.Save(); err != nil {
				log.Printf("[ERROR] 미들웨어: 세션 저장 실패: %v", err)
				return c.Status(fiber.StatusInternalServerError).SendString("세션 오류")
			}
		}

		c.Locals("viewer_id", id)
		return c.Next()
	}
}
