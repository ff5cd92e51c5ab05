package webhook

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"elite_crm_backend/internal/chat"
	"elite_crm_backend/internal/events"
	"elite_crm_backend/internal/leads/scoring"
	"elite_crm_backend/internal/queue"
	"elite_crm_backend/internal/whatsapp"
	"elite_crm_backend/platform/logger"
	"elite_crm_backend/platform/validator"
)

// Module bundles the ingestion router's repository, service, and handler.
type Module struct {
	Repo    *Repository
	Service *Service
	Handler *Handler
}

func NewModule(
	pool *pgxpool.Pool,
	chats *chat.Repository,
	scoringSvc *scoring.Service,
	enqueuer queue.Enqueuer,
	sender whatsapp.Sender,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, chats, scoringSvc, enqueuer, sender, bus, log)
	return &Module{
		Repo:    repo,
		Service: service,
		Handler: NewHandler(service, val),
	}
}

// RegisterRoutes mounts the public webhook endpoint and the session API.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/webhooks/whatsapp", m.Handler.HandleInbound)

	sessions := api.Group("/sessions")
	sessions.GET("", m.Handler.HandleListSessions)
	sessions.GET("/:sessionId/messages", m.Handler.HandleSessionMessages)
	sessions.POST("/:sessionId/messages", m.Handler.HandleSendMessage)
	sessions.DELETE("/:sessionId", m.Handler.HandleDeleteSession)
	sessions.POST("/:sessionId/reanalyze", m.Handler.HandleReanalyzeSession)
}
