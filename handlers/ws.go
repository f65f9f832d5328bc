package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/masroufi/sync-api/services"
	"github.com/masroufi/sync-api/utils"
)

// WSHandler streams change-bus signals to connected clients. Signals
// carry the entity type only, never data: a client that receives
// {"type":"transactions"} re-fetches its own list, the same contract
// the in-process bus gives local subscribers.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler(notifier *services.Notifier) *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-Alive Configuration (Critical for cloud hosting)
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		if id, ok := userID.(string); ok {
			utils.LogWebSocket("connected", id)
		}
	})

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		if id, ok := userID.(string); ok {
			utils.LogWebSocket("disconnected", id)
		}
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeError("websocket: %v", err)
	})

	h := &WSHandler{M: m}
	for _, entity := range []string{
		services.EntityTransactions,
		services.EntityGoals,
		services.EntitySubscriptions,
		services.EntityBudget,
	} {
		entity := entity
		notifier.Subscribe(entity, func() { h.broadcastSignal(entity) })
	}
	return h
}

// HandleWS upgrades the request and tags the session with the caller.
func (h *WSHandler) HandleWS(c *gin.Context) {
	keys := map[string]any{"user_id": c.Query("user")}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		utils.SafeError("websocket upgrade failed: %v", err)
	}
}

func (h *WSHandler) broadcastSignal(entity string) {
	msg := []byte(`{"type": "` + entity + `"}`)
	if err := h.M.Broadcast(msg); err != nil {
		utils.SafeWarn("broadcasting %s signal: %v", entity, err)
	}
}
