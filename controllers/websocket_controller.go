package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rashedsumon/ai-receptionist/middleware"
	"github.com/rashedsumon/ai-receptionist/models"
	"github.com/rashedsumon/ai-receptionist/services"
)

type WebSocketController struct {
	receptionist *services.ReceptionistService
	upgrader     websocket.Upgrader
}

func NewWebSocketController(receptionist *services.ReceptionistService, allowedOrigins []string) *WebSocketController {
	return &WebSocketController{
		receptionist: receptionist,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// non-browser clients send no Origin
				return origin == "" || middleware.OriginAllowed(allowedOrigins, origin)
			},
		},
	}
}

type callFrame struct {
	Caller     string `json:"caller"`
	Transcript string `json:"transcript"`
}

// HandleWebSocket runs a live call: every frame is one transcript turn and
// gets one CallResponse back. All turns share the connection's session.
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	conn, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	sessionID := services.SimulateInboundCall(c.Query("session_id"), "", "").SessionID

	for {
		var frame callFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Read error:", err)
			}
			break
		}

		if frame.Caller == "" || frame.Transcript == "" {
			conn.WriteJSON(gin.H{
				"error": "caller and transcript are required",
			})
			continue
		}

		req := models.CallRequest{
			Caller:     frame.Caller,
			Transcript: frame.Transcript,
			SessionID:  sessionID,
			Channel:    models.ChannelWebSocket,
		}

		response, err := wc.receptionist.ProcessCall(c.Request.Context(), req)
		if err != nil {
			conn.WriteJSON(gin.H{
				"error":   "Failed to process call",
				"details": err.Error(),
			})
			continue
		}

		if err := conn.WriteJSON(response); err != nil {
			log.Println("Write error:", err)
			break
		}
	}
}
