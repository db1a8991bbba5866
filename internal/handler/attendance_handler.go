package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/middleware"
	"github.com/rizalarfiyan/siakad-backend/internal/reconcile"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
	"github.com/rizalarfiyan/siakad-backend/pkg/response"
	"github.com/rizalarfiyan/siakad-backend/pkg/validator"
)

type AttendanceHandler struct {
	attendanceService service.AttendanceService
	redisClient       *redis.Client
	upgrader          websocket.Upgrader
}

func NewAttendanceHandler(attendanceService service.AttendanceService, redisClient *redis.Client) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		redisClient:       redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *AttendanceHandler) Sheet(c *gin.Context) {
	var filter dto.AttendanceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	rows, err := h.attendanceService.Sheet(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, rows, "attendance fetched")
}

func (h *AttendanceHandler) Save(c *gin.Context) {
	var input dto.SaveAttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	savedBy := c.GetString(middleware.ContextUserID)
	saved, err := h.attendanceService.Save(c.Request.Context(), input, savedBy)
	if err != nil {
		if errors.Is(err, reconcile.ErrNoChanges) {
			response.OK(c, http.StatusOK, gin.H{"saved": 0}, "no changes to save")
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"saved": saved}, "attendance saved")
}

func (h *AttendanceHandler) Monthly(c *gin.Context) {
	studentID, ok := parseIDParam(c, "studentId")
	if !ok {
		return
	}

	requester, ok := currentRequester(c)
	if !ok {
		return
	}

	summaries, err := h.attendanceService.Monthly(c.Request.Context(), studentID, requester)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, summaries, "monthly attendance fetched")
}

func (h *AttendanceHandler) History(c *gin.Context) {
	studentID, ok := parseIDParam(c, "studentId")
	if !ok {
		return
	}

	requester, ok := currentRequester(c)
	if !ok {
		return
	}

	records, err := h.attendanceService.History(c.Request.Context(), studentID, requester)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, records, "attendance history fetched")
}

// currentRequester resolves the authenticated identity from the context,
// writing a 401 envelope when it is missing or malformed.
func currentRequester(c *gin.Context) (service.Requester, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized)
		return service.Requester{}, false
	}
	role, ok := middleware.CurrentRole(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized)
		return service.Requester{}, false
	}
	return service.Requester{UserID: userID, Role: role}, true
}

// Live upgrades to a WebSocket and forwards attendance save events from the
// redis channel until the client disconnects.
func (h *AttendanceHandler) Live(c *gin.Context) {
	if h.redisClient == nil {
		response.BadRequest(c, "live feed is not available")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	pubsub := h.redisClient.Subscribe(c.Request.Context(), service.LiveChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
