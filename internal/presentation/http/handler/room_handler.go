package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/splitroom/splitroom-api/internal/application/service"
	"github.com/splitroom/splitroom-api/internal/presentation/http/dto/request"
	"github.com/splitroom/splitroom-api/internal/presentation/http/dto/response"
)

// RoomHandler handles the shared-room endpoints addressed by room token
type RoomHandler struct {
	roomService    *service.RoomService
	paymentService *service.PaymentService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *service.RoomService, paymentService *service.PaymentService) *RoomHandler {
	return &RoomHandler{roomService: roomService, paymentService: paymentService}
}

// Get handles GET /receipts/:id where :id is a room token. Returns the
// aggregated snapshot viewers poll after every change notification.
func (h *RoomHandler) Get(c *gin.Context) {
	view, err := h.roomService.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Pay handles POST /receipts/:id/pay where :id is a room token. The whole
// request applies atomically or not at all.
func (h *RoomHandler) Pay(c *gin.Context) {
	var req request.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 400, "Invalid request body: "+err.Error())
		return
	}

	lines := make([]service.PaymentLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.PaymentLineInput{
			ItemID: l.ItemID,
			Mode:   l.Mode,
			UnitID: l.UnitID,
			Amount: l.Amount,
		})
	}

	payments, err := h.paymentService.SubmitPayment(c.Request.Context(), c.Param("id"), &service.SubmitPaymentInput{
		PayerName: req.PayerName,
		Lines:     lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.PayResponse{Status: "ok", Payments: payments})
}
