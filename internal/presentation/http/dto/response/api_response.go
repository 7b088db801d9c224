package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
	"github.com/splitroom/splitroom-api/pkg/apperror"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ReceiptItemsResponse echoes a receipt's stored item list
type ReceiptItemsResponse struct {
	ReceiptID uuid.UUID            `json:"receipt_id"`
	Items     []entity.ReceiptItem `json:"items"`
}

// FinalizeResponse carries the shareable room URL
type FinalizeResponse struct {
	RoomURL string `json:"room_url"`
}

// PayResponse acknowledges an applied payment request with the ledger rows it
// produced
type PayResponse struct {
	Status   string           `json:"status"`
	Payments []entity.Payment `json:"payments"`
}

// Error renders an error as {detail: <message>} with the status code carried
// by the AppError; unclassified errors become 500
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	c.JSON(appErr.Code, ErrorResponse{Detail: appErr.Message})
}

// ErrorWithCode renders {detail: <message>} with an explicit status code
func ErrorWithCode(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Detail: message})
}

// Items sends the item-list echo for a receipt
func Items(c *gin.Context, statusCode int, receiptID uuid.UUID, items []entity.ReceiptItem) {
	if items == nil {
		items = []entity.ReceiptItem{}
	}
	c.JSON(statusCode, ReceiptItemsResponse{ReceiptID: receiptID, Items: items})
}

// OK sends a 200 response with the given payload
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}
