package handler

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/application/service"
	"github.com/splitroom/splitroom-api/internal/presentation/http/dto/request"
	"github.com/splitroom/splitroom-api/internal/presentation/http/dto/response"
	"github.com/splitroom/splitroom-api/pkg/pagination"
)

// ReceiptHandler handles the receipt lifecycle endpoints
type ReceiptHandler struct {
	receiptService *service.ReceiptService
	storagePath    string
	uploadMaxSize  int64
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService, storagePath string, uploadMaxSize int64) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		storagePath:    storagePath,
		uploadMaxSize:  uploadMaxSize,
	}
}

// Create handles POST /receipts. The image is optional; without one the
// draft starts empty and items are entered by hand.
func (h *ReceiptHandler) Create(c *gin.Context) {
	var imagePath string

	file, err := c.FormFile("file")
	if err == nil && file != nil {
		if h.uploadMaxSize > 0 && file.Size > h.uploadMaxSize {
			response.ErrorWithCode(c, 413, "Uploaded file is too large")
			return
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".webp", ".heic":
		default:
			response.ErrorWithCode(c, 400, "Unsupported file type: "+ext)
			return
		}

		if err := os.MkdirAll(h.storagePath, 0o755); err != nil {
			log.Printf("Warning: failed to create storage dir: %v", err)
			response.ErrorWithCode(c, 500, "Failed to store uploaded file")
			return
		}
		imagePath = filepath.Join(h.storagePath, uuid.New().String()+ext)
		if err := c.SaveUploadedFile(file, imagePath); err != nil {
			log.Printf("Warning: failed to save upload: %v", err)
			response.ErrorWithCode(c, 500, "Failed to store uploaded file")
			return
		}
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), imagePath)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.receiptService.GetItems(c.Request.Context(), receipt.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Items(c, 200, receipt.ID, items)
}

// GetItems handles GET /receipts/:id/items
func (h *ReceiptHandler) GetItems(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithCode(c, 400, "Invalid receipt ID")
		return
	}

	items, err := h.receiptService.GetItems(c.Request.Context(), receiptID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Items(c, 200, receiptID, items)
}

// ReplaceItems handles PUT /receipts/:id/items. Only drafts accept edits.
func (h *ReceiptHandler) ReplaceItems(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithCode(c, 400, "Invalid receipt ID")
		return
	}

	var req request.ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 400, "Invalid request body: "+err.Error())
		return
	}

	inputs := make([]service.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		inputs = append(inputs, service.ItemInput{
			Name:        it.Name,
			QtyTotal:    it.QtyTotal,
			UnitPrice:   it.UnitPrice,
			AmountTotal: it.AmountTotal,
		})
	}

	items, err := h.receiptService.ReplaceItems(c.Request.Context(), receiptID, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Items(c, 200, receiptID, items)
}

// Finalize handles POST /receipts/:id/finalize
func (h *ReceiptHandler) Finalize(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithCode(c, 400, "Invalid receipt ID")
		return
	}

	roomURL, err := h.receiptService.Finalize(c.Request.Context(), receiptID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.FinalizeResponse{RoomURL: roomURL})
}

// List handles GET /receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	result, err := h.receiptService.ListReceipts(c.Request.Context(), &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
