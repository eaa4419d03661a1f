package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/domains/design/service"
	"designlab-backend/internal/shared/response"
)

// =====================================================
// DESIGN HANDLER
// =====================================================

type DesignHandler struct {
	designService service.DesignService
}

func NewDesignHandler(designService service.DesignService) *DesignHandler {
	return &DesignHandler{
		designService: designService,
	}
}

// =====================================================
// ENDPOINTS
// =====================================================

// GenerateDesign creates a design from a brief
// POST /designs
func (h *DesignHandler) GenerateDesign(c *gin.Context) {
	// Step 1: Bind request body
	var req model.GenerateDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	// Step 2: Validate request
	if err := req.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	// Step 3: Call service
	resp, err := h.designService.CreateDesign(c.Request.Context(), req)
	if err != nil {
		statusCode, errCode := mapDesignError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	// Step 4: Return success
	response.Success(c, http.StatusOK, resp)
}

// GetConcept reports polling status for a design
// GET /concepts/:id
func (h *DesignHandler) GetConcept(c *gin.Context) {
	designID := c.Param("id")
	if designID == "" {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_ID", "Design ID is required")
		return
	}

	resp, err := h.designService.GetConcept(c.Request.Context(), designID)
	if err != nil {
		statusCode, errCode := mapDesignError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

// mapDesignError maps design errors to HTTP status codes
func mapDesignError(err error) (int, string) {
	var designErr *model.DesignError
	if errors.As(err, &designErr) {
		switch designErr.Code {
		case model.ErrCodeEmptyBrief:
			return http.StatusBadRequest, designErr.Code
		case model.ErrCodeDesignNotFound:
			return http.StatusNotFound, designErr.Code
		case model.ErrCodeProviderFailed, model.ErrCodeProviderUnavailable:
			return http.StatusBadGateway, designErr.Code
		default:
			return http.StatusInternalServerError, "INTERNAL_ERROR"
		}
	}

	if errors.Is(err, model.ErrDesignNotFound) {
		return http.StatusNotFound, model.ErrCodeDesignNotFound
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
