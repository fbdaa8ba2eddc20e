package handlers

import (
	"errors"
	"net/http"

	"disputedraft-backend/models"
	"disputedraft-backend/providers"
	"disputedraft-backend/service"

	"github.com/gin-gonic/gin"
)

// LetterHandler handles HTTP requests for letter operations
type LetterHandler struct {
	letterService *service.LetterService
}

// NewLetterHandler creates a new letter handler
func NewLetterHandler(letterService *service.LetterService) *LetterHandler {
	return &LetterHandler{
		letterService: letterService,
	}
}

// LetterContextBody carries the optional type-specific inputs for a letter
type LetterContextBody struct {
	PreviousLetterDate string `json:"previous_letter_date"`
	OrganizationOffer  string `json:"organization_offer"`
	OmbudsmanName      string `json:"ombudsman_name"`
	CardIssuer         string `json:"card_issuer"`
}

func (b LetterContextBody) toProvider() providers.LetterContext {
	return providers.LetterContext{
		PreviousLetterDate: b.PreviousLetterDate,
		OrganizationOffer:  b.OrganizationOffer,
		OmbudsmanName:      b.OmbudsmanName,
		CardIssuer:         b.CardIssuer,
	}
}

// GenerateLetterRequest represents the request body for generating a letter
type GenerateLetterRequest struct {
	LetterType string            `json:"letter_type" binding:"required"`
	Context    LetterContextBody `json:"context"`
}

// GenerateLetter handles POST /api/cases/:id/letters
func (h *LetterHandler) GenerateLetter(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req GenerateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "letter_type is required",
			},
		})
		return
	}

	result, err := h.letterService.GenerateLetter(c.Request.Context(), service.GenerateLetterRequest{
		CaseID:     caseID,
		LetterType: models.LetterType(req.LetterType),
		Context:    req.Context.toProvider(),
	})
	if err != nil {
		h.writeGenerateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Letter,
	})
}

// RegenerateLetterRequest is the generate body plus a steering hint
type RegenerateLetterRequest struct {
	LetterType string            `json:"letter_type" binding:"required"`
	Feedback   string            `json:"feedback"`
	Context    LetterContextBody `json:"context"`
}

// RegenerateLetter handles POST /api/cases/:id/letters/regenerate
func (h *LetterHandler) RegenerateLetter(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RegenerateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "letter_type is required",
			},
		})
		return
	}

	result, err := h.letterService.RegenerateLetter(c.Request.Context(), service.RegenerateLetterRequest{
		CaseID:     caseID,
		LetterType: models.LetterType(req.LetterType),
		Feedback:   req.Feedback,
		Context:    req.Context.toProvider(),
	})
	if err != nil {
		h.writeGenerateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Letter,
	})
}

// writeGenerateError maps generation errors onto status codes. Precondition
// violations are the caller's problem; everything else is a server error.
func (h *LetterHandler) writeGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
	case errors.Is(err, service.ErrUnknownLetterType):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_LETTER_TYPE",
				"message": err.Error(),
			},
		})
	case errors.Is(err, service.ErrCaseNotAnalyzed):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_NOT_ANALYZED",
				"message": "Case must be analyzed before generating letters",
			},
		})
	case errors.Is(err, service.ErrLetterTypeNotEligible):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LETTER_TYPE_NOT_ELIGIBLE",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GENERATE_FAILED",
				"message": err.Error(),
			},
		})
	}
}

// ListLetters handles GET /api/cases/:id/letters
func (h *LetterHandler) ListLetters(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.letterService.ListLetters(c.Request.Context(), service.ListLettersRequest{CaseID: caseID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Letters,
	})
}

// EligibleLetterTypes handles GET /api/cases/:id/letter-types
func (h *LetterHandler) EligibleLetterTypes(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.letterService.EligibleLetterTypes(c.Request.Context(), service.EligibleLetterTypesRequest{CaseID: caseID})
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Case not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"letter_types": result.Types},
	})
}

// GetLetter handles GET /api/letters/:id
func (h *LetterHandler) GetLetter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.letterService.GetLetter(c.Request.Context(), service.GetLetterRequest{LetterID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Letter not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Letter,
	})
}

// UpdateLetterRequest represents the request body for editing a letter in place
type UpdateLetterRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// UpdateLetter handles PUT /api/letters/:id
func (h *LetterHandler) UpdateLetter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.letterService.UpdateLetter(c.Request.Context(), service.UpdateLetterRequest{
		LetterID: id,
		Subject:  req.Subject,
		Body:     req.Body,
	})
	if err != nil {
		if errors.Is(err, service.ErrLetterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Letter not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Letter,
	})
}
