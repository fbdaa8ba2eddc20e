package handlers

import (
	"errors"
	"net/http"
	"time"

	"disputedraft-backend/models"
	"disputedraft-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaseHandler handles HTTP requests for case operations
type CaseHandler struct {
	caseService *service.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *service.CaseService) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
	}
}

// CreateCaseRequest represents the request body for creating a case
type CreateCaseRequest struct {
	UserID               string   `json:"user_id" binding:"required"`
	Title                string   `json:"title"`
	OrganizationName     string   `json:"organization_name" binding:"required"`
	Description          string   `json:"description"`
	IncidentDate         *string  `json:"incident_date"`
	IncidentEndDate      *string  `json:"incident_end_date"`
	PurchaseAmount       *string  `json:"purchase_amount"`
	Currency             string   `json:"currency"`
	DesiredOutcomes      []string `json:"desired_outcomes"`
	Jurisdiction         string   `json:"jurisdiction"`
	PaymentMethod        string   `json:"payment_method"`
	OrganizationResponse *string  `json:"organization_response"`
}

// CreateCase handles POST /api/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
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

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	disputeCase, err := h.caseFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.caseService.CreateCase(c.Request.Context(), service.CreateCaseRequest{
		UserID: userID,
		Case:   disputeCase,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Case,
	})
}

// caseFromRequest maps the wire shape onto the model, parsing dates and amount
func (h *CaseHandler) caseFromRequest(req *CreateCaseRequest) (*models.Case, error) {
	disputeCase := &models.Case{
		Title:                req.Title,
		OrganizationName:     req.OrganizationName,
		Description:          req.Description,
		Currency:             req.Currency,
		DesiredOutcomes:      req.DesiredOutcomes,
		Jurisdiction:         req.Jurisdiction,
		PaymentMethod:        models.PaymentMethod(req.PaymentMethod),
		OrganizationResponse: req.OrganizationResponse,
	}

	if req.IncidentDate != nil && *req.IncidentDate != "" {
		t, err := time.Parse("2006-01-02", *req.IncidentDate)
		if err != nil {
			return nil, errors.New("incident_date must be YYYY-MM-DD")
		}
		disputeCase.IncidentDate = &t
	}
	if req.IncidentEndDate != nil && *req.IncidentEndDate != "" {
		t, err := time.Parse("2006-01-02", *req.IncidentEndDate)
		if err != nil {
			return nil, errors.New("incident_end_date must be YYYY-MM-DD")
		}
		disputeCase.IncidentEndDate = &t
	}
	if req.PurchaseAmount != nil && *req.PurchaseAmount != "" {
		amount, err := decimal.NewFromString(*req.PurchaseAmount)
		if err != nil {
			return nil, errors.New("purchase_amount must be a decimal number")
		}
		disputeCase.PurchaseAmount = &amount
	}

	return disputeCase, nil
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Case,
	})
}

// UpdateCaseRequest represents the request body for editing case facts. Only
// the fields present in the body are overwritten.
type UpdateCaseRequest struct {
	Title                *string  `json:"title"`
	OrganizationName     *string  `json:"organization_name"`
	Description          *string  `json:"description"`
	IncidentDate         *string  `json:"incident_date"`
	IncidentEndDate      *string  `json:"incident_end_date"`
	PurchaseAmount       *string  `json:"purchase_amount"`
	Currency             *string  `json:"currency"`
	DesiredOutcomes      []string `json:"desired_outcomes"`
	Jurisdiction         *string  `json:"jurisdiction"`
	PaymentMethod        *string  `json:"payment_method"`
	OrganizationResponse *string  `json:"organization_response"`
}

// UpdateCase handles PUT /api/cases/:id
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCaseRequest
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

	current, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}

	disputeCase := current.Case
	if err := applyCaseEdits(disputeCase, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.caseService.UpdateCase(c.Request.Context(), service.UpdateCaseRequest{Case: disputeCase})
	if err != nil {
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
		"data":    result.Case,
	})
}

func applyCaseEdits(disputeCase *models.Case, req *UpdateCaseRequest) error {
	if req.Title != nil {
		disputeCase.Title = *req.Title
	}
	if req.OrganizationName != nil {
		disputeCase.OrganizationName = *req.OrganizationName
	}
	if req.Description != nil {
		disputeCase.Description = *req.Description
	}
	if req.IncidentDate != nil {
		if *req.IncidentDate == "" {
			disputeCase.IncidentDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *req.IncidentDate)
			if err != nil {
				return errors.New("incident_date must be YYYY-MM-DD")
			}
			disputeCase.IncidentDate = &t
		}
	}
	if req.IncidentEndDate != nil {
		if *req.IncidentEndDate == "" {
			disputeCase.IncidentEndDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *req.IncidentEndDate)
			if err != nil {
				return errors.New("incident_end_date must be YYYY-MM-DD")
			}
			disputeCase.IncidentEndDate = &t
		}
	}
	if req.PurchaseAmount != nil {
		if *req.PurchaseAmount == "" {
			disputeCase.PurchaseAmount = nil
		} else {
			amount, err := decimal.NewFromString(*req.PurchaseAmount)
			if err != nil {
				return errors.New("purchase_amount must be a decimal number")
			}
			disputeCase.PurchaseAmount = &amount
		}
	}
	if req.Currency != nil {
		disputeCase.Currency = *req.Currency
	}
	if req.DesiredOutcomes != nil {
		disputeCase.DesiredOutcomes = req.DesiredOutcomes
	}
	if req.Jurisdiction != nil {
		disputeCase.Jurisdiction = *req.Jurisdiction
	}
	if req.PaymentMethod != nil {
		disputeCase.PaymentMethod = models.PaymentMethod(*req.PaymentMethod)
	}
	if req.OrganizationResponse != nil {
		disputeCase.OrganizationResponse = req.OrganizationResponse
	}
	return nil
}

// ListCases handles GET /api/cases?user_id=...&status=...&limit=...&offset=...
func (h *CaseHandler) ListCases(c *gin.Context) {
	userIDStr := c.Query("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_USER_ID",
				"message": "user_id query parameter is required",
			},
		})
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	req := service.ListCasesRequest{UserID: userID}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.CaseStatus(statusStr)
		req.Status = &status
	}
	req.Limit = intQuery(c, "limit", 50)
	req.Offset = intQuery(c, "offset", 0)

	result, err := h.caseService.ListCases(c.Request.Context(), req)
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
		"data":    result.Cases,
	})
}

// DeleteCase handles DELETE /api/cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.caseService.DeleteCase(c.Request.Context(), service.DeleteCaseRequest{ID: id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// AnalyzeCase handles POST /api/cases/:id/analyze
func (h *CaseHandler) AnalyzeCase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	current, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}

	result, err := h.caseService.AdvanceToAnalyzing(c.Request.Context(), service.AdvanceToAnalyzingRequest{
		Case: current.Case,
	})
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
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Case,
	})
}
