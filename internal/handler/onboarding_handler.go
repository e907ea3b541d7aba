package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/service"
	"github.com/Skedlyze/Skedlyze/pkg/response"
	"github.com/Skedlyze/Skedlyze/pkg/validator"
)

type OnboardingHandler struct {
	onboardingService service.OnboardingService
}

func NewOnboardingHandler(onboardingService service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

func (h *OnboardingHandler) GetGoals(c *gin.Context) {
	c.JSON(http.StatusOK, h.onboardingService.Goals())
}

func (h *OnboardingHandler) NeedsOnboarding(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.onboardingService.NeedsOnboarding(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *OnboardingHandler) SetGoal(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SetGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.onboardingService.SetGoal(c.Request.Context(), userID, req.Goal)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *OnboardingHandler) GenerateTasks(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.onboardingService.GenerateTasks(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
