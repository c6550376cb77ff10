package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/machine"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /api/v1/programs
func (s *Server) listPrograms(c *gin.Context) {
	c.JSON(http.StatusOK, machine.ProgramCatalog())
}

// GET /api/v1/machine/status
func (s *Server) getMachineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.lm.Runner().Status())
}

// POST /api/v1/washes
//
// Runs one cycle and answers with its report. Domain failures such as
// TOO_HEAVY are part of a 200 report; only unusable requests fail.
func (s *Server) startWash(c *gin.Context) {
	var req cycle.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeBadRequest, "Invalid request body", err.Error()))
		return
	}

	report, err := s.lm.Runner().Run(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, cycle.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeBadRequest, "Invalid wash request", err.Error()))
		case errors.Is(err, cycle.ErrMachineBusy):
			c.JSON(http.StatusConflict, types.NewErrorResponse(types.CodeBusy, "Machine is busy", nil))
		case errors.Is(err, context.Canceled):
			c.Status(499)
		default:
			s.logger.Error("Wash cycle could not run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.CodeInternal, "Wash cycle could not run", err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, report)
}
