package rest

import (
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/devices"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /api/v1/devices/profiles
func (s *Server) listProfiles(c *gin.Context) {
	names, err := s.lm.DeviceManager().Loader().List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.CodeInternal, "Failed to list profiles", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles":     names,
		"search_paths": s.lm.Config().Devices.SearchPaths,
		"count":        len(names),
	})
}

// GET /api/v1/devices/profile
func (s *Server) getActiveProfile(c *gin.Context) {
	rig := s.lm.DeviceManager().Current()
	if rig == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeNotFound, "No device profile active", nil))
		return
	}
	c.JSON(http.StatusOK, rig.Profile)
}

// GET /api/v1/devices/journal
func (s *Server) getJournal(c *gin.Context) {
	rig := s.lm.DeviceManager().Current()
	if rig == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeNotFound, "No device profile active", nil))
		return
	}

	entries := rig.Journal.Entries()
	c.JSON(http.StatusOK, gin.H{
		"profile": rig.Profile.Profile.ID,
		"entries": entries,
		"count":   len(entries),
	})
}

// POST /api/v1/devices/profile
func (s *Server) switchProfile(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeBadRequest, "Invalid request body", err.Error()))
		return
	}

	rig, err := s.lm.SwitchProfile(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, devices.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeNotFound, "Profile not found", err.Error()))
		case errors.Is(err, cycle.ErrMachineBusy):
			c.JSON(http.StatusConflict, types.NewErrorResponse(types.CodeBusy, "Machine is busy", nil))
		default:
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeBadRequest, "Failed to load profile", err.Error()))
		}
		return
	}

	s.logger.Info("Device profile switched",
		zap.String("profile", rig.Profile.Profile.ID),
		zap.String("by", c.GetString(auth.ContextUsername)))

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile activated",
		"profile": rig.Profile,
	})
}
