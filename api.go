package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listModules(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.All())
}

func (s *Server) getModule(c *gin.Context) {
	module, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "ko",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, module)
}

func (s *Server) serviceStatus(c *gin.Context) {
	module, err := s.catalog.ByService(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "ko",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"service": module.ServiceID,
		"status":  s.checker.ServiceStatus(c.Request.Context(), module.Unit),
	})
}

func (s *Server) environmentState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":   c.GetBool("running"),
		"reachable": c.GetBool("reachable"),
	})
}

// powerOff runs the shared shutdown control. A client going away does not
// cancel the action.
func (s *Server) powerOff(c *gin.Context) {
	result := s.control.Request(context.WithoutCancel(c.Request.Context()))
	if !result.Succeeded() {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) powerOn(c *gin.Context) {
	result, err := s.env.Start(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		s.logger.Error().Err(err).Msg("Environment power-up error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": -1,
			"output": err.Error(),
		})
		return
	}
	if !result.Succeeded() {
		s.logger.Error().Int("status", result.Status).Str("output", result.Output).Msg("Environment power-up failed")
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
