package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pages only read the catalog, so rendering one twice yields the same body.

func (s *Server) homePage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Path":      "Home",
		"Modules":   s.catalog.All(),
		"Running":   c.GetBool("running"),
		"Reachable": c.GetBool("reachable"),
	})
}

func (s *Server) modulePage(c *gin.Context) {
	module, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		s.notFoundPage(c)
		return
	}
	c.HTML(http.StatusOK, "module.html", gin.H{
		"Path":   module.Name,
		"Module": module,
	})
}

func (s *Server) notFoundPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", gin.H{
		"Path":       "Not found",
		"RequestURI": c.Request.URL.Path,
	})
}
