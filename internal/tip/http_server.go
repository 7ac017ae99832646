package tip

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listToolsResponse is the wire shape of the list_tools operation.
type listToolsResponse struct {
	Tools any `json:"tools"`
}

// MountRoutes attaches the TIP HTTP transport to a gin router:
//
//	GET  /tools      -> {"tools": [ToolSpec...]}
//	POST /call_tool  -> CallResult
//
// call_tool always answers 200 with a CallResult; a tool-level or
// validation-level error is protocol data, not an HTTP failure. Only an
// undecodable request body earns a 400.
func MountRoutes(r gin.IRouter, srv *Server) {
	r.GET("/tools", func(c *gin.Context) {
		c.JSON(http.StatusOK, listToolsResponse{Tools: srv.ListTools()})
	})

	r.POST("/call_tool", func(c *gin.Context) {
		var req CallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, srv.Call(c.Request.Context(), req))
	})
}
