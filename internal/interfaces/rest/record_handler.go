package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/application/services"
)

type RecordHandler struct {
	svcMgr *services.ServiceManager
}

func NewRecordHandler(svcMgr *services.ServiceManager) *RecordHandler {
	return &RecordHandler{svcMgr: svcMgr}
}

// List handles GET /api/projects/:projectId/databases/:databaseId/records?filter=<expr>
func (h *RecordHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	HandleGetEnvelope(c, "records", func() (interface{}, error) {
		return h.svcMgr.Records.Query(c.Request.Context(), user, c.Param("projectId"), c.Param("databaseId"), c.Query("filter"))
	})
}
