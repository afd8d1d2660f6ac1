package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	dbaudit "github.com/givin-app/givin/internal/database/audit"
	"github.com/givin-app/givin/internal/entities"
)

// AuditReader lists audit events.
type AuditReader interface {
	GetEvents(filter dbaudit.Filter) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{reader: reader}
}

// GetAuditEvents returns paginated audit events as JSON.
// GET /api/audit?type=&entity_type=&entity_id=&since=&user_id=&limit=&offset=
//
// Admins see every user's events and may filter by user_id; everyone else
// sees only their own.
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	since, ok := parseDateQuery(c, "since")
	if !ok {
		return
	}

	filter := dbaudit.Filter{
		EventType:  entities.AuditEventType(c.Query("type")),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Limit:      limit,
		Offset:     offset,
	}
	if since != nil {
		filter.Since = *since
	}

	userID := auth.GetUserID(c)
	switch {
	case userID == 0 || auth.GetUserRole(c) == entities.UserRoleAdmin:
		if raw := c.Query("user_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				respondBadRequest(c, "invalid user_id")
				return
			}
			filter.UserID = uint(id)
		}
	default:
		filter.UserID = userID
	}

	events, total, err := ac.reader.GetEvents(filter)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	respondPage(c, events, total, limit, offset)
}

type EventTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GetEventTypes handles GET /api/audit/types
func (ac *AuditController) GetEventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"event_types": []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventImport), Label: "Import"},
		{Value: string(entities.AuditEventExport), Label: "Export"},
		{Value: string(entities.AuditEventDelete), Label: "Delete"},
		{Value: string(entities.AuditEventInsights), Label: "Insights"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventSettings), Label: "Settings"},
	}})
}
