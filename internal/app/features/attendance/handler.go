// internal/app/features/attendance/handler.go
package attendance

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	attendancestore "github.com/dalemusser/crewhub/internal/app/store/attendance"
	"github.com/dalemusser/crewhub/internal/app/store/audit"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves punch-in, listing, and bulk decisions.
type Handler struct {
	Log        *zap.Logger
	AuditLog   *auditlog.Logger
	Attendance *attendancestore.Store
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		AuditLog:   auditLog,
		Attendance: attendancestore.New(db),
	}
}

type markRequest struct {
	PersonName   string           `json:"person_name"`
	Category     string           `json:"category"`
	SiteName     string           `json:"site_name"`
	TeamName     string           `json:"team_name"`
	Date         string           `json:"date"`
	TimeIn       string           `json:"time_in"`
	IsLate       bool             `json:"is_late"`
	HalfDay      bool             `json:"half_day"`
	Location     *models.GeoPoint `json:"location"`
	LocationName string           `json:"location_name"`
}

// HandleMark handles POST /attendance. One punch per person per day;
// a second one gets 409.
func (h *Handler) HandleMark(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req markRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PersonName == "" {
		req.PersonName = actor.Name
	}
	if req.SiteName == "" {
		jsonio.Error(w, http.StatusBadRequest, "site_name is required")
		return
	}
	if req.TimeIn == "" {
		jsonio.Error(w, http.StatusBadRequest, "time_in is required")
		return
	}
	date := req.Date
	if date == "" {
		date = dates.Today()
	} else {
		var err error
		if date, err = dates.Parse(date); err != nil {
			jsonio.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Attendance.Mark(ctx, models.Attendance{
		PersonName:   req.PersonName,
		Category:     req.Category,
		SiteName:     req.SiteName,
		TeamName:     req.TeamName,
		Date:         date,
		TimeIn:       req.TimeIn,
		IsLate:       req.IsLate,
		HalfDay:      req.HalfDay,
		Location:     req.Location,
		LocationName: req.LocationName,
		MarkedBy:     actor.Name,
	})
	if err != nil {
		if errors.Is(err, attendancestore.ErrAlreadyMarked) {
			jsonio.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("attendance: mark failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not mark attendance")
		return
	}
	jsonio.Respond(w, http.StatusCreated, a)
}

// HandleList handles GET /attendance?site=&date=&status=&person=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := attendancestore.ListFilter{
		Person: q.Get("person"),
		Site:   q.Get("site"),
		Status: q.Get("status"),
	}
	if v := q.Get("date"); v != "" {
		date, err := dates.Parse(v)
		if err != nil {
			jsonio.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		f.From, f.To = date, date
	} else {
		var err error
		if v := q.Get("from"); v != "" {
			if f.From, err = dates.Parse(v); err != nil {
				jsonio.Error(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if v := q.Get("to"); v != "" {
			if f.To, err = dates.Parse(v); err != nil {
				jsonio.Error(w, http.StatusBadRequest, err.Error())
				return
			}
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Attendance.List(ctx, f)
	if err != nil {
		h.Log.Error("attendance: list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list attendance")
		return
	}
	jsonio.Respond(w, http.StatusOK, out)
}

type decisionsRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"` // approve | reject
}

type decisionsResponse struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// HandleDecisions handles POST /attendance/decisions with the same
// sequential, non-atomic batch semantics as expense decisions. No
// notifications; those belong to the expense workflow.
func (h *Handler) HandleDecisions(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req decisionsRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		jsonio.Error(w, http.StatusBadRequest, `action must be "approve" or "reject"`)
		return
	}
	if len(req.IDs) == 0 {
		jsonio.Error(w, http.StatusBadRequest, "ids is empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	var resp decisionsResponse
	for _, hex := range req.IDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, hex+": invalid id")
			continue
		}
		if _, err := h.Attendance.Decide(ctx, id, req.Action == "approve"); err != nil {
			resp.Failed++
			if errors.Is(err, attendancestore.ErrNotFound) {
				resp.Errors = append(resp.Errors, hex+": not found")
			} else {
				h.Log.Error("attendance: decision failed",
					zap.String("id", hex), zap.Error(err))
				resp.Errors = append(resp.Errors, hex+": internal error")
			}
			continue
		}
		resp.Succeeded++
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventAttendanceDecided, actorID, req.Action,
		map[string]string{
			"succeeded": strconv.Itoa(resp.Succeeded),
			"failed":    strconv.Itoa(resp.Failed),
		})

	jsonio.Respond(w, http.StatusOK, resp)
}
