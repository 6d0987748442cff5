package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errLimitNotPositive = "limit must be a positive number"
	errLegacyNotFound   = "No se encontraron registros para este equipo en las últimas 24 horas"
	dateOnlyLayout      = "2006-01-02"
)

func notFoundForEquipment(name string) string {
	return fmt.Sprintf("No temperature records found for equipment: %s", name)
}

// parseLimit reads ?limit. Absent means 0 (service default); anything that is
// not a positive integer is rejected.
func parseLimit(c *gin.Context) (int, bool) {
	raw, present := c.GetQuery("limit")
	if !present || strings.TrimSpace(raw) == "" {
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseSort accepts asc|1 and desc|-1; empty means newest first.
func parseSort(raw string) (ascending bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "desc", "-1":
		return false, true
	case "asc", "1":
		return true, true
	default:
		return false, false
	}
}

// parseDate accepts RFC3339 or YYYY-MM-DD (midnight UTC).
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.Parse(dateOnlyLayout, raw)
}

func parseOptionalDate(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an ISO 8601 date", key)
	}
	return t, nil
}

func parseOptionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}

// parseFilter builds a ReadingFilter from the query string.
func parseFilter(c *gin.Context) (models.ReadingFilter, error) {
	f := models.ReadingFilter{Equipment: strings.TrimSpace(c.Query("equipment"))}

	var err error
	if f.StartDate, err = parseOptionalDate(c, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = parseOptionalDate(c, "endDate"); err != nil {
		return f, err
	}
	if f.MinTemperature, err = parseOptionalFloat(c, "minTemperature"); err != nil {
		return f, err
	}
	if f.MaxTemperature, err = parseOptionalFloat(c, "maxTemperature"); err != nil {
		return f, err
	}

	limit, ok := parseLimit(c)
	if !ok {
		return f, errors.New(errLimitNotPositive)
	}
	f.Limit = limit
	return f, nil
}

// @Summary      Temperature history
// @Description  Most recent readings, optionally for one equipment.
// @Tags         temperature-history
// @Produce      json
// @Param        equipment  query     string  false  "Equipment name"
// @Param        limit      query     int     false  "Max records (1-1000, default 100)"
// @Param        sort       query     string  false  "asc|desc (or 1|-1)"
// @Success      200        {array}   models.Reading
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Router       /api/temperature-history [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		h.abortWithError(c, http.StatusBadRequest, errLimitNotPositive)
		return
	}
	ascending, ok := parseSort(c.Query("sort"))
	if !ok {
		h.abortWithError(c, http.StatusBadRequest, "sort must be asc or desc")
		return
	}

	readings, err := h.services.History.List(c.Request.Context(), strings.TrimSpace(c.Query("equipment")), limit, ascending)
	if err != nil {
		h.serviceError(c, "history_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, readings)
}

// @Summary      Filtered temperature history
// @Tags         temperature-history
// @Produce      json
// @Param        equipment       query     string  false  "Equipment name"
// @Param        startDate       query     string  false  "ISO 8601 start date"
// @Param        endDate         query     string  false  "ISO 8601 end date"
// @Param        minTemperature  query     number  false  "Inclusive lower bound (>= -273.15)"
// @Param        maxTemperature  query     number  false  "Inclusive upper bound (<= 10000)"
// @Param        limit           query     int     false  "Max records (1-1000, default 100)"
// @Success      200             {array}   models.Reading
// @Failure      400             {object}  ErrorResponse
// @Failure      401             {object}  ErrorResponse
// @Router       /api/temperature-history/filter [get]
// @Security     BearerAuth
func (h *Handler) getFilteredHistory(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		h.abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := h.services.History.FindByFilters(c.Request.Context(), f)
	if err != nil {
		h.serviceError(c, "history_filter_failed", err)
		return
	}
	c.JSON(http.StatusOK, readings)
}

// @Summary      Equipment history (last 24 h)
// @Tags         temperature-history
// @Produce      json
// @Param        name   path      string  true   "Equipment name"
// @Param        limit  query     int     false  "Max records"
// @Success      200    {array}   models.Reading
// @Failure      400    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /api/temperature-history/equipment/{name} [get]
// @Security     BearerAuth
func (h *Handler) getEquipmentHistory(c *gin.Context) {
	name := c.Param("name")
	limit, ok := parseLimit(c)
	if !ok {
		h.abortWithError(c, http.StatusBadRequest, errLimitNotPositive)
		return
	}

	readings, err := h.services.History.FindByEquipment(c.Request.Context(), name, limit)
	if err != nil {
		h.serviceError(c, "history_by_equipment_failed", err, "equipment", name)
		return
	}
	if len(readings) == 0 {
		h.abortWithError(c, http.StatusNotFound, notFoundForEquipment(name))
		return
	}
	c.JSON(http.StatusOK, readings)
}

// @Summary      Equipment list
// @Tags         temperature-history
// @Produce      json
// @Success      200  {array}   string
// @Failure      401  {object}  ErrorResponse
// @Router       /api/temperature-history/equipment-list [get]
// @Security     BearerAuth
func (h *Handler) getEquipmentList(c *gin.Context) {
	names, err := h.services.History.EquipmentList(c.Request.Context())
	if err != nil {
		h.serviceError(c, "history_equipment_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, names)
}

// @Summary      Equipment statistics
// @Tags         temperature-history
// @Produce      json
// @Param        name  path      string  true  "Equipment name"
// @Success      200   {object}  models.EquipmentStats
// @Failure      404   {object}  ErrorResponse
// @Router       /api/temperature-history/equipment/{name}/stats [get]
// @Security     BearerAuth
func (h *Handler) getEquipmentStats(c *gin.Context) {
	name := c.Param("name")
	stats, err := h.services.History.EquipmentStats(c.Request.Context(), name)
	if err != nil {
		h.serviceError(c, "history_stats_failed", err, "equipment", name)
		return
	}
	if stats.Count == 0 {
		h.abortWithError(c, http.StatusNotFound, notFoundForEquipment(name))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary      Purge old readings
// @Tags         temperature-history
// @Produce      json
// @Param        days  query     int  false  "Age in days (default 30)"
// @Success      200   {object}  map[string]int64
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /api/temperature-history/old-records [delete]
// @Security     BearerAuth
func (h *Handler) deleteOldRecords(c *gin.Context) {
	days := service.DefaultRetentionDays
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.abortWithError(c, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	deleted, err := h.services.History.DeleteOldRecords(c.Request.Context(), days)
	if err != nil {
		h.serviceError(c, "history_purge_failed", err, "days", days)
		return
	}
	if h.log != nil {
		h.log.Infow("history_purged", "days", days, "deleted", deleted)
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}

// @Summary      Thermocouple history (legacy)
// @Description  Last 24 h of one equipment as {temperatura, timestamp}.
// @Tags         temperature-history
// @Produce      json
// @Param        name  path      string  true  "Equipment name"
// @Success      200   {array}   models.LegacyReading
// @Failure      404   {object}  ErrorResponse
// @Router       /api/thermocouple-history/{name} [get]
// @Security     BearerAuth
func (h *Handler) getThermocoupleHistory(c *gin.Context) {
	name := c.Param("name")
	readings, err := h.services.History.FindByEquipment(c.Request.Context(), name, 0)
	if err != nil {
		h.serviceError(c, "thermocouple_history_failed", err, "equipment", name)
		return
	}
	if len(readings) == 0 {
		h.abortWithError(c, http.StatusNotFound, errLegacyNotFound)
		return
	}

	out := make([]models.LegacyReading, 0, len(readings))
	for _, r := range readings {
		out = append(out, models.LegacyReading{Temperature: r.Temperature, Timestamp: r.Timestamp})
	}
	c.JSON(http.StatusOK, out)
}
