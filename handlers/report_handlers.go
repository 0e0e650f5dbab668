package handlers

import (
	"errors"
	"net/http"
	"time"

	"dinehub/billing"
	"dinehub/models"
	"dinehub/reporting"

	"github.com/gin-gonic/gin"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parseDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

type reportQuery struct {
	Period    reporting.Period
	Format    reporting.Format
	StartDate time.Time
	EndDate   time.Time
	Compare   bool
}

// parseReportQuery reads the shared report query parameters, writing a 400
// response itself on a malformed value.
func parseReportQuery(c *gin.Context) (reportQuery, bool) {
	var q reportQuery
	var err error

	q.Period, err = reporting.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return q, false
	}
	q.Format, err = reporting.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return q, false
	}
	if s := c.Query("startDate"); s != "" {
		if q.StartDate, err = parseDate(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return q, false
		}
	}
	if s := c.Query("endDate"); s != "" {
		if q.EndDate, err = parseDate(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return q, false
		}
	}
	q.Compare = c.Query("compareWithPrevious") == "true"
	return q, true
}

func planAllowsAdvanced(restaurant *models.Restaurant) bool {
	return restaurant.SubscriptionPlan != nil && restaurant.SubscriptionPlan.AllowAdvancedReports
}

// advancedFormat reports whether rendering the format is a plan-gated
// feature.
func advancedFormat(f reporting.Format) bool {
	return f == reporting.FormatExcel || f == reporting.FormatPDF
}

func (a *API) SalesReport(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "SalesReport")
	defer span.End()

	restaurant, ok := a.restaurantByParam(c)
	if !ok {
		return
	}
	if !a.canAccessRestaurant(c, restaurant) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this restaurant"})
		return
	}

	q, ok := parseReportQuery(c)
	if !ok {
		return
	}
	if !planAllowsAdvanced(restaurant) && (q.Compare || advancedFormat(q.Format)) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Advanced reporting features are not available on your current subscription plan",
		})
		return
	}

	report, err := a.reports.GetSalesReport(ctx, restaurant.ID, reporting.SalesOptions{
		Period:              q.Period,
		StartDate:           q.StartDate,
		EndDate:             q.EndDate,
		CompareWithPrevious: q.Compare,
	})
	if errors.Is(err, reporting.ErrRestaurantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report"})
		return
	}

	switch q.Format {
	case reporting.FormatRaw:
		c.JSON(http.StatusOK, report)
	case reporting.FormatJSON:
		out, err := reporting.ToJSON(report)
		if err != nil {
			span.SetError(err.Error(), "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode report"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
	case reporting.FormatCSV:
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(reporting.SalesReportCSV(report)))
	case reporting.FormatExcel:
		out, err := reporting.SalesReportExcel(report)
		if err != nil {
			span.SetError(err.Error(), "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render workbook"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="sales-report.xlsx"`)
		c.Data(http.StatusOK, excelContentType, out)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": reporting.ErrUnsupportedFormat.Error()})
	}
}

func (a *API) CustomerReport(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "CustomerReport")
	defer span.End()

	restaurant, ok := a.restaurantByParam(c)
	if !ok {
		return
	}
	if !a.canAccessRestaurant(c, restaurant) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this restaurant"})
		return
	}

	q, ok := parseReportQuery(c)
	if !ok {
		return
	}
	hasAdvanced := planAllowsAdvanced(restaurant)
	if !hasAdvanced && advancedFormat(q.Format) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Advanced reporting features are not available on your current subscription plan",
		})
		return
	}

	// Customer reports default to a monthly window, not the shared daily one.
	period := q.Period
	if c.Query("period") == "" {
		period = reporting.PeriodMonthly
	}

	report, err := a.reports.GetCustomerReport(ctx, restaurant.ID, reporting.CustomerOptions{
		Period:        period,
		StartDate:     q.StartDate,
		EndDate:       q.EndDate,
		IncludeOrders: hasAdvanced,
	})
	if errors.Is(err, reporting.ErrRestaurantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build customer report"})
		return
	}

	switch q.Format {
	case reporting.FormatRaw:
		c.JSON(http.StatusOK, report)
	case reporting.FormatJSON:
		out, err := reporting.ToJSON(report)
		if err != nil {
			span.SetError(err.Error(), "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode report"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
	case reporting.FormatCSV:
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(reporting.CustomerReportCSV(report)))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": reporting.ErrUnsupportedFormat.Error()})
	}
}

func (a *API) SettlementReport(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "SettlementReport")
	defer span.End()

	restaurant, ok := a.restaurantByParam(c)
	if !ok {
		return
	}
	if !a.canAccessRestaurant(c, restaurant) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this restaurant"})
		return
	}

	q, ok := parseReportQuery(c)
	if !ok {
		return
	}

	settlement, err := a.settlements.Calculate(ctx, restaurant.ID, billing.SettlementOptions{
		StartDate:             q.StartDate,
		EndDate:               q.EndDate,
		PlatformFeePercentage: a.cfg.PlatformFeePercentage,
	})
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate settlement"})
		return
	}

	switch q.Format {
	case reporting.FormatRaw:
		c.JSON(http.StatusOK, settlement)
	case reporting.FormatJSON:
		out, err := reporting.ToJSON(settlement)
		if err != nil {
			span.SetError(err.Error(), "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode report"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
	case reporting.FormatCSV:
		c.Data(http.StatusOK, "text/csv; charset=utf-8",
			[]byte(reporting.SettlementCSV(restaurant.Name, settlement)))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": reporting.ErrUnsupportedFormat.Error()})
	}
}
