package reporting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dinehub/billing"

	"github.com/xuri/excelize/v2"
)

// Format is an output encoding for report endpoints.
type Format string

const (
	FormatRaw   Format = "raw"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRaw, FormatJSON, FormatCSV, FormatExcel, FormatPDF:
		return Format(s), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ErrUnsupportedFormat marks formats the API accepts but cannot render yet.
var ErrUnsupportedFormat = fmt.Errorf("format not supported for this report")

// ToJSON pretty-prints any report payload.
func ToJSON(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// csvField quotes a value when it contains a comma or a quote, doubling
// embedded quotes, so rows re-parse to the same logical record.
func csvField(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

func csvJoin(headers []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(headers, ","))
	for _, row := range rows {
		escaped := make([]string, len(row))
		for i, field := range row {
			escaped[i] = csvField(field)
		}
		lines = append(lines, strings.Join(escaped, ","))
	}
	return strings.Join(lines, "\n")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SalesReportCSV flattens the bucketed series, one row per period bucket.
func SalesReportCSV(r *SalesReport) string {
	headers := []string{"Restaurant", "Period", "Bucket", "Sales", "Order Count"}
	rows := make([][]string, 0, len(r.SalesByPeriod))
	for _, bucket := range r.SalesByPeriod {
		rows = append(rows, []string{
			r.RestaurantName,
			string(r.Period),
			bucket.Period,
			formatAmount(bucket.Sales),
			strconv.Itoa(bucket.OrderCount),
		})
	}
	return csvJoin(headers, rows)
}

func CustomerReportCSV(r *CustomerReport) string {
	headers := []string{"Customer ID", "Username", "Email", "Total Spent", "Order Count", "Average Order Value"}
	rows := make([][]string, 0, len(r.Customers))
	for _, c := range r.Customers {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(c.CustomerID), 10),
			c.Username,
			c.Email,
			formatAmount(c.TotalSpent),
			strconv.Itoa(c.OrderCount),
			formatAmount(c.AverageOrderValue),
		})
	}
	return csvJoin(headers, rows)
}

func SettlementCSV(restaurantName string, s *billing.Settlement) string {
	headers := []string{
		"Restaurant ID", "Restaurant Name", "Start Date", "End Date",
		"Order Count", "Total Order Amount", "Platform Fee", "Platform Fee Percentage", "Restaurant Payout",
	}
	row := []string{
		strconv.FormatUint(uint64(s.RestaurantID), 10),
		restaurantName,
		s.Period.StartDate.Format(time.RFC3339),
		s.Period.EndDate.Format(time.RFC3339),
		strconv.Itoa(s.OrderCount),
		formatAmount(s.TotalOrderAmount),
		formatAmount(s.PlatformFee),
		strconv.FormatFloat(s.PlatformFeePercentage, 'f', -1, 64),
		formatAmount(s.RestaurantPayout),
	}
	return csvJoin(headers, [][]string{row})
}

// SalesReportExcel renders the report as an xlsx workbook: a summary block
// followed by the per-bucket series.
func SalesReportExcel(r *SalesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	summary := [][]interface{}{
		{"Restaurant", r.RestaurantName},
		{"Period", string(r.Period)},
		{"Start Date", r.StartDate.Format(time.RFC3339)},
		{"End Date", r.EndDate.Format(time.RFC3339)},
		{"Total Sales", r.TotalSales},
		{"Order Count", r.OrderCount},
		{"Average Order Value", r.AverageOrderValue},
	}
	row := 1
	for _, pair := range summary {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &pair); err != nil {
			return nil, err
		}
		row++
	}

	row++
	header := []interface{}{"Bucket", "Sales", "Order Count"}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &header); err != nil {
		return nil, err
	}
	for _, bucket := range r.SalesByPeriod {
		row++
		line := []interface{}{bucket.Period, bucket.Sales, bucket.OrderCount}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &line); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
