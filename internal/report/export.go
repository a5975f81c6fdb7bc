package report

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/toyorbit/toyorbit/internal/domain"
)

// OrderRow is one exported order line
type OrderRow struct {
	OrderID         string `csv:"order_id"`
	OrderDate       string `csv:"order_date"`
	Status          string `csv:"status"`
	Items           int    `csv:"items"`
	TotalAmount     string `csv:"total_amount"`
	DeliveryCity    string `csv:"delivery_city"`
	DeliveryCountry string `csv:"delivery_country"`
}

// OrderRows flattens the report's orders, counting item quantities per order
func (r *Report) OrderRows() []OrderRow {
	qty := make(map[string]int)
	for _, it := range r.Items {
		qty[it.OrderID.String()] += it.Quantity
	}
	return lo.Map(r.Orders, func(o *domain.Order, _ int) OrderRow {
		id := o.ID.String()
		return OrderRow{
			OrderID:         id,
			OrderDate:       o.OrderDate.UTC().Format("2006-01-02"),
			Status:          o.Status,
			Items:           qty[id],
			TotalAmount:     o.TotalAmount.String(),
			DeliveryCity:    o.DeliveryCity,
			DeliveryCountry: o.DeliveryCountry,
		}
	})
}

func (r *Report) WriteCSV(w io.Writer) error {
	rows := r.OrderRows()
	return errors.Wrap(gocsv.Marshal(&rows, w), "write csv")
}

var xlsxHeader = []string{"Order ID", "Date", "Status", "Items", "Total", "City", "Country"}

func (r *Report) WriteXLSX(w io.Writer) error {
	const sheet = "Orders"
	book := excelize.NewFile()
	book.SetSheetName("Sheet1", sheet)
	for i, h := range xlsxHeader {
		book.SetCellValue(sheet, cell(i, 1), h)
	}
	for n, row := range r.OrderRows() {
		line := n + 2
		book.SetCellValue(sheet, cell(0, line), row.OrderID)
		book.SetCellValue(sheet, cell(1, line), row.OrderDate)
		book.SetCellValue(sheet, cell(2, line), row.Status)
		book.SetCellValue(sheet, cell(3, line), row.Items)
		book.SetCellValue(sheet, cell(4, line), row.TotalAmount)
		book.SetCellValue(sheet, cell(5, line), row.DeliveryCity)
		book.SetCellValue(sheet, cell(6, line), row.DeliveryCountry)
	}
	book.SetColWidth(sheet, "A", "A", 38)
	return errors.Wrap(book.Write(w), "write xlsx")
}

func cell(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
