// Package export writes catalog and order listings to XLSX workbooks.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/roso1102/reboard/internal/model"
)

var componentHeader = []string{
	"ID", "Name", "Model", "Category", "Grade", "Reusability",
	"Price (INR)", "Quantity", "Status", "Location", "Working Layers",
	"Use Cases", "CO2 Saved", "Tested At",
}

// Components writes the catalog to an XLSX file, one row per component.
func Components(path string, components []model.Component) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Components")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeRow(sheet, componentHeader...)
	for i := range components {
		c := &components[i]
		working := make([]string, 0, len(c.Diagnostic.Layers))
		for _, l := range model.AllLayers() {
			if c.Diagnostic.Layers[l].Working() {
				working = append(working, string(l))
			}
		}

		row := sheet.AddRow()
		row.AddCell().Value = c.ID
		row.AddCell().Value = c.Name
		row.AddCell().Value = c.ModelName
		row.AddCell().Value = c.Category
		row.AddCell().Value = string(c.Diagnostic.Grade)
		row.AddCell().SetInt(c.Diagnostic.Reusability)
		row.AddCell().SetInt(c.Price)
		row.AddCell().SetInt(c.Quantity)
		row.AddCell().Value = string(c.Status)
		row.AddCell().Value = c.Location
		row.AddCell().Value = strings.Join(working, ", ")
		row.AddCell().Value = strings.Join(c.Diagnostic.UseCases, ", ")
		row.AddCell().Value = c.Diagnostic.CO2Saved
		row.AddCell().Value = c.TestedAt.Format("2006-01-02 15:04:05")
	}

	return eris.Wrap(f.Save(path), "export: save components")
}

var orderHeader = []string{
	"Order ID", "Status", "Buyer", "Component", "Grade", "Unit Price (INR)", "Quantity", "Line Total (INR)", "Placed At",
}

// Orders writes placed orders to an XLSX file, one row per order line.
func Orders(path string, orders []model.Order) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Orders")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeRow(sheet, orderHeader...)
	for i := range orders {
		o := &orders[i]
		for _, item := range o.Items {
			row := sheet.AddRow()
			row.AddCell().Value = o.ID
			row.AddCell().Value = string(o.Status)
			row.AddCell().Value = o.Buyer
			row.AddCell().Value = item.Name
			row.AddCell().Value = string(item.Grade)
			row.AddCell().SetInt(item.Price)
			row.AddCell().SetInt(item.Quantity)
			row.AddCell().SetInt(item.Price * item.Quantity)
			row.AddCell().Value = o.PlacedAt.Format("2006-01-02 15:04:05")
		}
	}

	return eris.Wrap(f.Save(path), "export: save orders")
}

func writeRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().Value = c
	}
}
