package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sonjayce/TianyanchaAutosearch/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// column binds a Record field to its 1-indexed cell position in a result row.
// This table is the only place that knows the portal's row layout.
type column struct {
	index int
	name  string
	set   func(r *models.Record, v string)
}

var recordColumns = []column{
	{2, "registration_number", func(r *models.Record, v string) { r.RegistrationNumber = v }},
	{3, "operator_name", func(r *models.Record, v string) { r.OperatorName = v }},
	{4, "site_name", func(r *models.Record, v string) { r.SiteName = v }},
	{5, "domain", func(r *models.Record, v string) { r.Domain = v }},
	{6, "review_date", func(r *models.Record, v string) { r.ReviewDate = v }},
}

// tbodyContext is the parent a bare <tr> fragment is parsed under.
var tbodyContext = &html.Node{Type: html.ElementNode, Data: "tbody", DataAtom: atom.Tbody}

// parseRow reads one <tr> outer HTML into a Record. A row missing any
// mapped cell is rejected so no partial Record is produced.
func parseRow(rowHTML string) (models.Record, error) {
	var rec models.Record

	nodes, err := html.ParseFragment(strings.NewReader(rowHTML), tbodyContext)
	if err != nil {
		return rec, fmt.Errorf("parse row: %w", err)
	}
	var tr *html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			tr = n
			break
		}
	}
	if tr == nil {
		return rec, fmt.Errorf("parse row: no <tr> element")
	}

	cells := goquery.NewDocumentFromNode(tr).Children().Filter("td")
	for _, c := range recordColumns {
		if c.index > cells.Length() {
			return rec, fmt.Errorf("parse row: missing %s (cell %d of %d)", c.name, c.index, cells.Length())
		}
		c.set(&rec, cleanText(cells.Eq(c.index-1).Text()))
	}
	return rec, nil
}

// cleanText trims the value and collapses internal whitespace runs.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
