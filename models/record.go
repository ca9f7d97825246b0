package models

import "fmt"

// RecordHeader is the header row of the exported result file, in column order.
var RecordHeader = []string{"备案号", "主办单位", "网站名称", "网站域名", "审核时间"}

// Record is one registration entry read from a results table row.
// Values are whitespace-trimmed plain text.
type Record struct {
	RegistrationNumber string `json:"registration_number"`
	OperatorName       string `json:"operator_name"`
	SiteName           string `json:"site_name"`
	Domain             string `json:"domain"`
	ReviewDate         string `json:"review_date"`
}

// Values returns the fields in RecordHeader order.
func (r Record) Values() []string {
	return []string{r.RegistrationNumber, r.OperatorName, r.SiteName, r.Domain, r.ReviewDate}
}

// SearchTarget is a (keyword, page) pair a search URL is derived from.
type SearchTarget struct {
	Keyword string
	Page    int
}

func (t SearchTarget) String() string {
	return fmt.Sprintf("%s#p%d", t.Keyword, t.Page)
}
