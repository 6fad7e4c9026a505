// internal/app/features/reports/vouchers.go
package reports

import (
	"sort"

	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/app/system/money"
	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/app/system/xlsx"
	"github.com/dalemusser/crewhub/internal/domain/models"
)

var voucherHeader = []string{"Date", "Person", "Site", "Category", "Paid To", "Amount", "Remarks"}

// groupKey buckets vouchers for the summary sheet. Person and site are
// Title-cased so capitalization variants land together.
type groupKey struct {
	Person   string
	Site     string
	Category string
}

// BuildMasterWorkbook renders the all-persons voucher report: a flat
// entries sheet and a summary sheet grouped by (person, site,
// category).
func BuildMasterWorkbook(expenses []models.Expense) ([]byte, error) {
	wb, err := xlsx.NewWorkbook()
	if err != nil {
		return nil, err
	}

	entries, err := wb.AddSheet("Vouchers")
	if err != nil {
		return nil, err
	}
	if err := entries.Header(voucherHeader); err != nil {
		return nil, err
	}

	var total float64
	for _, e := range expenses {
		amt, _ := money.Parse(e.Amount)
		total += amt
		if err := entries.Row(
			dates.ToDisplay(e.Date),
			normalize.Title(e.Person),
			normalize.Title(e.SiteName),
			e.Category,
			e.PaidTo,
			e.Amount,
			e.Remarks,
		); err != nil {
			return nil, err
		}
	}
	if err := entries.Total("Total", "", "", "", "", money.Format(total), ""); err != nil {
		return nil, err
	}

	summary, err := wb.AddSheet("Summary")
	if err != nil {
		return nil, err
	}
	if err := summary.Header([]string{"Person", "Site", "Category", "Total"}); err != nil {
		return nil, err
	}

	groups := map[groupKey]float64{}
	for _, e := range expenses {
		k := groupKey{
			Person:   normalize.Title(e.Person),
			Site:     normalize.Title(e.SiteName),
			Category: e.Category,
		}
		amt, _ := money.Parse(e.Amount)
		groups[k] += amt
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Person != b.Person {
			return a.Person < b.Person
		}
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		return a.Category < b.Category
	})

	for _, k := range keys {
		if err := summary.Row(k.Person, k.Site, k.Category, money.Format(groups[k])); err != nil {
			return nil, err
		}
	}
	if err := summary.Total("Total", "", "", money.Format(total)); err != nil {
		return nil, err
	}

	return wb.Bytes(entries, summary)
}

// BuildPersonWorkbook renders one person's voucher report as a single
// sheet holding the flat entries plus category and site summaries.
// Each of the three sections ends with a bold total row.
func BuildPersonWorkbook(person string, expenses []models.Expense) ([]byte, error) {
	wb, err := xlsx.NewWorkbook()
	if err != nil {
		return nil, err
	}

	sheet, err := wb.AddSheet(normalize.Title(person))
	if err != nil {
		return nil, err
	}

	if err := sheet.Header([]string{"Date", "Site", "Category", "Paid To", "Amount", "Remarks"}); err != nil {
		return nil, err
	}

	var total float64
	byCategory := map[string]float64{}
	bySite := map[string]float64{}
	for _, e := range expenses {
		amt, _ := money.Parse(e.Amount)
		total += amt
		byCategory[e.Category] += amt
		bySite[normalize.Title(e.SiteName)] += amt

		if err := sheet.Row(
			dates.ToDisplay(e.Date),
			normalize.Title(e.SiteName),
			e.Category,
			e.PaidTo,
			e.Amount,
			e.Remarks,
		); err != nil {
			return nil, err
		}
	}
	if err := sheet.Total("Total", "", "", "", money.Format(total), ""); err != nil {
		return nil, err
	}

	sheet.Blank()
	if err := sheet.Header([]string{"Category", "Total"}); err != nil {
		return nil, err
	}
	for _, cat := range sortedKeys(byCategory) {
		if err := sheet.Row(cat, money.Format(byCategory[cat])); err != nil {
			return nil, err
		}
	}
	if err := sheet.Total("Total", money.Format(total)); err != nil {
		return nil, err
	}

	sheet.Blank()
	if err := sheet.Header([]string{"Site", "Total"}); err != nil {
		return nil, err
	}
	for _, site := range sortedKeys(bySite) {
		if err := sheet.Row(site, money.Format(bySite[site])); err != nil {
			return nil, err
		}
	}
	if err := sheet.Total("Total", money.Format(total)); err != nil {
		return nil, err
	}

	return wb.Bytes(sheet)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
