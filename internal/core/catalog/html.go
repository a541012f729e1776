package catalog

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"recipe-recommender/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
)

var spaceRe = regexp.MustCompile(`[ \t\r\f\v]+`)

// ParseHTMLTable 從 HTML 表格匯入食譜，欄位與 Recipes 工作表相同。
// 儲存格內的 <br> 與 <li> 視為清單分隔。
func ParseHTMLTable(r io.Reader, selector string) ([]common.RecipeRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if selector == "" {
		selector = "table"
	}
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("table not found for selector %q", selector)
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cellText(cell))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return parseRecipeRows(rows)
}

func cellText(cell *goquery.Selection) string {
	if items := cell.Find("li"); items.Length() > 0 {
		var parts []string
		items.Each(func(_ int, li *goquery.Selection) {
			parts = append(parts, condense(li.Text()))
		})
		return strings.Join(parts, "\n")
	}
	cell.Find("br").ReplaceWithHtml("\n")
	lines := strings.Split(cell.Text(), "\n")
	for i, l := range lines {
		lines[i] = condense(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func condense(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
