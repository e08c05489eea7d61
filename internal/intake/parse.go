package intake

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"mimiops/internal"
	"mimiops/internal/util"
)

// Envelope is everything intake needs from one message: detection
// inputs plus the extracted order lines.
type Envelope struct {
	Subject         string
	Text            string
	HTML            string
	AttachmentNames []string
	Lines           []internal.OrderLine
}

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^--+$`),
	regexp.MustCompile(`(?i)^atenciosamente`),
	regexp.MustCompile(`(?i)^obrigad`),
	regexp.MustCompile(`(?i)^abra[çc]o`),
	regexp.MustCompile(`(?i)^tel[:\s]`),
	regexp.MustCompile(`(?i)^e-?mail[:\s]`),
	regexp.MustCompile(`(?i)^http`),
}

// ExtractFromRaw parses a raw message into order lines, trying the
// plain-text body, HTML tables and xlsx/pdf attachments. Attachments a
// parser chokes on are skipped, not fatal: one bad file must not sink
// the rest of the email.
func ExtractFromRaw(raw []byte) (Envelope, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Envelope{}, err
	}

	out := Envelope{
		Subject: env.GetHeader("Subject"),
		Text:    env.Text,
		HTML:    env.HTML,
	}

	if env.Text != "" {
		out.Lines = append(out.Lines, parseTextLines(internal.SourceEmailText, env.Text)...)
	}
	if env.HTML != "" {
		out.Lines = append(out.Lines, parseHTMLTables(env.HTML)...)
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		out.AttachmentNames = append(out.AttachmentNames, filename)
		lower := strings.ToLower(filename)

		var extra []internal.OrderLine
		switch {
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			extra, err = ParseXLSXLines(att.Content)
		case strings.HasSuffix(lower, ".pdf"):
			extra, err = parsePDFLines(att.Content)
		default:
			continue
		}
		if err != nil {
			continue
		}
		for i := range extra {
			if extra[i].Meta == nil {
				extra[i].Meta = map[string]any{}
			}
			extra[i].Meta["attachment"] = filename
		}
		out.Lines = append(out.Lines, extra...)
	}

	out.Lines = dedupeLines(out.Lines)
	for i := range out.Lines {
		out.Lines[i].LineNo = i + 1
	}
	return out, nil
}

// parseTextLines reads free-text lines of the form "<identifier> ...
// <qty>". A line without both parts is ignored.
func parseTextLines(source internal.LineSource, text string) []internal.OrderLine {
	out := []internal.OrderLine{}
	for _, line := range splitLines(text) {
		compact := util.CollapseSpaces(line)
		if compact == "" || isNoise(compact) {
			continue
		}

		qty, qtyRaw, ok := util.ParseLineQty(compact)
		if !ok {
			continue
		}

		identifier := ""
		for _, field := range strings.Fields(compact) {
			if field == qtyRaw {
				continue
			}
			if util.LooksLikeIdentifier(field) {
				identifier = field
				break
			}
		}
		if identifier == "" {
			continue
		}

		out = append(out, internal.OrderLine{
			Source:     source,
			RawLine:    compact,
			Identifier: identifier,
			Qty:        qty,
			Meta:       map[string]any{"qtyRaw": qtyRaw},
		})
	}
	return out
}

var (
	identifierProbes = []string{"barra", "codigo", "código", "cod", "ref", "ean"}
	qtyProbes        = []string{"qtd", "quant"}
)

func parseHTMLTables(html string) []internal.OrderLine {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []internal.OrderLine{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(util.CollapseSpaces(cell.Text())))
		})
		idIdx := findHeaderIndex(headers, identifierProbes)
		qtyIdx := findHeaderIndex(headers, qtyProbes)

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.CollapseSpaces(cell.Text()))
			})
			if len(cells) == 0 {
				return
			}

			identifier := pickCell(cells, idIdx, 0)
			qtyCell := pickCell(cells, qtyIdx, len(cells)-1)
			qty, ok := util.ParseCellQty(qtyCell)
			if !ok || !util.LooksLikeIdentifier(identifier) {
				return
			}

			out = append(out, internal.OrderLine{
				Source:     internal.SourceEmailHTMLTable,
				RawLine:    strings.Join(cells, " | "),
				Identifier: identifier,
				Qty:        qty,
				Meta:       map[string]any{"row": cells},
			})
		})
	})
	return out
}

// ParseXLSXLines reads order lines from a filled batch workbook. The
// header row is searched in the first three rows; without one, column
// A is the identifier and column B the quantity. Exported because the
// web batch upload reuses it.
func ParseXLSXLines(content []byte) ([]internal.OrderLine, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []internal.OrderLine{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		idIdx, qtyIdx := -1, -1
		for i, row := range rows {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				cells = append(cells, util.CollapseSpaces(c))
			}
			if len(cells) == 0 {
				continue
			}

			if i < 3 && idIdx < 0 {
				lowered := make([]string, len(cells))
				for j, c := range cells {
					lowered[j] = strings.ToLower(c)
				}
				idIdx = findHeaderIndex(lowered, identifierProbes)
				qtyIdx = findHeaderIndex(lowered, qtyProbes)
				if idIdx >= 0 || qtyIdx >= 0 {
					continue
				}
			}
			if idIdx < 0 {
				idIdx, qtyIdx = 0, 1
			}

			identifier := pickCell(cells, idIdx, 0)
			if identifier == "" {
				// the template carries both a barcode and a ref
				// column; either one may be the filled one
				for j, c := range cells {
					if j == qtyIdx {
						continue
					}
					if util.LooksLikeIdentifier(c) {
						identifier = c
						break
					}
				}
			}
			qty, ok := util.ParseCellQty(pickCell(cells, qtyIdx, len(cells)-1))
			if !ok || !util.LooksLikeIdentifier(identifier) {
				continue
			}

			out = append(out, internal.OrderLine{
				Source:     internal.SourceXLSX,
				RawLine:    strings.Join(cells, " | "),
				Identifier: identifier,
				Qty:        qty,
				Meta:       map[string]any{"sheet": sheet, "rowNumber": i + 1},
			})
		}
	}
	return out, nil
}

func parsePDFLines(content []byte) ([]internal.OrderLine, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []internal.OrderLine{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		out = append(out, parseTextLines(internal.SourcePDF, text)...)
	}
	return out, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isNoise(line string) bool {
	for _, re := range noisePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func dedupeLines(lines []internal.OrderLine) []internal.OrderLine {
	seen := map[string]struct{}{}
	out := make([]internal.OrderLine, 0, len(lines))
	for _, line := range lines {
		key := line.Identifier + "|" + strings.ToLower(line.RawLine)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
	}
	return out
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx, fallback int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	if fallback >= 0 && fallback < len(cells) {
		return strings.TrimSpace(cells[fallback])
	}
	return ""
}
