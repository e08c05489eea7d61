package intake

import "strings"

type DetectResult struct {
	IsOrder bool
	Score   float64
	Reason  string
}

// Keywords the stores actually write in order emails. Accented forms
// appear alongside the unaccented spellings people type in a hurry.
var orderKeywords = []string{
	"pedido", "encomenda", "reposicao", "reposição",
	"solicitacao", "solicitação", "qtd", "quantidade",
	"codigo de barras", "cod barra", "planilha",
}

// DetectOrderEmail scores a message on subject/body keywords, numeric
// density and attachment types. Anything below the threshold is left
// alone rather than mis-parsed.
func DetectOrderEmail(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range orderKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	numbers := countNumberRuns(text)
	if numbers >= 2 {
		score += 0.4
	} else if numbers == 1 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".pdf") {
			score += 0.25
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isOrder := score >= 0.45
	reason := "rules_negative"
	if isOrder {
		reason = "rules_positive"
	}
	return DetectResult{IsOrder: isOrder, Score: score, Reason: reason}
}

func countNumberRuns(text string) int {
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] >= '0' && text[i] <= '9' {
			count++
			for i+1 < len(text) && text[i+1] >= '0' && text[i+1] <= '9' {
				i++
			}
		}
	}
	return count
}
