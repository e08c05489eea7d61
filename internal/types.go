package internal

// Normalized column names of the combined catalog. Two description
// columns exist because the source sheets disagree on accents; the
// normalizer keeps both.
const (
	ColBarcode     = "CODIGO BARRA"
	ColCode        = "CODIGO"
	ColSupplier    = "FORNECEDOR"
	ColDescription = "DESCRICAO"
	ColVarejoFacil = "VAREJO FACIL"
	ColSituation   = "SITUACAO"
	ColOrigin      = "__ORIGEM_PLANILHA__"
)

// TransferStores is the fixed set of stores a transfer form may name.
var TransferStores = []string{"MIMI", "KAMI", "TOTAL MIX", "E-COMMERCE"}

type SelectionKind string

const (
	KindExchange SelectionKind = "exchanges"
	KindOrder    SelectionKind = "orders"
	KindTransfer SelectionKind = "transfers"
)

type SelectionItem struct {
	Barcode     string `json:"barcode"`
	Code        string `json:"code"`
	Supplier    string `json:"supplier"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Origin      string `json:"origin"`
}

type LineSource string

const (
	SourceEmailText      LineSource = "email_text"
	SourceEmailHTMLTable LineSource = "email_html_table"
	SourceXLSX           LineSource = "xlsx"
	SourcePDF            LineSource = "pdf"
)

// OrderLine is one requested position as extracted from an emailed or
// uploaded order sheet, before catalog resolution.
type OrderLine struct {
	LineNo     int
	Source     LineSource
	RawLine    string
	Identifier string
	Qty        int
	Meta       map[string]any
}

// ResolvedLine pairs an extracted line with its catalog hit. Item is
// nil when the identifier matched nothing.
type ResolvedLine struct {
	OrderLine
	Item *SelectionItem
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// VendorProduct and PriceRecord mirror the Varejo Facil wire payloads;
// field names are the remote system's contract, not ours.
type VendorProduct struct {
	ID          int64  `json:"id"`
	Description string `json:"descricao"`
}

type PriceRecord struct {
	ID        int64   `json:"id"`
	StoreID   int64   `json:"lojaId"`
	SalePrice float64 `json:"precoVenda"`
	CostPrice float64 `json:"precoCusto"`
}

type PriceUpdate struct {
	SalePrice *float64 `json:"precoVenda,omitempty"`
	CostPrice *float64 `json:"precoCusto,omitempty"`
}

// ExportRow is the audit record written whenever a document is
// generated.
type ExportRow struct {
	ID        int
	Kind      string
	SessionID string
	Supplier  string
	Items     int
	Filename  string
	CreatedAt string
}
