package pdf

import (
	"context"
	"io"
)

// Provider renders invoice documents for download.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
}

type InvoiceData struct {
	BusinessName    string
	BusinessAddress string
	BusinessEmail   string

	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Status        string

	BillToName    string
	BillToAddress string
	BillToEmail   string

	Items []InvoiceItem

	Total   string
	PaidAt  string
	Payment string
}

type InvoiceItem struct {
	Description string
	Amount      string
}
