package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	bookingdomain "github.com/dirtfreecarpet/portal/internal/booking/domain"
	invoicedomain "github.com/dirtfreecarpet/portal/internal/invoice/domain"
	"github.com/dirtfreecarpet/portal/internal/providers/pdf"
)

const invoiceDateLayout = "January 2, 2006"

func (s *Server) ListInvoices(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	invoices, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		CustomerID: custID,
		Status:     strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if item.CustomerID != custID {
		AbortWithError(c, invoicedomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if item.CustomerID != custID {
		AbortWithError(c, invoicedomain.ErrNotFound)
		return
	}

	reader, err := s.pdfProvider.GenerateInvoice(c.Request.Context(), s.invoicePDFData(c, item))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+item.InvoiceNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) invoicePDFData(c *gin.Context, item invoicedomain.Invoice) pdf.InvoiceData {
	data := pdf.InvoiceData{
		BusinessName:    s.cfg.Business.Name,
		BusinessAddress: s.cfg.Business.Address,
		BusinessEmail:   s.cfg.Business.Email,
		InvoiceNumber:   item.InvoiceNumber,
		IssueDate:       item.CreatedAt.Format(invoiceDateLayout),
		Status:          strings.ToUpper(string(item.Status)),
		Total:           formatMinorUnits(item.TotalAmount),
		Payment:         item.PaymentReference,
	}
	if item.DueAt != nil {
		data.DueDate = item.DueAt.Format(invoiceDateLayout)
	}
	if item.PaidAt != nil {
		data.PaidAt = item.PaidAt.Format(invoiceDateLayout)
	}

	if cust, err := s.customerSvc.GetByID(c.Request.Context(), customerGetRequest(item.CustomerID)); err == nil {
		data.BillToName = cust.Name
		data.BillToAddress = strings.TrimSpace(strings.Join(nonEmpty(cust.Address, cust.City, cust.State, cust.Zip), ", "))
		data.BillToEmail = cust.Email
	}

	data.Items = s.invoiceLineItems(c, item)
	return data
}

// invoiceLineItems lists the services from the job the invoice bills
// for. The invoice carries a single total, so per-line amounts are
// only shown on the fallback row.
func (s *Server) invoiceLineItems(c *gin.Context, item invoicedomain.Invoice) []pdf.InvoiceItem {
	if item.JobID != nil {
		job, err := s.bookingSvc.GetByID(c.Request.Context(), bookingdomain.GetJobRequest{
			ID:         item.JobID.String(),
			CustomerID: item.CustomerID,
		})
		if err == nil && len(job.Services) > 0 {
			items := make([]pdf.InvoiceItem, 0, len(job.Services))
			for _, name := range job.Services {
				items = append(items, pdf.InvoiceItem{Description: name})
			}
			return items
		}
	}

	return []pdf.InvoiceItem{{
		Description: "Carpet cleaning services",
		Amount:      formatMinorUnits(item.TotalAmount),
	}}
}

func formatMinorUnits(amount int64) string {
	return fmt.Sprintf("$%.2f", float64(amount)/100)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
