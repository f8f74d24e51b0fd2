package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/store"
	"github.com/campusfees/fee-management-api/pkg/export"
	"github.com/campusfees/fee-management-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReceiptFormat
	ExpiresAt    time.Time
}

// ExportService builds receipt datasets from the state store and persists
// rendered files.
type ExportService struct {
	store   *store.Store
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(st *store.Store, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		store:   st,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReceiptJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReceiptFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReceiptFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api"
	}
	signedURL = fmt.Sprintf("%s/receipts/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReceiptJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	subject := sanitizeFilename(job.Params.StudentID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), subject, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(job *models.ReceiptJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReceiptTypePayment:
		return s.buildPaymentDataset(job.Params)
	case models.ReceiptTypeLedger:
		return s.buildLedgerDataset()
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported receipt type %s", job.Type)
	}
}

func (s *ExportService) buildPaymentDataset(params models.ReceiptJobParams) (export.Dataset, string, error) {
	if params.StudentID == "" {
		return export.Dataset{}, "", fmt.Errorf("studentId is required for payment receipts")
	}
	payments := s.store.StudentPayments(params.StudentID)
	rows := make([]map[string]string, 0, len(payments))
	var total, outstanding float64
	for _, p := range payments {
		rows = append(rows, paymentRow(p))
		total += p.Amount
		if p.Status != models.PaymentStatusPaid {
			outstanding += p.Amount
		}
	}
	rows = append(rows, map[string]string{
		"Category": "TOTAL",
		"Amount":   fmt.Sprintf("%.2f", total),
		"Status":   fmt.Sprintf("outstanding %.2f", outstanding),
	})
	dataset := export.Dataset{
		Headers: []string{"Category", "Description", "Amount", "Due Date", "Status", "Paid At"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Fee Receipt %s", params.StudentID)
	return dataset, title, nil
}

func (s *ExportService) buildLedgerDataset() (export.Dataset, string, error) {
	payments := s.store.UpcomingPayments()
	rows := make([]map[string]string, 0, len(payments))
	for _, p := range payments {
		row := paymentRow(p)
		row["Student ID"] = p.StudentID
		rows = append(rows, row)
	}
	dataset := export.Dataset{
		Headers: []string{"Student ID", "Category", "Description", "Amount", "Due Date", "Status", "Paid At"},
		Rows:    rows,
	}
	return dataset, "Payment Ledger", nil
}

func paymentRow(p models.UpcomingPayment) map[string]string {
	paidAt := ""
	if p.PaidAt != nil {
		paidAt = p.PaidAt.UTC().Format(time.RFC3339)
	}
	return map[string]string{
		"Category":    p.Category,
		"Description": p.Description,
		"Amount":      fmt.Sprintf("%.2f", p.Amount),
		"Due Date":    p.DueDate.UTC().Format("2006-01-02"),
		"Status":      string(p.Status),
		"Paid At":     paidAt,
	}
}
