package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"orderdesk-backend/internal/domain"
	"orderdesk-backend/pkg/logger"
)

// ExportStorage is the object store that receives generated export files.
type ExportStorage interface {
	UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error)
}

// ExportUsecase renders the full order list as CSV and uploads it to object
// storage, returning the public URL.
type ExportUsecase struct {
	store    domain.OrderStore
	storage  ExportStorage
	pageSize int
}

func NewExportUsecase(store domain.OrderStore, storage ExportStorage, pageSize int) *ExportUsecase {
	if pageSize < 1 {
		pageSize = 200
	}
	return &ExportUsecase{
		store:    store,
		storage:  storage,
		pageSize: pageSize,
	}
}

// ExportResult reports where the file landed and how many orders it holds.
type ExportResult struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

func (u *ExportUsecase) ExportOrdersCSV(ctx context.Context, filter domain.OrderFilter) (*ExportResult, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"orderNumber", "orderStatus", "paymentStatus", "paymentMethod", "customerName", "totalAmount", "createdAt", "updatedAt"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	filter.Page = 1
	filter.PageSize = u.pageSize

	count := 0
	for {
		page, err := u.store.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		for _, order := range page.Orders {
			record := []string{
				order.OrderNumber,
				string(order.OrderStatus),
				string(order.PaymentStatus),
				order.PaymentMethod,
				order.CustomerName,
				strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
				order.CreatedAt.Format(time.RFC3339),
				order.UpdatedAt.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("write csv record: %w", err)
			}
			count++
		}

		if filter.Page >= page.Pages || len(page.Orders) == 0 {
			break
		}
		filter.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	url, err := u.storage.UploadBuffer(ctx, buf.Bytes(), "text/csv")
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().Int("orders", count).Str("url", url).Msg("Order export uploaded")
	return &ExportResult{URL: url, Count: count}, nil
}
