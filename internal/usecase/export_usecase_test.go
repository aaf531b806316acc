package usecase

import (
	"context"
	"strings"
	"testing"

	"orderdesk-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExportStorage struct {
	data        []byte
	contentType string
	err         error
}

func (s *fakeExportStorage) UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.data = data
	s.contentType = contentType
	return "https://cdn.example.com/exports/orders.csv", nil
}

func TestExportOrdersCSV(t *testing.T) {
	store := newFakeStore(
		&domain.Order{ID: "o1", OrderNumber: "ORD-1001", OrderStatus: domain.OrderStatusPending, PaymentStatus: domain.PaymentStatusUnpaid, PaymentMethod: "cod", CustomerName: "Alice"},
		&domain.Order{ID: "o2", OrderNumber: "ORD-1002", OrderStatus: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusPaid, PaymentMethod: "card", CustomerName: "Bob"},
	)
	storage := &fakeExportStorage{}
	exportUC := NewExportUsecase(store, storage, 50)

	result, err := exportUC.ExportOrdersCSV(context.Background(), domain.OrderFilter{})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/exports/orders.csv", result.URL)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "text/csv", storage.contentType)

	lines := strings.Split(strings.TrimSpace(string(storage.data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "orderNumber,orderStatus,paymentStatus,paymentMethod,customerName,totalAmount,createdAt,updatedAt", lines[0])
	assert.Contains(t, string(storage.data), "ORD-1001")
	assert.Contains(t, string(storage.data), "ORD-1002")
}

func TestExportOrdersCSV_UploadFailure(t *testing.T) {
	store := newFakeStore(&domain.Order{ID: "o1", OrderNumber: "ORD-1001"})
	storage := &fakeExportStorage{err: assert.AnError}
	exportUC := NewExportUsecase(store, storage, 50)

	_, err := exportUC.ExportOrdersCSV(context.Background(), domain.OrderFilter{})
	require.Error(t, err)
}
