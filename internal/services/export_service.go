package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/repositories"
)

const exportPageSize = 500

// ExportResult points at an uploaded export.
type ExportResult struct {
	Object    string    `json:"object"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ExportService interface {
	ExportSubscriptions(ctx context.Context, filter repositories.SubscriptionFilter) (*ExportResult, error)
}

type exportService struct {
	subscriptionRepo repositories.SubscriptionRepository
	minioService     MinioService
	bucket           string
	urlExpiry        time.Duration
	now              func() time.Time
}

func NewExportService(subscriptionRepo repositories.SubscriptionRepository, minioService MinioService, bucket string, urlExpiry time.Duration) ExportService {
	return &exportService{
		subscriptionRepo: subscriptionRepo,
		minioService:     minioService,
		bucket:           bucket,
		urlExpiry:        urlExpiry,
		now:              time.Now,
	}
}

var subscriptionExportHeader = []string{
	"subscription_id", "customer", "email", "phone", "product", "billing_cycle", "price",
	"start_date", "end_date", "status", "auto_renew",
}

// ExportSubscriptions writes matching subscriptions as CSV to object storage
// and returns a presigned download URL.
func (s *exportService) ExportSubscriptions(ctx context.Context, filter repositories.SubscriptionFilter) (*ExportResult, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(subscriptionExportHeader); err != nil {
		return nil, err
	}

	rows := 0
	opts := repositories.ListOptions{Limit: exportPageSize, SortBy: "created_at", SortOrder: "asc"}
	for {
		page, err := s.subscriptionRepo.List(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		for _, d := range page {
			if err := w.Write([]string{
				d.ID.String(),
				d.Customer.Name,
				d.Customer.Email,
				d.Customer.Phone,
				d.Product.Name,
				string(d.Product.BillingCycle),
				d.Product.Price.StringFixed(2),
				d.StartDate.Format(common.DateLayout),
				d.EndDate.Format(common.DateLayout),
				string(d.Status),
				strconv.FormatBool(d.AutoRenew),
			}); err != nil {
				return nil, err
			}
		}
		rows += len(page)
		if len(page) < exportPageSize {
			break
		}
		opts.Offset += exportPageSize
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	object := fmt.Sprintf("exports/subscriptions-%s.csv", now.Format("20060102T150405Z"))

	if err := s.minioService.EnsureBucketExists(ctx, s.bucket); err != nil {
		return nil, common.DependencyFailure("ensure export bucket", err)
	}
	if err := s.minioService.Upload(ctx, s.bucket, object, "text/csv", bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		return nil, common.DependencyFailure("upload export", err)
	}
	url, err := s.minioService.GetPresignedURL(ctx, s.bucket, object, s.urlExpiry)
	if err != nil {
		return nil, common.DependencyFailure("presign export", err)
	}

	return &ExportResult{Object: object, URL: url, Rows: rows, ExpiresAt: now.Add(s.urlExpiry)}, nil
}
