package services

import (
	"context"
	"fmt"
)

// SubscriptionServiceImpl implements SubscriptionService
type SubscriptionServiceImpl struct {
	client    MailClient
	scanLimit int64
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(client MailClient, scanLimit int) *SubscriptionServiceImpl {
	if scanLimit <= 0 {
		scanLimit = 50
	}
	return &SubscriptionServiceImpl{client: client, scanLimit: int64(scanLimit)}
}

// Scan lists senders offering an unsubscribe link among recent messages
func (s *SubscriptionServiceImpl) Scan(ctx context.Context) ([]Subscription, error) {
	if s.client == nil {
		return nil, fmt.Errorf("mail client not configured: %w", ErrServiceUnavailable)
	}
	subs, err := s.client.ScanSubscriptions(ctx, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscriptions: %w", err)
	}
	return subs, nil
}
