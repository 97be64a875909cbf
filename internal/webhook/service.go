// AngelaMos | 2026
// service.go

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelamos/questledger/internal/cache"
	"github.com/angelamos/questledger/internal/config"
	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/tokensale"
	"github.com/angelamos/questledger/internal/user"
)

const paymentsChannel = "payments"

// Processing outcomes reported to the sender.
const (
	StatusReplay               = "replay"
	StatusActivated            = "activated"
	StatusAlreadyActive        = "already_active"
	StatusContributionRecorded = "contribution_recorded"
)

type RateGuard interface {
	Check(ctx context.Context, key string) error
}

// ChannelKeyFunc builds the rate-guard key for a webhook channel.
type ChannelKeyFunc func(channel string) string

type Service struct {
	store      Store
	cfg        config.WebhookConfig
	subCfg     config.SubscriptionConfig
	clock      core.Clock
	cache      cache.Invalidator
	guard      RateGuard
	channelKey ChannelKeyFunc
}

func NewService(
	store Store,
	cfg config.WebhookConfig,
	subCfg config.SubscriptionConfig,
	clock core.Clock,
	invalidator cache.Invalidator,
	guard RateGuard,
	channelKey ChannelKeyFunc,
) *Service {
	if invalidator == nil {
		invalidator = cache.Noop{}
	}
	return &Service{
		store:      store,
		cfg:        cfg,
		subCfg:     subCfg,
		clock:      clock,
		cache:      invalidator,
		guard:      guard,
		channelKey: channelKey,
	}
}

// Process verifies, deduplicates, and applies one webhook delivery.
// The event-log insert and the domain transition share a transaction:
// any failure rolls both back, so the sender's retry is accepted later.
func (s *Service) Process(
	ctx context.Context,
	rawBody []byte,
	signatureHeader string,
) (*Result, error) {
	if s.guard != nil && s.channelKey != nil {
		if err := s.guard.Check(ctx, s.channelKey(paymentsChannel)); err != nil {
			return nil, err
		}
	}

	if err := VerifySignature(rawBody, signatureHeader, s.cfg.Secret); err != nil {
		return nil, err
	}

	var payload Payload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("parse webhook: %w", core.ErrMalformedPayload)
	}

	if err := validatePayload(&payload); err != nil {
		return nil, err
	}

	var result Result

	err := s.store.InTx(ctx, func(r Repository) error {
		inserted, err := r.InsertEvent(
			ctx,
			payload.EventID,
			rawBody,
			s.clock.Now(),
		)
		if err != nil {
			return err
		}
		if !inserted {
			result = Result{OK: true, Status: StatusReplay, IdempotentReplay: true}
			return nil
		}

		switch payload.Type {
		case TypeSubscriptionPaid:
			status, err := s.applySubscriptionPaid(ctx, r, &payload)
			if err != nil {
				return err
			}
			result = Result{OK: true, Status: status}
			return nil

		case TypeTokenSalePurchase:
			if err := s.applyTokenSalePurchase(ctx, r, &payload); err != nil {
				return err
			}
			result = Result{OK: true, Status: StatusContributionRecorded}
			return nil

		default:
			return fmt.Errorf(
				"unknown event type %q: %w",
				payload.Type,
				core.ErrMalformedPayload,
			)
		}
	})
	if err != nil {
		return nil, err
	}

	if !result.IdempotentReplay {
		s.invalidateFor(ctx, &payload)
	}

	return &result, nil
}

func (s *Service) applySubscriptionPaid(
	ctx context.Context,
	r Repository,
	payload *Payload,
) (string, error) {
	sub, err := r.GetSubscriptionBySession(ctx, payload.SessionID)
	if err != nil {
		return "", err
	}

	if payload.Nonce != sub.Nonce {
		return "", fmt.Errorf(
			"nonce mismatch for session %s: %w",
			payload.SessionID,
			core.ErrInvalidInput,
		)
	}

	renewal := s.clock.Now().Add(s.subCfg.RenewalPeriod)

	activated, err := r.ActivateSubscription(ctx, sub.SessionID, renewal)
	if err != nil {
		return "", err
	}
	if !activated {
		// New event id, same session: the subscription already left
		// pending. Log the event, change nothing else.
		return StatusAlreadyActive, nil
	}

	if _, err := r.EnsureUser(ctx, sub.Wallet); err != nil {
		return "", err
	}

	if err := r.UpdateUserTier(ctx, sub.Wallet, sub.Tier); err != nil {
		return "", err
	}

	return StatusActivated, nil
}

func (s *Service) applyTokenSalePurchase(
	ctx context.Context,
	r Repository,
	payload *Payload,
) error {
	wallet := user.NormalizeWallet(payload.Wallet)
	if !user.ValidWallet(wallet) {
		return fmt.Errorf("token sale webhook: %w", core.ErrMalformedPayload)
	}

	if _, err := r.EnsureUser(ctx, wallet); err != nil {
		return err
	}

	_, err := r.UpsertContribution(ctx, &tokensale.Contribution{
		SessionID:    payload.SessionID,
		Wallet:       wallet,
		Amount:       payload.Amount,
		Currency:     strings.ToUpper(payload.Currency),
		Status:       tokensale.StatusConfirmed,
		ReferralCode: payload.ReferralCode,
	})
	return err
}

func (s *Service) invalidateFor(ctx context.Context, payload *Payload) {
	keys := []string{cache.SubscriptionKey(payload.SessionID)}
	if payload.Wallet != "" {
		keys = append(keys, cache.UserKey(user.NormalizeWallet(payload.Wallet)))
	}
	s.cache.Invalidate(ctx, keys...)
}

func validatePayload(p *Payload) error {
	if p.EventID == "" || p.Type == "" || p.SessionID == "" {
		return fmt.Errorf(
			"missing event_id, type, or session_id: %w",
			core.ErrMalformedPayload,
		)
	}

	if p.Type == TypeTokenSalePurchase && p.Amount <= 0 {
		return fmt.Errorf(
			"non-positive token sale amount: %w",
			core.ErrMalformedPayload,
		)
	}

	return nil
}
