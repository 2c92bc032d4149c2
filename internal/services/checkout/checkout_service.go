package checkout

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	adapterports "github.com/kevin07696/ctechpay-connector/internal/adapters/ports"
	"github.com/kevin07696/ctechpay-connector/internal/domain"
	domainports "github.com/kevin07696/ctechpay-connector/internal/domain/ports"
	"github.com/kevin07696/ctechpay-connector/internal/services/ports"
	"github.com/kevin07696/ctechpay-connector/pkg/observability"
)

// ProcessPath is the endpoint the host's auto-submit form posts to
const ProcessPath = "/payment/ctechpay/process"

// Checkout outcome labels for metrics
const (
	outcomeRedirected = "redirected"
	outcomeInvalid    = "invalid"
	outcomeLookup     = "lookup_failed"
	outcomeGateway    = "gateway_failed"
	outcomeNoRedirect = "no_redirect"
)

// Config holds the environment-level settings the checkout flow reads per call
type Config struct {
	EnvToken     string // CTECHPAY_API_TOKEN, compared against the stored token
	WebBaseURL   string // WEB_BASE_URL
	NgrokBaseURL string // NGROK_BASE_URL
}

// checkoutService implements ports.CheckoutService
type checkoutService struct {
	partitions domainports.PartitionResolver
	gateway    adapterports.OrderGateway
	config     Config
	logger     *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	partitions domainports.PartitionResolver,
	gateway adapterports.OrderGateway,
	config Config,
	logger *zap.Logger,
) ports.CheckoutService {
	return &checkoutService{
		partitions: partitions,
		gateway:    gateway,
		config:     config,
		logger:     logger,
	}
}

// BeginCheckout resolves the hosted payment page for a pending transaction.
// Each failure is a DomainError; the caller decides how to present it.
func (s *checkoutService) BeginCheckout(ctx context.Context, req *ports.BeginCheckoutRequest) (*ports.CheckoutRedirect, error) {
	start := time.Now()
	result, outcome, err := s.beginCheckout(ctx, req)
	observability.RecordCheckoutOutcome(outcome, time.Since(start).Seconds())
	return result, err
}

func (s *checkoutService) beginCheckout(ctx context.Context, req *ports.BeginCheckoutRequest) (*ports.CheckoutRedirect, string, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		s.logger.Error("Missing reference in process payload", zap.String("partition", req.Partition))
		return nil, outcomeInvalid, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "reference is required")
	}

	logger := s.logger.With(zap.String("reference", reference), zap.String("partition", req.Partition))

	repo, err := s.partitions.Repository(req.Partition)
	if err != nil {
		logger.Error("Unknown data partition", zap.Error(err))
		return nil, outcomeLookup, err
	}

	tx, err := s.findTransaction(ctx, repo, reference)
	if err != nil {
		logger.Error("Transaction lookup failed", zap.Error(err))
		return nil, outcomeLookup, err
	}

	provider, err := s.loadProvider(ctx, repo)
	if err != nil {
		logger.Error("Provider lookup failed", zap.Error(err))
		return nil, outcomeLookup, err
	}
	if !provider.IsActive() {
		// The host only offers active providers; still honour a transaction it already created
		logger.Warn("Processing checkout for an inactive CTechPay provider", zap.String("state", string(provider.State)))
	}
	token := strings.TrimSpace(provider.APIToken)

	if s.config.EnvToken != "" && s.config.EnvToken != provider.APIToken {
		logger.Warn("Provider token differs from environment token, using provider token",
			zap.String("provider_token", domain.TokenFingerprint(provider.APIToken)),
			zap.String("env_token", domain.TokenFingerprint(s.config.EnvToken)),
		)
	}

	amount, err := domain.GatewayAmount(tx.Amount)
	if err != nil {
		logger.Error("Transaction amount cannot be sent to the gateway", zap.Error(err))
		return nil, outcomeInvalid, err
	}

	base := ResolveBaseURL(BaseURLInputs{
		ExplicitOverride: s.config.WebBaseURL,
		TunnelOverride:   s.config.NgrokBaseURL,
		RequestOrigin:    req.RequestOrigin,
		ProviderOrigin:   provider.BaseURL,
	})
	returnURL, cancelURL := ReturnURL(base), CancelURL(base)
	logger.Info("Resolved CTechPay callback URLs", zap.String("return_url", returnURL))

	orderResp, err := s.gateway.CreateOrder(ctx, &adapterports.OrderRequest{
		Token:     token,
		Amount:    amount,
		ReturnURL: returnURL,
		CancelURL: cancelURL,
	})
	if err != nil {
		logger.Error("CTechPay order request failed", zap.Error(err))
		return nil, outcomeGateway, err
	}

	if !orderResp.HasRedirect() {
		logger.Error("CTechPay returned no redirect URL",
			zap.Int("status_code", orderResp.StatusCode),
			zap.String("gateway_error", orderResp.GatewayMessage),
			zap.String("sample", orderResp.Sample),
		)
		return nil, outcomeNoRedirect, domain.NewDomainError(domain.ErrorCodeRedirectNotFound, "gateway response contained no redirect URL").
			WithDetail("status_code", strconv.Itoa(orderResp.StatusCode)).
			WithDetail("gateway_message", orderResp.GatewayMessage)
	}

	logger.Info("Redirecting shopper to CTechPay", zap.String("amount", amount))

	return &ports.CheckoutRedirect{
		RedirectURL: orderResp.RedirectURL,
		Reference:   reference,
		Amount:      amount,
		ReturnURL:   returnURL,
		CancelURL:   cancelURL,
	}, outcomeRedirected, nil
}

// RenderingValues returns the form values that post a transaction to the process endpoint
func (s *checkoutService) RenderingValues(ctx context.Context, req *ports.FormRequest) (*domain.RenderingValues, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "reference is required")
	}

	repo, err := s.partitions.Repository(req.Partition)
	if err != nil {
		return nil, err
	}

	tx, err := s.findTransaction(ctx, repo, reference)
	if err != nil {
		return nil, err
	}

	values := tx.RenderingValues(ProcessPath)
	return &values, nil
}

// findTransaction loads a transaction and checks that it belongs to CTechPay
func (s *checkoutService) findTransaction(ctx context.Context, repo domainports.ProviderRepository, reference string) (*domain.Transaction, error) {
	tx, err := repo.FindTransactionByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return nil, domain.NewTxnNotFoundError(reference)
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to load transaction", err)
	}

	if !tx.IsHandledBy(domain.ProviderCode) {
		return nil, domain.NewProviderMismatchError(reference, tx.ProviderCode)
	}
	return tx, nil
}

// loadProvider loads the CTechPay provider and requires a stored token
func (s *checkoutService) loadProvider(ctx context.Context, repo domainports.ProviderRepository) (*domain.Provider, error) {
	provider, err := repo.GetProvider(ctx, domain.ProviderCode)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotFound) {
			return nil, domain.WrapError(domain.ErrorCodeProviderNotFound, "provider not found", err)
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to load provider", err)
	}

	if !provider.HasToken() {
		return nil, domain.NewTokenMissingError(provider.ID)
	}
	return provider, nil
}
