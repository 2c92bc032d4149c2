package ctechpay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/ports"
	"github.com/kevin07696/ctechpay-connector/internal/domain"
	"github.com/kevin07696/ctechpay-connector/pkg/observability"
)

// attemptResult is the raw outcome of one HTTP exchange with the gateway
type attemptResult struct {
	body       []byte
	statusCode int
}

// orderAdapter implements the OrderGateway port
type orderAdapter struct {
	config     *Config
	httpClient ports.HTTPClient
	logger     *zap.Logger
	breaker    *gobreaker.CircuitBreaker[*attemptResult]
}

// NewOrderAdapter creates a new CTechPay order adapter
func NewOrderAdapter(config *Config, httpClient ports.HTTPClient, logger *zap.Logger) ports.OrderGateway {
	settings := gobreaker.Settings{
		Name:        "ctechpay-order",
		MaxRequests: 1,
		Timeout:     config.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerMaxFailures
		},
		// A caller that went away says nothing about gateway health
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Gateway circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			observability.SetGatewayCircuitState(stateToFloat(to))
		},
	}

	return &orderAdapter{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		breaker:    gobreaker.NewCircuitBreaker[*attemptResult](settings),
	}
}

// CreateOrder submits an order and extracts the hosted checkout URL from the response.
// A 403 on the multipart attempt triggers exactly one form-encoded attempt.
func (a *orderAdapter) CreateOrder(ctx context.Context, req *ports.OrderRequest) (*ports.OrderResponse, error) {
	if err := a.validateRequest(req); err != nil {
		a.logger.Error("Invalid CTechPay order request", zap.Error(err))
		return nil, err
	}

	orderURL, err := a.config.OrderURL()
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayError, "invalid gateway configuration", err)
	}

	token := strings.TrimSpace(req.Token)
	attempts := []ports.OrderAttempt{ports.OrderAttemptMultipart}

	result, err := a.sendMultipart(ctx, orderURL, token, req)
	if err != nil {
		return nil, a.classifyError(err)
	}

	if result.statusCode == http.StatusForbidden {
		a.logger.Info("CTechPay multipart order returned 403, retrying with form-encoded body")
		attempts = append(attempts, ports.OrderAttemptURLEncoded)

		result, err = a.sendURLEncoded(ctx, orderURL, token, req.Amount)
		if err != nil {
			return nil, a.classifyError(err)
		}
	}

	payload := ParseBody(result.body)
	resp := &ports.OrderResponse{
		StatusCode:     result.statusCode,
		Attempts:       attempts,
		GatewayMessage: GatewayErrorMessage(payload),
		Sample:         payload.Sample(),
	}
	if redirectURL, ok := ExtractRedirectURL(payload); ok {
		resp.RedirectURL = redirectURL
	}

	a.logger.Info("CTechPay order response",
		zap.Int("status_code", result.statusCode),
		zap.String("payload_kind", payload.Kind.String()),
		zap.Bool("has_redirect", resp.HasRedirect()),
		zap.Int("attempts", len(attempts)),
	)

	return resp, nil
}

// sendMultipart performs the primary attempt: four multipart fields and the endpoint header
func (a *orderAdapter) sendMultipart(ctx context.Context, orderURL, token string, req *ports.OrderRequest) (*attemptResult, error) {
	buf := getBodyBuffer()
	defer putBodyBuffer(buf)

	writer := multipart.NewWriter(buf)
	fields := []struct{ name, value string }{
		{"token", token},
		{"amount", req.Amount},
		{"redirectUrl", req.ReturnURL},
		{"cancelUrl", req.CancelURL},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write %s field: %w", f.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	header := http.Header{}
	header.Set("Accept", "*/*")
	header.Set("User-Agent", a.config.UserAgent)
	header.Set("endpoint", a.config.Endpoint)
	header.Set("Content-Type", writer.FormDataContentType())

	return a.send(ctx, ports.OrderAttemptMultipart, orderURL, buf.Bytes(), header)
}

// sendURLEncoded performs the fallback attempt: token and amount only, JSON requested
func (a *orderAdapter) sendURLEncoded(ctx context.Context, orderURL, token, amount string) (*attemptResult, error) {
	formData := getFormData()
	defer putFormData(formData)

	formData.Set("token", token)
	formData.Set("amount", amount)

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	return a.send(ctx, ports.OrderAttemptURLEncoded, orderURL, []byte(formData.Encode()), header)
}

// send executes one HTTP exchange through the circuit breaker
func (a *orderAdapter) send(ctx context.Context, attempt ports.OrderAttempt, orderURL string, body []byte, header http.Header) (*attemptResult, error) {
	if err := ctx.Err(); err != nil {
		a.logger.Info("Caller gone before CTechPay order attempt",
			zap.String("attempt", string(attempt)),
			zap.Error(err),
		)
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	return a.breaker.Execute(func() (*attemptResult, error) {
		httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, orderURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header = header

		startTime := time.Now()
		httpResp, err := a.httpClient.Do(httpReq)
		if err != nil {
			observability.RecordGatewayRequest(string(attempt), "network_error", time.Since(startTime).Seconds())
			a.logger.Error("Failed to send CTechPay order request",
				zap.String("attempt", string(attempt)),
				zap.Duration("elapsed", time.Since(startTime)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, a.config.MaxBodyBytes))
		if err != nil {
			observability.RecordGatewayRequest(string(attempt), "network_error", time.Since(startTime).Seconds())
			a.logger.Error("Failed to read CTechPay response body",
				zap.String("attempt", string(attempt)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		observability.RecordGatewayRequest(string(attempt), strconv.Itoa(httpResp.StatusCode), time.Since(startTime).Seconds())
		a.logger.Info("Received CTechPay order response",
			zap.String("attempt", string(attempt)),
			zap.Int("status_code", httpResp.StatusCode),
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Int("body_length", len(respBody)),
		)

		return &attemptResult{statusCode: httpResp.StatusCode, body: respBody}, nil
	})
}

// validateRequest validates required fields before anything is sent
func (a *orderAdapter) validateRequest(req *ports.OrderRequest) error {
	if req == nil {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "order request is required")
	}
	if strings.TrimSpace(req.Token) == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "token is required")
	}
	if req.Amount == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "amount is required")
	}
	if _, err := strconv.ParseInt(req.Amount, 10, 64); err != nil {
		return domain.WrapError(domain.ErrorCodeValidationAmountInvalid, "amount must be an integer", err).
			WithDetail("amount", req.Amount)
	}
	if req.ReturnURL == "" || req.CancelURL == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "callback URLs are required")
	}
	return nil
}

// classifyError maps transport failures to gateway domain errors
func (a *orderAdapter) classifyError(err error) error {
	if isTimeout(err) {
		return domain.WrapError(domain.ErrorCodeGatewayTimeout, "gateway request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return domain.WrapError(domain.ErrorCodeGatewayError, "gateway request canceled by caller", err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.WrapError(domain.ErrorCodeGatewayError, "gateway circuit breaker is open", err)
	}
	return domain.WrapError(domain.ErrorCodeGatewayError, "gateway request failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// stateToFloat maps gobreaker states to gauge values
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
