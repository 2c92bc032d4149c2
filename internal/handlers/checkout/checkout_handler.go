package checkout

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/ctechpay-connector/internal/domain"
	checkoutsvc "github.com/kevin07696/ctechpay-connector/internal/services/checkout"
	"github.com/kevin07696/ctechpay-connector/internal/services/ports"
	"github.com/kevin07696/ctechpay-connector/pkg/middleware"
)

// FormPath serves the auto-submitting checkout form
const FormPath = "/payment/ctechpay/form"

// Form fields posted by the host checkout form
const (
	fieldReference = "reference"
	fieldPartition = "db"
)

// Handler serves the browser-facing CTechPay endpoints.
// Every failure ends in a redirect to the host status page; nothing raw is shown to the shopper.
type Handler struct {
	service    ports.CheckoutService
	statusPath string
	trustProxy bool
	logger     *zap.Logger
}

// NewHandler creates a new checkout handler
func NewHandler(service ports.CheckoutService, statusPath string, trustProxy bool, logger *zap.Logger) *Handler {
	return &Handler{
		service:    service,
		statusPath: statusPath,
		trustProxy: trustProxy,
		logger:     logger,
	}
}

// Routes mounts the checkout endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Post(checkoutsvc.ProcessPath, h.Process)
	r.Get(checkoutsvc.ReturnPath, h.Return)
	r.Post(checkoutsvc.ReturnPath, h.Return)
	r.Get(FormPath, h.Form)
}

// Process creates a gateway order and sends the browser to the hosted payment page
// POST /payment/ctechpay/process (reference, optional db)
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Invalid process request body", zap.Error(err))
		h.redirectToStatus(w, r)
		return
	}

	req := &ports.BeginCheckoutRequest{
		Partition:     r.PostForm.Get(fieldPartition),
		Reference:     r.PostForm.Get(fieldReference),
		RequestOrigin: h.requestOrigin(r),
	}

	redirect, err := h.service.BeginCheckout(r.Context(), req)
	if err != nil {
		// Lookup failures are bad input from the host or shopper, the rest need an operator
		level := zapcore.ErrorLevel
		if domain.IsLookupError(err) {
			level = zapcore.WarnLevel
		}
		h.logger.Log(level, "Checkout not started, sending shopper to status page",
			zap.String("reference", req.Reference),
			zap.String("partition", req.Partition),
			zap.String("error_code", string(domain.GetErrorCode(err))),
			zap.Error(err),
		)
		h.redirectToStatus(w, r)
		return
	}

	h.logger.Info("Redirecting shopper to CTechPay",
		zap.String("reference", redirect.Reference),
		zap.String("redirect_url", redirect.RedirectURL),
	)
	http.Redirect(w, r, redirect.RedirectURL, http.StatusSeeOther)
}

// Return accepts the gateway's browser callback and hands control back to the host
// GET|POST /payment/ctechpay/return
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Invalid return request", zap.Error(err))
		h.redirectToStatus(w, r)
		return
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("reference", r.Form.Get("reference")),
		zap.String("code", r.Form.Get("code")),
	}
	if strings.EqualFold(r.Form.Get("status"), "cancel") {
		h.logger.Info("CTechPay payment cancelled by shopper", fields...)
	} else {
		h.logger.Info("CTechPay return callback received", fields...)
	}

	h.redirectToStatus(w, r)
}

// Form renders an auto-submitting form that posts a transaction to Process
// GET /payment/ctechpay/form?reference=...&db=...
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	partition := query.Get(fieldPartition)

	values, err := h.service.RenderingValues(r.Context(), &ports.FormRequest{
		Partition: partition,
		Reference: query.Get(fieldReference),
	})
	if err != nil {
		h.logger.Info("Checkout form not rendered",
			zap.String("reference", query.Get(fieldReference)),
			zap.String("error_code", string(domain.GetErrorCode(err))),
		)
		h.redirectToStatus(w, r)
		return
	}

	data := formData{
		Nonce:     middleware.CSPNonce(r.Context()),
		Action:    values.APIURL,
		Reference: values.Reference,
		Partition: partition,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, data); err != nil {
		h.logger.Error("Failed to render checkout form", zap.Error(err))
	}
}

func (h *Handler) redirectToStatus(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.statusPath, http.StatusSeeOther)
}

// requestOrigin returns scheme://host as the shopper's browser addressed us
func (h *Handler) requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host

	if h.trustProxy {
		if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
			scheme = proto
		}
		if fwdHost := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); fwdHost != "" {
			host = fwdHost
		}
	}

	if host == "" {
		return ""
	}
	return scheme + "://" + host
}

// firstHeaderValue takes the client-most entry of a comma separated proxy header
func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

type formData struct {
	Nonce     string
	Action    string
	Reference string
	Partition string
}

var formTemplate = template.Must(template.New("ctechpay-form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>Redirecting to CTechPay</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; text-align: center; padding-top: 4rem; }
	</style>
</head>
<body>
	<form id="ctechpay-form" method="post" action="{{.Action}}">
		<input type="hidden" name="reference" value="{{.Reference}}">
		{{- if .Partition}}
		<input type="hidden" name="db" value="{{.Partition}}">
		{{- end}}
		<p>Redirecting to the payment page...</p>
		<noscript><button type="submit">Continue to payment</button></noscript>
	</form>
	<script nonce="{{.Nonce}}">document.getElementById("ctechpay-form").submit();</script>
</body>
</html>
`))
