package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dzn7/apihook/internal/domain"
	"github.com/dzn7/apihook/internal/integration/qrcode"
	"github.com/dzn7/apihook/internal/logger"
	"github.com/dzn7/apihook/internal/order"
	"github.com/dzn7/apihook/internal/webhook"
)

const instrumentationName = "github.com/dzn7/apihook/internal/service"

type Options struct {
	OrderLabel        string
	NotificationURL   string
	FrontendURL       string
	EnforceOrderTotal bool
	GatewayTimeout    time.Duration
}

type PaymentService struct {
	validator       *order.Validator
	builder         *order.Builder
	mpClient        domain.MercadoPagoClient
	qr              domain.QRCodeEncoder
	eventPublisher  domain.OutcomePublisher
	dedup           domain.NotificationDeduplicator
	notificationURL string
	gatewayTimeout  time.Duration

	tracer   trace.Tracer
	outcomes metric.Int64Counter
	inflight sync.WaitGroup
}

// NewPaymentService wires the order pipeline. eventPublisher and dedup may be nil.
func NewPaymentService(
	opts Options,
	mpClient domain.MercadoPagoClient,
	qr domain.QRCodeEncoder,
	eventPublisher domain.OutcomePublisher,
	dedup domain.NotificationDeduplicator,
) *PaymentService {
	s := &PaymentService{
		validator:       order.NewValidator(opts.EnforceOrderTotal),
		builder:         order.NewBuilder(opts.OrderLabel, opts.NotificationURL, opts.FrontendURL),
		mpClient:        mpClient,
		qr:              qr,
		eventPublisher:  eventPublisher,
		dedup:           dedup,
		notificationURL: opts.NotificationURL,
		gatewayTimeout:  opts.GatewayTimeout,
		tracer:          otel.Tracer(instrumentationName),
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter("webhook.outcomes",
		metric.WithDescription("Classified payment notifications by outcome"))
	if err != nil {
		logger.Warn("failed to create outcome counter", zap.Error(err))
	} else {
		s.outcomes = counter
	}
	return s
}

// CreatePixPayment validates the raw order, builds the PIX request and
// returns the QR data Mercado Pago generated for it.
func (s *PaymentService) CreatePixPayment(ctx context.Context, body []byte) (*domain.PixPayment, error) {
	ord, err := s.validator.Validate(body)
	if err != nil {
		logger.Warn("pix order rejected", zap.Error(err))
		return nil, err
	}

	req, err := s.builder.BuildPix(*ord)
	if err != nil {
		logger.Error("cannot build pix payment", zap.Error(err))
		return nil, err
	}

	logger.Info("creating pix payment",
		zap.String("external_reference", req.ExternalReference),
		zap.String("amount", req.TransactionAmount.StringFixed(2)),
		zap.Int("items", len(ord.Items)),
	)

	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()
	gctx, span := s.tracer.Start(gctx, "mercadopago.create_payment",
		trace.WithAttributes(attribute.String("payment.method", req.PaymentMethodID),
			attribute.String("payment.external_reference", req.ExternalReference)))
	defer span.End()

	resp, err := s.mpClient.CreatePayment(gctx, *req)
	if err != nil {
		recordError(span, err)
		logger.Error("failed to create pix payment in mercadopago",
			zap.Error(err),
			zap.String("external_reference", req.ExternalReference),
		)
		return nil, err
	}

	pix, err := normalizePix(resp, req.ExternalReference)
	if err != nil {
		recordError(span, err)
		logger.Error("mercadopago pix response missing required fields",
			zap.Error(err),
			zap.Int64("mp_payment_id", resp.ID),
		)
		return nil, err
	}

	logger.Info("pix payment created",
		zap.Int64("mp_payment_id", pix.PaymentID),
		zap.String("status", pix.Status),
		zap.String("external_reference", pix.ExternalReference),
	)
	return pix, nil
}

func normalizePix(resp *domain.GatewayPaymentResponse, externalReference string) (*domain.PixPayment, error) {
	if resp.ID == 0 {
		return nil, &domain.GatewayContractError{Reason: "payment id not found", Raw: resp.Raw}
	}
	if resp.PointOfInteraction == nil || resp.PointOfInteraction.TransactionData == nil {
		return nil, &domain.GatewayContractError{Reason: "point_of_interaction.transaction_data not found", Raw: resp.Raw}
	}

	data := resp.PointOfInteraction.TransactionData
	if data.QRCodeBase64 == "" || data.QRCode == "" {
		return nil, &domain.GatewayContractError{Reason: "pix qr code was not generated", Raw: resp.Raw}
	}

	return &domain.PixPayment{
		PaymentID:         resp.ID,
		QRCodeImage:       qrcode.WrapBase64(data.QRCodeBase64),
		PixCopiaECola:     data.QRCode,
		Status:            resp.Status,
		ExternalReference: externalReference,
	}, nil
}

// CreateCardPayment charges a tokenized card. The amount is rounded to cents
// and the notification URL is always ours.
func (s *PaymentService) CreateCardPayment(ctx context.Context, req domain.CardPaymentRequest) (*domain.CardPayment, error) {
	if s.notificationURL == "" {
		err := &domain.ConfigurationError{Setting: "BACKEND_URL", Reason: "required to build notification_url"}
		logger.Error("cannot create card payment", zap.Error(err))
		return nil, err
	}

	req.TransactionAmount = decimal.NewFromFloat(req.TransactionAmount).Round(2).InexactFloat64()
	req.NotificationURL = s.notificationURL
	if req.ExternalReference == "" {
		req.ExternalReference = s.builder.ExternalReference()
	}

	logger.Info("creating card payment",
		zap.String("external_reference", req.ExternalReference),
		zap.Float64("amount", req.TransactionAmount),
		zap.Int("installments", req.Installments),
		zap.String("payment_method_id", req.PaymentMethodID),
	)

	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()
	gctx, span := s.tracer.Start(gctx, "mercadopago.create_card_payment",
		trace.WithAttributes(attribute.String("payment.external_reference", req.ExternalReference)))
	defer span.End()

	resp, err := s.mpClient.CreateCardPayment(gctx, req)
	if err != nil {
		recordError(span, err)
		logger.Error("failed to create card payment in mercadopago",
			zap.Error(err),
			zap.String("external_reference", req.ExternalReference),
		)
		return nil, err
	}
	if resp.ID == 0 {
		err := &domain.GatewayContractError{Reason: "payment id not found", Raw: resp.Raw}
		recordError(span, err)
		return nil, err
	}

	logger.Info("card payment created",
		zap.Int64("mp_payment_id", resp.ID),
		zap.String("status", resp.Status),
		zap.String("status_detail", resp.StatusDetail),
	)

	return &domain.CardPayment{
		ID:                resp.ID,
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: req.ExternalReference,
	}, nil
}

// CreatePreference opens a Checkout Pro preference for the order and adds a
// QR code of the checkout link for desktop-to-phone handoff.
func (s *PaymentService) CreatePreference(ctx context.Context, body []byte) (*domain.Preference, error) {
	ord, err := s.validator.Validate(body)
	if err != nil {
		logger.Warn("preference order rejected", zap.Error(err))
		return nil, err
	}

	req, err := s.builder.BuildPreference(*ord)
	if err != nil {
		logger.Error("cannot build preference", zap.Error(err))
		return nil, err
	}

	logger.Info("creating checkout preference",
		zap.String("external_reference", req.ExternalReference),
		zap.Int("items", len(req.Items)),
	)

	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()
	gctx, span := s.tracer.Start(gctx, "mercadopago.create_preference",
		trace.WithAttributes(attribute.String("payment.external_reference", req.ExternalReference)))
	defer span.End()

	resp, err := s.mpClient.CreatePreference(gctx, *req)
	if err != nil {
		recordError(span, err)
		logger.Error("failed to create preference in mercadopago",
			zap.Error(err),
			zap.String("external_reference", req.ExternalReference),
		)
		return nil, err
	}
	if resp.ID == "" || resp.InitPoint == "" {
		err := &domain.GatewayContractError{Reason: "preference id or init_point not found", Raw: resp.Raw}
		recordError(span, err)
		logger.Error("mercadopago preference response missing required fields", zap.Error(err))
		return nil, err
	}

	pref := &domain.Preference{
		PreferenceID:      resp.ID,
		InitPoint:         resp.InitPoint,
		SandboxInitPoint:  resp.SandboxInitPoint,
		ExternalReference: req.ExternalReference,
	}
	if s.qr != nil {
		if img, err := s.qr.DataURI(resp.InitPoint); err != nil {
			logger.Warn("failed to render checkout qr code", zap.Error(err), zap.String("preference_id", resp.ID))
		} else {
			pref.QRCodeImage = img
		}
	}

	logger.Info("checkout preference created",
		zap.String("preference_id", pref.PreferenceID),
		zap.String("external_reference", pref.ExternalReference),
	)
	return pref, nil
}

// Reconcile turns a notification into an outcome. Notifications that are not
// about a payment come back as non-actionable without touching the gateway.
// An error means the payment lookup failed and the gateway should retry.
func (s *PaymentService) Reconcile(ctx context.Context, n domain.WebhookNotification) (*domain.ReconcileResult, error) {
	ref := webhook.Extract(n)
	if !ref.Actionable() {
		logger.Info("webhook acknowledged without action",
			zap.String("topic", ref.Topic),
			zap.String("id", ref.PaymentID),
		)
		return &domain.ReconcileResult{Ref: ref}, nil
	}

	logger.Info("received payment notification",
		zap.String("mp_payment_id", ref.PaymentID),
		zap.String("source", ref.Source),
	)

	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()
	gctx, span := s.tracer.Start(gctx, "mercadopago.get_payment",
		trace.WithAttributes(attribute.String("payment.id", ref.PaymentID)))
	defer span.End()

	mpPayment, err := s.mpClient.GetPayment(gctx, ref.PaymentID)
	if err != nil {
		recordError(span, err)
		logger.Error("failed to get payment details from mercadopago",
			zap.Error(err),
			zap.String("mp_payment_id", ref.PaymentID),
		)
		return nil, err
	}

	outcome := domain.Outcome{
		PaymentID:         ref.PaymentID,
		GatewayStatus:     mpPayment.Status,
		StatusDetail:      mpPayment.StatusDetail,
		Outcome:           webhook.Classify(mpPayment.Status),
		ExternalReference: mpPayment.ExternalReference,
	}
	span.SetAttributes(attribute.String("payment.outcome", string(outcome.Outcome)))

	logger.Info("mercadopago payment details fetched",
		zap.String("mp_payment_id", outcome.PaymentID),
		zap.String("mp_status", outcome.GatewayStatus),
		zap.String("outcome", string(outcome.Outcome)),
		zap.String("external_reference", outcome.ExternalReference),
	)

	return &domain.ReconcileResult{Ref: ref, Actionable: true, Outcome: &outcome}, nil
}

// Dispatch hands the outcome to downstream collaborators in the background.
// It never blocks the webhook response.
func (s *PaymentService) Dispatch(ctx context.Context, outcome domain.Outcome) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.gatewayTimeout)
		defer cancel()
		s.processOutcome(dctx, outcome)
	}()
}

// Wait blocks until every dispatched outcome has been processed.
func (s *PaymentService) Wait() {
	s.inflight.Wait()
}

func (s *PaymentService) processOutcome(ctx context.Context, outcome domain.Outcome) {
	key := outcome.PaymentID + ":" + outcome.GatewayStatus
	marked := false
	if s.dedup != nil {
		first, err := s.dedup.MarkProcessed(ctx, key)
		switch {
		case err != nil:
			// keep going: a duplicate event is better than a lost one
			logger.Warn("webhook dedup check failed",
				zap.Error(err),
				zap.String("mp_payment_id", outcome.PaymentID),
			)
		case !first:
			logger.Info("duplicate payment notification skipped",
				zap.String("mp_payment_id", outcome.PaymentID),
				zap.String("mp_status", outcome.GatewayStatus),
			)
			return
		default:
			marked = true
		}
	}

	if s.outcomes != nil {
		s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome.Outcome))))
	}

	if s.eventPublisher == nil {
		return
	}

	err := s.eventPublisher.PublishOutcome(ctx, domain.OutcomeEvent{
		PaymentID:         outcome.PaymentID,
		ExternalReference: outcome.ExternalReference,
		Status:            outcome.Outcome,
		GatewayStatus:     outcome.GatewayStatus,
		ProcessedAt:       time.Now(),
	})
	if err != nil {
		logger.Error("failed to publish payment outcome to SNS",
			zap.Error(err),
			zap.String("mp_payment_id", outcome.PaymentID),
		)
		// the next notification for this payment and status must try again
		if marked {
			if err := s.dedup.Forget(ctx, key); err != nil {
				logger.Error("failed to release webhook dedup key",
					zap.Error(err),
					zap.String("key", key),
				)
			}
		}
		return
	}

	logger.Info("payment outcome published to SNS",
		zap.String("mp_payment_id", outcome.PaymentID),
		zap.String("outcome", string(outcome.Outcome)),
	)
}

// gatewayContext detaches the outbound call from the client connection: a
// caller hanging up must not abort a payment mid-flight. The call is still
// bounded by the gateway timeout.
func (s *PaymentService) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.gatewayTimeout)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
