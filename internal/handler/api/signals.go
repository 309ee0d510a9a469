package api

import (
	"errors"
	"net/http"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/jobs"
	"TradePulse/internal/service/metrics"
	"TradePulse/internal/usecase"
	xhttp "TradePulse/pkg/http"
	xlogger "TradePulse/pkg/logger"
	"TradePulse/pkg/queue"

	"github.com/labstack/echo/v4"
)

// SignalsHandler serves the signal, backtest and candle endpoints.
type SignalsHandler struct {
	logger    *xlogger.Logger
	signals   *usecase.SignalsUseCase
	generator *usecase.SignalGeneratorUseCase
	backtests *usecase.BacktestUseCase
	candles   *usecase.CandlesUseCase
	queue     queue.QueueService
}

var _ xhttp.Handler = (*SignalsHandler)(nil)

func NewSignalsHandler(
	logger *xlogger.Logger,
	signals *usecase.SignalsUseCase,
	generator *usecase.SignalGeneratorUseCase,
	backtests *usecase.BacktestUseCase,
	candles *usecase.CandlesUseCase,
) *SignalsHandler {
	metrics.Register()
	return &SignalsHandler{
		logger:    logger,
		signals:   signals,
		generator: generator,
		backtests: backtests,
		candles:   candles,
	}
}

// SetQueue enables async generation and backtests via the job queue.
func (h *SignalsHandler) SetQueue(q queue.QueueService) { h.queue = q }

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals/latest", h.LatestSignals)
	g.POST("/signals/generate", h.GenerateSignal)
	g.POST("/backtest", h.Backtest)
	g.GET("/candles", h.Candles)
}

func (h *SignalsHandler) LatestSignals(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("signals_latest").Observe(time.Since(start).Seconds()) }()

	req := &models.LatestSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	activeOnly := req.Active == nil || *req.Active
	res, err := h.signals.Latest(c.Request().Context(), usecase.LatestSignalsParams{
		Symbol:     req.Symbol,
		Limit:      req.Limit,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		metrics.APIErrors.WithLabelValues("signals_latest").Inc()
		h.logger.Error("latest signals error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// GenerateSignalResponse reports the outcome of an on-demand evaluation.
// A skipped evaluation is a normal outcome, not an error.
type GenerateSignalResponse struct {
	Generated bool           `json:"generated"`
	Queued    bool           `json:"queued,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Signal    *models.Signal `json:"signal,omitempty"`
}

func (h *SignalsHandler) GenerateSignal(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("signals_generate").Observe(time.Since(start).Seconds()) }()

	req := &models.GenerateSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	if req.Async && h.queue != nil {
		payload := jobs.GenerateSignalPayload{Symbol: req.Symbol, TF: string(tf), Lookback: req.Lookback}
		if err := h.queue.PublishMessage(c.Request().Context(), jobs.TypeGenerateSignal, payload); err != nil {
			h.logger.Error("enqueue generation error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.DataResponse(c, http.StatusAccepted, &GenerateSignalResponse{Queued: true})
	}

	sig, skip, err := h.generator.Evaluate(c.Request().Context(), req.Symbol, tf, req.Lookback)
	if err != nil {
		metrics.APIErrors.WithLabelValues("signals_generate").Inc()
		h.logger.Error("generate signal error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	if sig == nil {
		return xhttp.SuccessResponse(c, &GenerateSignalResponse{Generated: false, Reason: skip})
	}
	return xhttp.SuccessResponse(c, &GenerateSignalResponse{Generated: true, Signal: sig})
}

func (h *SignalsHandler) Backtest(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("backtest").Observe(time.Since(start).Seconds()) }()

	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.backtests.Run(c.Request().Context(), req.Symbol, req.Days, tf)
	if err != nil {
		if errors.Is(err, domrepo.ErrInsufficientData) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("not enough history for %s %s", req.Symbol, tf).WithError(err))
		}
		metrics.APIErrors.WithLabelValues("backtest").Inc()
		h.logger.Error("backtest error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}

	usecase.SanitizeBacktestResult(res)
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Candles(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("candles").Observe(time.Since(start).Seconds()) }()

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.candles.Latest(c.Request().Context(), req.Symbol, req.N, tf)
	if err != nil {
		metrics.APIErrors.WithLabelValues("candles").Inc()
		h.logger.Error("candles error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
