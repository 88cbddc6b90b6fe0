package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	webhookpubsub "github.com/tdex-network/futarchy-daemon/internal/infrastructure/pubsub/webhook"
	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
	"github.com/tdex-network/futarchy-daemon/pkg/signature"
)

var (
	errMissingSignature = errors.New("missing signature headers")
	errExpiredSignature = errors.New("signature timestamp out of range")
	errInvalidRequest   = errors.New("invalid request")
	errNotImplemented   = errors.New("not supported by the settlement ledger")
)

type errorInfo struct {
	status int
	code   string
}

// errorsInfo maps every known error to its http status and code. Order
// matters: the first match wins, so wrapping errors come after the errors
// they may wrap.
var errorsInfo = []struct {
	err  error
	info errorInfo
}{
	{errMissingSignature, errorInfo{http.StatusUnauthorized, "UNAUTHENTICATED"}},
	{errExpiredSignature, errorInfo{http.StatusUnauthorized, "UNAUTHENTICATED"}},
	{signature.ErrInvalidSignature, errorInfo{http.StatusUnauthorized, "UNAUTHENTICATED"}},
	{domain.ErrUnauthorized, errorInfo{http.StatusForbidden, "UNAUTHORIZED"}},

	{domain.ErrMarketNotFound, errorInfo{http.StatusNotFound, "MARKET_NOT_FOUND"}},
	{domain.ErrMarketAlreadyExists, errorInfo{http.StatusConflict, "MARKET_ALREADY_EXISTS"}},
	{domain.ErrMarketTradingClosed, errorInfo{http.StatusConflict, "TRADING_CLOSED"}},
	{domain.ErrMarketTradingOngoing, errorInfo{http.StatusConflict, "TRADING_ONGOING"}},
	{domain.ErrMarketAlreadyResolved, errorInfo{http.StatusConflict, "MARKET_ALREADY_RESOLVED"}},
	{domain.ErrMarketNotResolved, errorInfo{http.StatusConflict, "MARKET_NOT_RESOLVED"}},

	{domain.ErrInsufficientShares, errorInfo{http.StatusUnprocessableEntity, "INSUFFICIENT_SHARES"}},
	{domain.ErrInsufficientFunds, errorInfo{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"}},
	{domain.ErrZeroOutput, errorInfo{http.StatusUnprocessableEntity, "ZERO_OUTPUT"}},
	{domain.ErrNoWinnings, errorInfo{http.StatusUnprocessableEntity, "NO_WINNINGS"}},
	{mathutil.ErrOverflow, errorInfo{http.StatusUnprocessableEntity, "ARITHMETIC_OVERFLOW"}},
	{mathutil.ErrUnderflow, errorInfo{http.StatusUnprocessableEntity, "ARITHMETIC_UNDERFLOW"}},
	{mathutil.ErrDivisionByZero, errorInfo{http.StatusUnprocessableEntity, "DIVISION_BY_ZERO"}},
	{domain.ErrTransferFailed, errorInfo{http.StatusBadGateway, "TRANSFER_FAILED"}},

	{domain.ErrInvalidOracle, errorInfo{http.StatusBadRequest, "INVALID_ORACLE"}},
	{domain.ErrInvalidSide, errorInfo{http.StatusBadRequest, "INVALID_SIDE"}},
	{domain.ErrInvalidOutcome, errorInfo{http.StatusBadRequest, "INVALID_OUTCOME"}},
	{domain.ErrMarketInvalidTradingPeriod, errorInfo{http.StatusBadRequest, "INVALID_TRADING_PERIOD"}},
	{domain.ErrMarketInvalidSeedLiquidity, errorInfo{http.StatusBadRequest, "INVALID_SEED_LIQUIDITY"}},
	{errInvalidRequest, errorInfo{http.StatusBadRequest, "INVALID_REQUEST"}},

	{pubsub.ErrInvalidTopic, errorInfo{http.StatusBadRequest, "INVALID_REQUEST"}},
	{webhookpubsub.ErrMissingTopic, errorInfo{http.StatusBadRequest, "INVALID_REQUEST"}},
	{webhookpubsub.ErrInvalidEndpoint, errorInfo{http.StatusBadRequest, "INVALID_REQUEST"}},
	{webhookpubsub.ErrSubscriptionNotFound, errorInfo{http.StatusNotFound, "WEBHOOK_NOT_FOUND"}},

	{errNotImplemented, errorInfo{http.StatusNotImplemented, "NOT_IMPLEMENTED"}},
}

var internalError = errorInfo{http.StatusInternalServerError, "INTERNAL"}

func getErrorInfo(err error) errorInfo {
	for _, e := range errorsInfo {
		if errors.Is(err, e.err) {
			return e.info
		}
	}
	return internalError
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	info := getErrorInfo(err)
	msg := err.Error()
	if info == internalError {
		log.WithError(err).Error("internal error")
		msg = "internal error"
	}
	writeJSON(w, info.status, errorResponse{msg, info.code})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
