package httpinterface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/pkg/signature"
)

const maxBodySize = 1 << 20

type callerKey struct{}

func callerFromContext(ctx context.Context) common.Address {
	caller, _ := ctx.Value(callerKey{}).(common.Address)
	return caller
}

// authenticator checks that requests are signed by the address they claim
// and puts the recovered address in the request context. Authorization of
// the caller is left to the application services.
type authenticator struct {
	maxSkew time.Duration
	now     func() time.Time
}

func (a authenticator) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, body, err := a.authenticate(r)
		if err != nil {
			log.WithError(err).Debugf(
				"rejected unauthenticated request %s %s", r.Method, r.URL.Path,
			)
			writeError(w, err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	}
}

func (a authenticator) authenticate(
	r *http.Request,
) (common.Address, []byte, error) {
	addressHeader := r.Header.Get(signature.HeaderAddress)
	timestampHeader := r.Header.Get(signature.HeaderTimestamp)
	signatureHeader := r.Header.Get(signature.HeaderSignature)
	if addressHeader == "" || timestampHeader == "" || signatureHeader == "" {
		return common.Address{}, nil, errMissingSignature
	}
	if !common.IsHexAddress(addressHeader) {
		return common.Address{}, nil, fmt.Errorf(
			"%w: malformed address", signature.ErrInvalidSignature,
		)
	}
	timestamp, err := strconv.ParseInt(strings.TrimSpace(timestampHeader), 10, 64)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf(
			"%w: malformed timestamp", signature.ErrInvalidSignature,
		)
	}
	skew := a.now().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > a.maxSkew {
		return common.Address{}, nil, errExpiredSignature
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("%w: %s", errInvalidRequest, err)
	}

	signer, err := signature.Recover(
		r.Method, r.URL.Path, timestamp, body, signatureHeader,
	)
	if err != nil {
		return common.Address{}, nil, err
	}
	if signer != common.HexToAddress(addressHeader) {
		return common.Address{}, nil, fmt.Errorf(
			"%w: signer does not match %s", signature.ErrInvalidSignature,
			signature.HeaderAddress,
		)
	}
	return signer, body, nil
}
