package httpinterface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/btc-address-daemon/internal/core/application"
	"github.com/tdex-network/btc-address-daemon/pkg/wallet"
)

const (
	welcomeMessage = "Welcome to bitcoin address server"
	maxBodySize    = 1 << 20
)

type seedRequest struct {
	Seed string `json:"seed"`
}

type pubkeyRequest struct {
	PublicKey string `json:"public_key"`
}

type multisigRequest struct {
	M          uint8    `json:"m"`
	N          uint8    `json:"n"`
	PublicKeys []string `json:"public_keys"`
}

type addressResponse struct {
	PublicKey string `json:"public_key,omitempty"`
	Address   string `json:"address"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type addressHandler struct {
	addressSvc application.AddressService
}

func newAddressHandler(addressSvc application.AddressService) *addressHandler {
	return &addressHandler{addressSvc}
}

func (h *addressHandler) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(welcomeMessage))
}

func (h *addressHandler) segwitFromSeed(w http.ResponseWriter, r *http.Request) {
	req := seedRequest{}
	if !decodeRequest(w, r, &req) {
		return
	}

	addr, err := h.addressSvc.DeriveSegwitAddress(r.Context(), req.Seed)
	writeAddress(w, addr, err)
}

func (h *addressHandler) legacyFromSeed(w http.ResponseWriter, r *http.Request) {
	req := seedRequest{}
	if !decodeRequest(w, r, &req) {
		return
	}

	addr, err := h.addressSvc.DeriveLegacyAddress(r.Context(), req.Seed)
	writeAddress(w, addr, err)
}

func (h *addressHandler) segwitFromPublicKey(w http.ResponseWriter, r *http.Request) {
	req := pubkeyRequest{}
	if !decodeRequest(w, r, &req) {
		return
	}

	addr, err := h.addressSvc.DeriveSegwitAddressFromPublicKey(
		r.Context(), req.PublicKey,
	)
	writeAddress(w, addr, err)
}

func (h *addressHandler) multisig(w http.ResponseWriter, r *http.Request) {
	req := multisigRequest{}
	if !decodeRequest(w, r, &req) {
		return
	}

	addr, err := h.addressSvc.DeriveMultisigAddress(
		r.Context(), application.MultisigRequest{
			M:          req.M,
			N:          req.N,
			PublicKeys: req.PublicKeys,
		},
	)
	writeAddress(w, addr, err)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %s", err))
		return false
	}
	return true
}

func writeAddress(w http.ResponseWriter, addr *wallet.Address, err error) {
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}

	res := addressResponse{Address: addr.Value}
	if addr.PublicKey != nil {
		res.PublicKey = addr.PublicKey.String()
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFromError(err error) int {
	if application.IsValidationError(err) {
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.WithError(err).Warn("failed to serve request")
	}
	writeJSON(w, status, errorResponse{err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Debug("failed to write response")
	}
}
