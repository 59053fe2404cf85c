package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bridge-node/modules/common/common_types"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

type accountParams struct {
	Owner string `validate:"required,hexadecimal,len=66"`
	Nonce string `validate:"omitempty,numeric"`
}

type numberParams struct {
	Number string `validate:"required,numeric"`
}

type eventsParams struct {
	Owner string `validate:"required,hexadecimal,len=66"`
	Limit string `validate:"omitempty,numeric"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, errorBody{msg})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("query failed", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeOption[T any](w http.ResponseWriter, value optional.Option[T], missing string) {
	v, err := value.Take()
	if err != nil {
		writeError(w, http.StatusNotFound, missing)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// parseUint validates a decimal path parameter.
func parseUint(w http.ResponseWriter, raw string) (uint64, bool) {
	if err := requestValidator.Struct(&numberParams{raw}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid number")
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid number")
		return 0, false
	}
	return n, true
}

func parseOwner(w http.ResponseWriter, params any, raw string) (common_types.AccountID, bool) {
	if err := requestValidator.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request parameters")
		return common_types.AccountID{}, false
	}
	owner, err := common_types.ParseAccountID(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return owner, false
	}
	return owner, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.ledger.Status(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleLatestToken(w http.ResponseWriter, r *http.Request) {
	supply, err := s.ledger.LatestToken(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeOption(w, supply, "ledger not initialized")
}

func (s *Server) handleTokenAt(w http.ResponseWriter, r *http.Request) {
	nonce, ok := parseUint(w, r.PathValue("nonce"))
	if !ok {
		return
	}
	supply, err := s.ledger.TokenAt(r.Context(), nonce)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeOption(w, supply, "no such token version")
}

func (s *Server) handleCurrentState(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("owner")
	owner, ok := parseOwner(w, &accountParams{Owner: raw}, raw)
	if !ok {
		return
	}
	state, err := s.ledger.CurrentState(r.Context(), owner)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeOption(w, state, "account has no state")
}

func (s *Server) handleStateAt(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("owner")
	params := &accountParams{Owner: raw, Nonce: r.PathValue("nonce")}
	owner, ok := parseOwner(w, params, raw)
	if !ok {
		return
	}
	nonce, ok := parseUint(w, params.Nonce)
	if !ok {
		return
	}
	state, err := s.ledger.StateAt(r.Context(), owner, nonce)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeOption(w, state, "no such account state")
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, http.StatusNotFound, "event index disabled")
		return
	}
	raw := r.PathValue("owner")
	params := &eventsParams{Owner: raw, Limit: r.URL.Query().Get("limit")}
	owner, ok := parseOwner(w, params, raw)
	if !ok {
		return
	}
	limit := int64(100)
	if params.Limit != "" {
		n, ok := parseUint(w, params.Limit)
		if !ok {
			return
		}
		limit = int64(min(n, 1000))
	}
	records, err := s.index.ListByAccount(r.Context(), owner.String(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	number, ok := parseUint(w, r.PathValue("number"))
	if !ok {
		return
	}
	record, err := s.ledger.BlockAt(r.Context(), number)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeOption(w, record, "no such block")
}
