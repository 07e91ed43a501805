package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
	"roomfinder/internal/core/search"
)

// WriteJSONError отправляет ошибку в формате {"error": "..."}.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, errorResponse{Error: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError(map[string]string{"body": "invalid JSON body"})
	}
	return nil
}

// writeUseCaseError переводит ошибки сценариев в HTTP-статусы.
func writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var ve *domain.ValidationError
	var apiErr *domain.APIError

	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		route := port.LoginRoute
		if rd, ok := contextkeys.RedirectFromContext(r.Context()); ok && rd.Route() != "" {
			route = rd.Route()
		}
		w.Header().Set("Location", route)
		RespondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: "session expired, please log in again", Redirect: route})
	case errors.Is(err, domain.ErrNotAuthenticated):
		RespondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Redirect: port.LoginRoute})
	case errors.Is(err, domain.ErrLoginRequired):
		RespondWithJSON(w, http.StatusAccepted, errorResponse{Error: "registration succeeded, please log in", Redirect: port.LoginRoute})
	case errors.As(err, &ve):
		RespondWithJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, domain.ErrLandlordOnly), errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, search.ErrStaleResult):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, search.ErrNoActiveSearch):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConnection):
		logger.Warn("Backend unreachable", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadGateway, "connection error")
	case errors.As(err, &apiErr):
		WriteJSONError(w, http.StatusBadGateway, apiErr.Error())
	default:
		logger.Error("Unhandled use case error", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
