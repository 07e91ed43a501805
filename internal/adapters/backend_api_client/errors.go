package backend_api_client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"roomfinder/internal/core/domain"
)

// errorEnvelope - поле detail бывает строкой, списком ошибок полей или объектом.
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldErrorDTO struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeErrorResponse превращает неуспешный ответ в ошибку домена.
// 400 и 422 считаются ошибками валидации, остальное - APIError.
func decodeErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	validation := resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity

	var list []fieldErrorDTO
	if err := json.Unmarshal(env.Detail, &list); err == nil && len(list) > 0 {
		fields := make(map[string]string, len(list))
		msgs := make([]string, 0, len(list))
		for _, fe := range list {
			fields[fieldName(fe.Loc)] = fe.Msg
			msgs = append(msgs, fe.Msg)
		}
		if validation {
			ve := domain.NewValidationError(fields)
			ve.Message = strings.Join(msgs, ", ")
			return ve
		}
		return &domain.APIError{StatusCode: resp.StatusCode, Detail: strings.Join(msgs, ", ")}
	}

	detail := detailMessage(env.Detail)
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}

	if validation {
		return &domain.ValidationError{Fields: map[string]string{}, Message: detail}
	}
	return &domain.APIError{StatusCode: resp.StatusCode, Detail: detail}
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// fastapi-users: {"code": "...", "reason": "..."}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if reason, ok := obj["reason"].(string); ok && reason != "" {
			return reason
		}
		if code, ok := obj["code"].(string); ok && code != "" {
			return code
		}
	}
	return string(raw)
}

// fieldName берет последний строковый элемент loc: ["body", "email"] -> "email".
func fieldName(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		if s, ok := loc[i].(string); ok && s != "body" && s != "query" {
			return s
		}
	}
	if len(loc) > 0 {
		return fmt.Sprint(loc[len(loc)-1])
	}
	return "request"
}
