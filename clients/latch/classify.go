package latch

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"latchbot/core"
)

// DefaultRetryAfter is used when a 429 response carries no usable Retry-After header
const DefaultRetryAfter = 60 * time.Second

// largest delay-seconds value that fits in a time.Duration
const maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)

// classifyResponse maps an HTTP response onto either a decoded body or a typed error.
// It is the only place that knows how status codes translate into error kinds.
func classifyResponse(status int, header http.Header, raw []byte, now time.Time) (map[string]any, *core.APIError) {
	if status >= 200 && status < 300 {
		return parseSuccessBody(raw), nil
	}

	body := parseErrorBody(raw)
	message := errorMessage(body)
	apiErr := &core.APIError{
		StatusCode: status,
		Body:       body,
		Code:       stringField(body, "code"),
	}

	switch {
	case status == http.StatusUnauthorized:
		apiErr.Kind = core.KindAuthentication
		apiErr.Reason = core.AuthReasonMissing
		apiErr.Message = "Invalid or missing authentication token"
	case status == http.StatusForbidden:
		apiErr.Kind = core.KindAuthentication
		switch apiErr.Code {
		case "TOKEN_EXPIRED":
			apiErr.Reason = core.AuthReasonExpired
			apiErr.Message = "Token has expired"
		case "BOT_INACTIVE":
			apiErr.Reason = core.AuthReasonInactive
			apiErr.Message = "Bot is not active"
		default:
			apiErr.Reason = core.AuthReasonDenied
			apiErr.Message = fmt.Sprintf("Access denied: %s", message)
		}
	case status == http.StatusNotFound:
		apiErr.Kind = core.KindNotFound
		apiErr.Message = message
	case status == http.StatusUnprocessableEntity:
		apiErr.Kind = core.KindValidation
		apiErr.Message = message
		apiErr.Errors = validationErrors(body)
	case status == http.StatusTooManyRequests:
		apiErr.Kind = core.KindRateLimit
		apiErr.Message = "Rate limit exceeded"
		apiErr.RetryAfter = parseRetryAfter(header.Get("Retry-After"), now)
	case status >= 500:
		apiErr.Kind = core.KindServer
		apiErr.Message = fmt.Sprintf("Server error: %s", message)
	default:
		apiErr.Kind = core.KindClient
		apiErr.Message = message
	}

	return nil, apiErr
}

func parseSuccessBody(raw []byte) map[string]any {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]any{"raw": string(raw)}
	}
	return body
}

func parseErrorBody(raw []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]any{"error": string(raw)}
	}
	return body
}

func errorMessage(body map[string]any) string {
	if msg := stringField(body, "error"); msg != "" {
		return msg
	}
	if msg := stringField(body, "message"); msg != "" {
		return msg
	}
	return "Unknown error"
}

func stringField(body map[string]any, key string) string {
	value, ok := body[key].(string)
	if !ok {
		return ""
	}
	return value
}

// validationErrors normalises {"errors": {"field": ["msg", ...]}}. Laravel style single
// string values are accepted too.
func validationErrors(body map[string]any) map[string][]string {
	result := map[string][]string{}

	fields, ok := body["errors"].(map[string]any)
	if !ok {
		return result
	}

	for field, value := range fields {
		switch v := value.(type) {
		case []any:
			messages := make([]string, 0, len(v))
			for _, item := range v {
				messages = append(messages, fmt.Sprint(item))
			}
			result[field] = messages
		case string:
			result[field] = []string{v}
		default:
			result[field] = []string{fmt.Sprint(v)}
		}
	}
	return result
}

// parseRetryAfter accepts delay-seconds or an HTTP-date
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfter
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		if seconds < 0 {
			return DefaultRetryAfter
		}
		return time.Duration(min(seconds, maxRetryAfterSeconds)) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		delay := at.Sub(now)
		if delay < 0 {
			return 0
		}
		return delay.Round(time.Second)
	}

	return DefaultRetryAfter
}
