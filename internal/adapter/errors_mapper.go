package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/keychain"
	"github.com/askarin/fieldvault/internal/store"
)

// mapRecordError translates record endpoint responses back into the store
// sentinels, so callers of the remote repository match errors exactly as
// they would against a local one.
func mapRecordError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", store.ErrValidation, body)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return store.ErrRecordNotFound
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", store.ErrStoreUnavailable, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}

// mapGateError translates gate endpoint responses into the gate and store
// sentinels. A 401 carries two meanings: a rejected token or, on rekey, a
// wrong current secret — the body text disambiguates.
func mapGateError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	bodyLower := strings.ToLower(body)

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", keychain.ErrWeakSecret, body)
	case http.StatusUnauthorized:
		if strings.Contains(bodyLower, gate.ErrWrongSecret.Error()) {
			return gate.ErrWrongSecret
		}
		return ErrUnauthorized
	case http.StatusNotFound:
		return store.ErrVerifierNotFound
	case http.StatusConflict:
		return store.ErrVerifierAlreadySet
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", store.ErrStoreUnavailable, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}
