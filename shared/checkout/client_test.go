package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/retouch-app/retouch/edit/domain"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "price_123", "http://localhost"); err == nil {
		t.Error("NewClient accepted an empty secret key")
	}
	if _, err := NewClient("sk_test", "", "http://localhost"); err == nil {
		t.Error("NewClient accepted an empty price id")
	}
	if _, err := NewClient("sk_test", "price_123", "http://localhost/"); err != nil {
		t.Errorf("NewClient rejected a valid configuration: %v", err)
	}
}

func TestCreateSessionRequiresToken(t *testing.T) {
	client, err := NewClient("sk_test", "price_123", "http://localhost")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.CreateSession(context.Background(), "", "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("CreateSession with empty token = %v, want ErrInvalidInput", err)
	}
}
