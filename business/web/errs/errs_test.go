package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/RyanLatimer/Corundum/business/web/errs"
)

func Test_Trusted(t *testing.T) {
	errBase := errors.New("insufficient balance")

	err := fmt.Errorf("submit: %w", errs.BadRequest(errBase))

	if !errs.IsTrusted(err) {
		t.Fatalf("Should find the trusted error in the chain.")
	}

	te := errs.GetTrusted(err)
	if te.Status != http.StatusBadRequest {
		t.Logf("got: %d", te.Status)
		t.Logf("exp: %d", http.StatusBadRequest)
		t.Fatalf("Should carry the status code.")
	}

	if !errors.Is(err, errBase) {
		t.Fatalf("Should be able to match the wrapped error.")
	}

	if errs.IsTrusted(errBase) {
		t.Fatalf("Should not treat a plain error as trusted.")
	}

	if errs.GetTrusted(errBase) != nil {
		t.Fatalf("Should not return a trusted value for a plain error.")
	}
}
