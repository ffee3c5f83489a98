package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestErrorIs(t *testing.T) {
	err := ErrEmptyDocument.WithContext("document_id", "d1")

	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("errors.Is should match the sentinel after WithContext")
	}
	if errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("errors.Is must not match a different sentinel")
	}
}

func TestWithContextDoesNotMutateSentinel(t *testing.T) {
	before := len(ErrDegenerateClass.Context)

	derived := ErrDegenerateClass.WithContext("toxic_docs", 0)
	if len(ErrDegenerateClass.Context) != before {
		t.Errorf("WithContext mutated the shared sentinel")
	}
	if derived.Context["toxic_docs"] != 0 {
		t.Errorf("derived error missing context entry: %v", derived.Context)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := WrapInternal(cause, "failed to persist model")

	if !errors.Is(err, cause) {
		t.Errorf("wrapped error should unwrap to its cause")
	}
	if err.Type != ErrInternal {
		t.Errorf("wrapped type = %v, want ErrInternal", err.Type)
	}

	if Wrap(nil, ErrInternal, "noop") != nil {
		t.Errorf("Wrap(nil) should return nil")
	}

	// 包装已有的 *Error 保持其类型和业务码。
	rewrapped := Wrap(ErrEmptyCorpus, ErrInternal, "while training")
	if !errors.Is(rewrapped, ErrEmptyCorpus) {
		t.Errorf("rewrapping should preserve the original sentinel identity")
	}
}

func TestStatusMapping(t *testing.T) {
	if got := ErrEmptyDocument.HTTPStatus(); got != http.StatusBadRequest {
		t.Errorf("ErrEmptyDocument HTTPStatus() = %d, want 400", got)
	}
	if got := ErrModelNotTrained.HTTPStatus(); got != http.StatusInternalServerError {
		t.Errorf("ErrModelNotTrained HTTPStatus() = %d, want 500", got)
	}
	if got := ErrModelNotTrained.GRPCCode(); got != codes.Unavailable {
		t.Errorf("ErrModelNotTrained GRPCCode() = %v, want Unavailable", got)
	}
	if st := ErrInvalidPrior.ToGRPCStatus(); st.Code() != codes.InvalidArgument {
		t.Errorf("ErrInvalidPrior gRPC status code = %v, want InvalidArgument", st.Code())
	}
}

func TestCaptureStack(t *testing.T) {
	err := Internal("boom", nil)
	if len(err.Stack) == 0 {
		t.Errorf("constructed error should carry a stack trace")
	}
}
