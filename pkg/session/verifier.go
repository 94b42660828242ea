package session

import (
	"context"
	"errors"

	"github.com/Mohanapavani03/agriconnect/pkg/directory"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

// Sentinel errors for stable error mapping across layers.
var (
	// ErrInvalidCode indicates the submitted one-time code did not verify.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrUnknownPhone indicates no profile is registered under the phone number.
	ErrUnknownPhone = errors.New("unknown phone number")
)

// Verifier checks a (phone, code) pair and resolves it to a profile.
// Implementations stand in for a real OTP/identity backend.
type Verifier interface {
	// Verify returns the profile registered under phone if code is valid.
	// The returned profile is a copy with Authenticated still false.
	Verify(ctx context.Context, phone, code string) (*model.Farmer, error)
}

// DemoVerifier accepts a single fixed code and resolves phones against the
// farmer directory. It is a placeholder for a real verification service.
type DemoVerifier struct {
	directory *directory.Directory
	code      string
}

// DefaultDemoCode is the demo one-time code accepted when none is configured.
const DefaultDemoCode = "123456"

// NewDemoVerifier creates a verifier over the given directory. An empty code
// falls back to DefaultDemoCode.
func NewDemoVerifier(dir *directory.Directory, code string) *DemoVerifier {
	if code == "" {
		code = DefaultDemoCode
	}
	return &DemoVerifier{directory: dir, code: code}
}

func (v *DemoVerifier) Verify(_ context.Context, phone, code string) (*model.Farmer, error) {
	if code != v.code {
		return nil, ErrInvalidCode
	}
	farmer := v.directory.ByPhone(phone)
	if farmer == nil {
		return nil, ErrUnknownPhone
	}
	return farmer, nil
}
