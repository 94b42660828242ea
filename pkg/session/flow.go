package session

import (
	"context"
	"errors"
	"strings"

	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

// Stage is the position of a login attempt in the two-step phone/OTP flow.
type Stage int

const (
	// StageAwaitingPhone expects a phone number.
	StageAwaitingPhone Stage = iota
	// StageAwaitingCode expects a one-time code for the submitted phone.
	StageAwaitingCode
)

// ErrWrongStage indicates an input was submitted out of order.
var ErrWrongStage = errors.New("input submitted at wrong login stage")

// ErrEmptyPhone indicates a blank phone number submission.
var ErrEmptyPhone = errors.New("phone number is empty")

// LoginFlow models the two-step login exchange explicitly: phone first, then
// code. There are no hidden transitions; a failed code submission stays at
// StageAwaitingCode so the user can retry, and Reset returns to the start.
type LoginFlow struct {
	store *Store
	stage Stage
	phone string
}

// NewLoginFlow creates a flow bound to the given session store.
func NewLoginFlow(store *Store) *LoginFlow {
	return &LoginFlow{store: store}
}

// Stage returns the current flow position.
func (f *LoginFlow) Stage() Stage {
	return f.stage
}

// SubmitPhone records the phone number and advances to the code stage.
func (f *LoginFlow) SubmitPhone(phone string) error {
	if f.stage != StageAwaitingPhone {
		return ErrWrongStage
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrEmptyPhone
	}
	f.phone = phone
	f.stage = StageAwaitingCode
	return nil
}

// SubmitCode attempts the login with the recorded phone and the given code.
// On success the flow resets to the phone stage for a future login.
func (f *LoginFlow) SubmitCode(ctx context.Context, code string) (*model.Farmer, error) {
	if f.stage != StageAwaitingCode {
		return nil, ErrWrongStage
	}
	farmer, err := f.store.Login(ctx, f.phone, code)
	if err != nil {
		return nil, err
	}
	f.Reset()
	return farmer, nil
}

// Reset returns the flow to the phone stage, discarding any recorded phone.
func (f *LoginFlow) Reset() {
	f.stage = StageAwaitingPhone
	f.phone = ""
}
