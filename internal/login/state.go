package login

import (
	"fmt"

	"github.com/storefront/cli/internal/models"
)

// Screen is the visible login screen. Exactly one is current at a time.
type Screen int

const (
	ScreenMobile Screen = iota
	ScreenSignup
	ScreenOTP
)

func (s Screen) String() string {
	switch s {
	case ScreenMobile:
		return "MOBILE"
	case ScreenSignup:
		return "SIGNUP"
	case ScreenOTP:
		return "OTP"
	default:
		return fmt.Sprintf("Screen(%d)", int(s))
	}
}

// Step is the position in the OTP state machine.
type Step int

const (
	StepEnteringMobile Step = iota
	StepCheckingExistence
	StepExistingUserOTP
	StepNewUserSignup
	StepAwaitingOTP
	StepVerified
)

func (s Step) String() string {
	switch s {
	case StepEnteringMobile:
		return "ENTERING_MOBILE"
	case StepCheckingExistence:
		return "CHECKING_EXISTENCE"
	case StepExistingUserOTP:
		return "EXISTING_USER_OTP"
	case StepNewUserSignup:
		return "NEW_USER_SIGNUP"
	case StepAwaitingOTP:
		return "AWAITING_OTP"
	case StepVerified:
		return "VERIFIED"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// ResendLabel is shown once the countdown has run out.
const ResendLabel = "Resend OTP"

// FlowState is the full state of one login modal. It is created by Open and
// reset by Close; callers receive copies.
type FlowState struct {
	Open   bool
	Screen Screen
	Step   Step

	Mobile    string
	IsNewUser bool

	// PendingProfile is only set while IsNewUser and Screen == ScreenOTP.
	PendingProfile *models.SignupProfile

	OTP                    string
	ResendSecondsRemaining int
	ResendEnabled          bool
	ResendLabel            string
	BackVisible            bool
	CompletionEnabled      bool

	// Busy is true while a gateway call started by this flow is in flight.
	Busy    bool
	Message string
}

func (s FlowState) clone() FlowState {
	if s.PendingProfile != nil {
		p := *s.PendingProfile
		s.PendingProfile = &p
	}
	return s
}

// SignupForm is what the signup screen collects.
type SignupForm struct {
	Agree      bool
	Gender     string
	Name       string
	Email      string
	InviteCode string
}

// Event is an input to Controller.Dispatch.
type Event interface {
	event()
}

type (
	MobileSubmitted     struct{ Mobile string }
	SignupSubmitted     struct{ Form SignupForm }
	OTPChanged          struct{ Value string }
	ResendRequested     struct{}
	BackPressed         struct{}
	EditMobileRequested struct{}
	TimerTicked         struct{ Generation uint64 }
	CompleteRequested   struct{}
	Closed              struct{}
)

func (MobileSubmitted) event()     {}
func (SignupSubmitted) event()     {}
func (OTPChanged) event()          {}
func (ResendRequested) event()     {}
func (BackPressed) event()         {}
func (EditMobileRequested) event() {}
func (TimerTicked) event()         {}
func (CompleteRequested) event()   {}
func (Closed) event()              {}
