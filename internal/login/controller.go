// Package login drives the mobile + OTP login modal: which screen is shown,
// the existence check, OTP send/verify/resend, the resend countdown and the
// hand-off to the session manager. It has no terminal code of its own; the
// tui package and Runner are thin adapters over Controller.Dispatch.
package login

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

//go:generate mockgen -destination=mocks/gateway_mock.go -package=mocks github.com/storefront/cli/internal/login Gateway

const (
	DefaultResendSeconds = 54
	DefaultOTPLength     = 6

	msgVerifyFailed     = "OTP verification failed"
	msgInvalidOTP       = "Invalid OTP"
	msgCheckUnavailable = "Unable to check this number right now. Please try again."
	msgSessionExpired   = "Your session expired. Please verify the OTP again."
)

var (
	// ErrFlowClosed is returned when the modal was closed before a response
	// arrived. The response is dropped.
	ErrFlowClosed = errors.New("login flow closed")
	// ErrBusy is returned while an earlier gateway call is still in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrInvalidTransition is returned for an action the current screen does not offer.
	ErrInvalidTransition = errors.New("invalid transition")
)

// Gateway is the part of the storefront API the login flow talks to.
type Gateway interface {
	CheckMobile(ctx context.Context, mobile string) (bool, error)
	SendOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, otp string) (*models.VerifyOTPResponse, error)
	UpdateProfile(ctx context.Context, token string, profile models.SignupProfile) error
	Profile(ctx context.Context, token string) (*models.Profile, error)
}

// Session receives the verified login.
type Session interface {
	Save(resp *models.VerifyOTPResponse) error
	SyncProfile(ctx context.Context, token string) bool
	AccessToken() string
	Clear() error
}

// Options tune a Controller. Zero values fall back to the defaults.
type Options struct {
	ResendSeconds int
	OTPLength     int
	Policy        ExistenceCheckUnavailablePolicy
	Logger        *zap.Logger
}

// Controller owns one login modal's FlowState. All methods are safe for
// concurrent use; the lock is never held across a gateway call.
type Controller struct {
	gateway       Gateway
	session       Session
	resendSeconds int
	otpLength     int
	policy        ExistenceCheckUnavailablePolicy
	logger        *zap.Logger

	mu        sync.Mutex
	state     FlowState
	countdown Countdown
	ctx       context.Context
	cancel    context.CancelFunc
	epoch     uint64
}

// NewController creates a closed controller. Call Open to start a flow.
func NewController(gateway Gateway, session Session, opts Options) *Controller {
	c := &Controller{
		gateway:       gateway,
		session:       session,
		resendSeconds: opts.ResendSeconds,
		otpLength:     opts.OTPLength,
		policy:        opts.Policy,
		logger:        opts.Logger,
	}
	if c.resendSeconds <= 0 {
		c.resendSeconds = DefaultResendSeconds
	}
	if c.otpLength <= 0 {
		c.otpLength = DefaultOTPLength
	}
	if c.policy == "" {
		c.policy = AssumeNewUser
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// OTPLength is the code length that triggers verification.
func (c *Controller) OTPLength() int {
	return c.otpLength
}

// State returns a copy of the current state.
func (c *Controller) State() FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Countdown returns the current countdown generation and whether ticks are
// still expected for it.
func (c *Controller) Countdown() (generation uint64, running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countdown.Generation(), c.countdown.Running()
}

// Open starts a fresh flow on the mobile screen. Every gateway call of the
// flow runs under a context derived from ctx and cancelled by Close.
func (c *Controller) Open(ctx context.Context) FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.state = FlowState{Open: true, Step: StepEnteringMobile}
	c.showLocked(ScreenMobile)
	c.syncCountdownLocked()
	return c.state.clone()
}

// Close cancels in-flight calls, stops the countdown and resets the state.
// Closing a closed flow does nothing.
func (c *Controller) Close() FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return c.state.clone()
}

func (c *Controller) closeLocked() {
	c.countdown.Stop()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
	c.state = FlowState{}
	c.countdown = Countdown{generation: c.countdown.generation}
}

// Show makes screen the only visible screen.
func (c *Controller) Show(screen Screen) FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Open {
		c.showLocked(screen)
	}
	return c.state.clone()
}

// showLocked is the single place screens change. Leaving OTP stops the
// countdown and drops the pending profile.
func (c *Controller) showLocked(screen Screen) {
	if c.state.Screen == ScreenOTP && screen != ScreenOTP {
		c.countdown.Stop()
	}
	c.state.Screen = screen
	c.state.BackVisible = screen != ScreenMobile
	if screen != ScreenOTP {
		c.state.PendingProfile = nil
		c.state.OTP = ""
		c.state.CompletionEnabled = false
	}
	c.syncCountdownLocked()
}

func (c *Controller) syncCountdownLocked() {
	remaining := c.countdown.Remaining()
	c.state.ResendSecondsRemaining = remaining
	c.state.ResendEnabled = remaining == 0
	if remaining == 0 {
		c.state.ResendLabel = ResendLabel
	} else {
		c.state.ResendLabel = fmt.Sprintf("%s in %ds", ResendLabel, remaining)
	}
}

// Back goes OTP -> SIGNUP (new user) or MOBILE, and SIGNUP -> MOBILE. It
// does nothing on MOBILE or once verified.
func (c *Controller) Back() (FlowState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Open {
		return c.state.clone(), ErrFlowClosed
	}
	if c.state.Busy {
		return c.state.clone(), ErrBusy
	}
	if c.state.Step == StepVerified {
		return c.state.clone(), nil
	}

	switch c.state.Screen {
	case ScreenOTP:
		if c.state.IsNewUser {
			c.state.Step = StepNewUserSignup
			c.showLocked(ScreenSignup)
		} else {
			c.state.Step = StepEnteringMobile
			c.showLocked(ScreenMobile)
		}
	case ScreenSignup:
		c.state.Step = StepEnteringMobile
		c.showLocked(ScreenMobile)
	}
	c.state.Message = ""
	return c.state.clone(), nil
}

// EditMobile returns to the mobile screen from anywhere before verification.
func (c *Controller) EditMobile() (FlowState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Open {
		return c.state.clone(), ErrFlowClosed
	}
	if c.state.Busy {
		return c.state.clone(), ErrBusy
	}
	if c.state.Step == StepVerified {
		return c.state.clone(), nil
	}
	c.state.Step = StepEnteringMobile
	c.state.Message = ""
	c.showLocked(ScreenMobile)
	return c.state.clone(), nil
}

// SubmitMobile validates the number and runs the existence check. Existing
// accounts go straight to OTP entry; everyone else goes to signup.
func (c *Controller) SubmitMobile(mobile string) (FlowState, error) {
	mobile = strings.TrimSpace(mobile)

	c.mu.Lock()
	if err := c.expectLocked(ScreenMobile); err != nil {
		return c.unlockWith(err)
	}
	if err := utils.ValidateMobile(mobile); err != nil {
		c.state.Message = userMessage(err)
		return c.unlockWith(err)
	}
	ctx, epoch, err := c.beginLocked()
	if err != nil {
		return c.unlockWith(err)
	}
	c.state.Mobile = mobile
	c.state.Step = StepCheckingExistence
	c.state.Message = ""
	c.mu.Unlock()

	exists, err := c.gateway.CheckMobile(ctx, mobile)

	c.mu.Lock()
	if !c.resumeLocked(epoch) {
		return c.unlockWith(ErrFlowClosed)
	}
	if err != nil {
		if c.policy == FailClosed {
			c.state.Busy = false
			c.state.Step = StepEnteringMobile
			c.state.Message = msgCheckUnavailable
			return c.unlockWith(err)
		}
		c.logger.Info("existence check unavailable, assuming new user",
			zap.String("mobile", utils.MaskMobile(mobile)),
			zap.Error(err),
		)
		exists = false
	}

	if !exists {
		c.state.Busy = false
		c.state.IsNewUser = true
		c.state.Step = StepNewUserSignup
		c.showLocked(ScreenSignup)
		return c.unlockWith(nil)
	}

	c.state.IsNewUser = false
	c.state.Step = StepExistingUserOTP
	c.mu.Unlock()

	c.sendOTP(ctx, mobile)

	c.mu.Lock()
	if !c.resumeLocked(epoch) {
		return c.unlockWith(ErrFlowClosed)
	}
	c.state.Busy = false
	c.enterOTPLocked(nil)
	return c.unlockWith(nil)
}

// SubmitSignup validates the signup form, keeps it as the pending profile
// and requests an OTP.
func (c *Controller) SubmitSignup(form SignupForm) (FlowState, error) {
	c.mu.Lock()
	if err := c.expectLocked(ScreenSignup); err != nil {
		return c.unlockWith(err)
	}
	if err := validateSignup(form); err != nil {
		c.state.Message = userMessage(err)
		return c.unlockWith(err)
	}
	ctx, epoch, err := c.beginLocked()
	if err != nil {
		return c.unlockWith(err)
	}
	mobile := c.state.Mobile
	c.state.Message = ""
	c.mu.Unlock()

	pending := &models.SignupProfile{
		FirstName:  strings.TrimSpace(form.Name),
		Email:      strings.TrimSpace(form.Email),
		Gender:     strings.TrimSpace(form.Gender),
		InviteCode: strings.TrimSpace(form.InviteCode),
	}

	c.sendOTP(ctx, mobile)

	c.mu.Lock()
	if !c.resumeLocked(epoch) {
		return c.unlockWith(ErrFlowClosed)
	}
	c.state.Busy = false
	c.enterOTPLocked(pending)
	return c.unlockWith(nil)
}

func validateSignup(form SignupForm) error {
	switch {
	case !form.Agree:
		return utils.NewValidationError("agree", "Please accept Terms and Conditions")
	case strings.TrimSpace(form.Gender) == "":
		return utils.NewValidationError("gender", "Please select gender")
	case strings.TrimSpace(form.Name) == "":
		return utils.NewValidationError("name", "Please enter name")
	case strings.TrimSpace(form.Email) == "":
		return utils.NewValidationError("email", "Please enter email")
	}
	return nil
}

func (c *Controller) enterOTPLocked(pending *models.SignupProfile) {
	c.state.Step = StepAwaitingOTP
	c.showLocked(ScreenOTP)
	c.state.OTP = ""
	c.state.CompletionEnabled = false
	if c.state.IsNewUser {
		c.state.PendingProfile = pending
	}
	c.countdown.Start(c.resendSeconds)
	c.syncCountdownLocked()
}

// RequestOTP asks the gateway to send a code to the current mobile. Failures
// are logged only; the user can resend.
func (c *Controller) RequestOTP() {
	c.mu.Lock()
	if !c.state.Open || c.state.Mobile == "" {
		c.mu.Unlock()
		return
	}
	ctx, mobile := c.ctx, c.state.Mobile
	c.mu.Unlock()

	c.sendOTP(ctx, mobile)
}

func (c *Controller) sendOTP(ctx context.Context, mobile string) {
	if err := c.gateway.SendOTP(ctx, mobile); err != nil {
		c.logger.Info("failed to send OTP",
			zap.String("mobile", utils.MaskMobile(mobile)),
			zap.Error(err),
		)
	}
}

// StartResendCountdown restarts the resend countdown at seconds and returns
// its generation.
func (c *Controller) StartResendCountdown(seconds int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.countdown.Start(seconds)
	c.syncCountdownLocked()
	return gen
}

// StopCountdown stops the resend countdown. It is safe to call repeatedly.
func (c *Controller) StopCountdown() FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.countdown.Stop()
	c.syncCountdownLocked()
	return c.state.clone()
}

// Tick applies one second of the countdown identified by generation. ok is
// false when the tick belongs to a stopped or replaced countdown.
func (c *Controller) Tick(generation uint64) (state FlowState, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok = c.countdown.Tick(generation); ok {
		c.syncCountdownLocked()
	}
	return c.state.clone(), ok
}

// InputOTP records the typed code and verifies it once it has exactly
// OTPLength characters.
func (c *Controller) InputOTP(value string) (FlowState, error) {
	value = strings.TrimSpace(value)

	c.mu.Lock()
	if err := c.expectLocked(ScreenOTP); err != nil {
		return c.unlockWith(err)
	}
	if c.state.Step == StepVerified {
		return c.unlockWith(nil)
	}
	c.state.OTP = value
	if len([]rune(value)) != c.otpLength {
		c.state.CompletionEnabled = false
		return c.unlockWith(nil)
	}
	c.mu.Unlock()

	return c.SubmitOTP(value)
}

// SubmitOTP verifies code. On rejection the flow stays on OTP with the
// gateway's message and the countdown untouched. On success the session is
// saved, a pending signup profile is sent once, the profile is re-read and
// the flow becomes VERIFIED.
func (c *Controller) SubmitOTP(code string) (FlowState, error) {
	code = strings.TrimSpace(code)

	c.mu.Lock()
	if err := c.expectLocked(ScreenOTP); err != nil {
		return c.unlockWith(err)
	}
	if c.state.Step == StepVerified {
		return c.unlockWith(nil)
	}
	ctx, epoch, err := c.beginLocked()
	if err != nil {
		return c.unlockWith(err)
	}
	mobile := c.state.Mobile
	var pending *models.SignupProfile
	if c.state.PendingProfile != nil {
		p := *c.state.PendingProfile
		pending = &p
	}
	c.mu.Unlock()

	resp, err := c.gateway.VerifyOTP(ctx, mobile, code)

	c.mu.Lock()
	if !c.resumeLocked(epoch) {
		return c.unlockWith(ErrFlowClosed)
	}
	if err != nil || resp == nil || !resp.Success {
		msg := verifyFailureMessage(resp, err)
		c.state.Busy = false
		c.state.CompletionEnabled = false
		c.state.Message = msg
		c.logger.Info("OTP verification rejected",
			zap.String("mobile", utils.MaskMobile(mobile)),
			zap.String("message", msg),
			zap.Error(err),
		)
		return c.unlockWith(&utils.OtpInvalidError{Message: msg})
	}
	if err := c.session.Save(resp); err != nil {
		c.state.Busy = false
		c.state.Message = "Unable to save your session"
		return c.unlockWith(fmt.Errorf("failed to save session: %w", err))
	}
	c.mu.Unlock()

	if pending != nil {
		if err := c.gateway.UpdateProfile(ctx, resp.Access, *pending); err != nil {
			c.logger.Info("failed to update profile after signup", zap.Error(err))
			if utils.IsAuthError(err) {
				if cerr := c.session.Clear(); cerr != nil {
					c.logger.Warn("failed to clear session", zap.Error(cerr))
				}
			}
		}
	}

	if c.session.AccessToken() == resp.Access && !c.session.SyncProfile(ctx, resp.Access) {
		c.logger.Info("profile sync after login failed")
	}

	c.mu.Lock()
	if !c.resumeLocked(epoch) {
		return c.unlockWith(ErrFlowClosed)
	}
	if c.session.AccessToken() != resp.Access {
		c.state.Busy = false
		c.state.OTP = ""
		c.state.CompletionEnabled = false
		c.state.Message = msgSessionExpired
		c.logger.Info("session rejected right after verification",
			zap.String("mobile", utils.MaskMobile(mobile)),
		)
		return c.unlockWith(utils.ErrAuthExpired)
	}
	c.countdown.Stop()
	c.syncCountdownLocked()
	c.state.Busy = false
	c.state.PendingProfile = nil
	c.state.Step = StepVerified
	c.state.CompletionEnabled = true
	c.state.Message = ""
	return c.unlockWith(nil)
}

func verifyFailureMessage(resp *models.VerifyOTPResponse, err error) string {
	var gwErr *utils.GatewayError
	if err != nil && errors.As(err, &gwErr) && gwErr.StatusCode == 0 {
		return msgVerifyFailed
	}
	if resp != nil {
		if m := strings.TrimSpace(resp.Message); m != "" {
			return m
		}
		return msgInvalidOTP
	}
	if err != nil && !utils.IsGatewayError(err) {
		return msgVerifyFailed
	}
	return msgInvalidOTP
}

// ResendOTP requests a new code and restarts the countdown. It does nothing
// while the countdown is still running.
func (c *Controller) ResendOTP() (FlowState, error) {
	c.mu.Lock()
	if err := c.expectLocked(ScreenOTP); err != nil {
		return c.unlockWith(err)
	}
	if c.state.Step == StepVerified || c.countdown.Remaining() > 0 {
		return c.unlockWith(nil)
	}
	ctx, epoch, err := c.beginLocked()
	if err != nil {
		return c.unlockWith(err)
	}
	mobile := c.state.Mobile
	c.mu.Unlock()

	c.sendOTP(ctx, mobile)

	c.mu.Lock()
	if !c.resumeLocked(epoch) {
		return c.unlockWith(ErrFlowClosed)
	}
	c.state.Busy = false
	c.countdown.Start(c.resendSeconds)
	c.syncCountdownLocked()
	return c.unlockWith(nil)
}

// Complete closes a verified flow. It does nothing until completion is enabled.
func (c *Controller) Complete() (FlowState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Open {
		return c.state.clone(), ErrFlowClosed
	}
	if !c.state.CompletionEnabled {
		return c.state.clone(), nil
	}
	c.closeLocked()
	return c.state.clone(), nil
}

// Dispatch applies one event and returns the resulting state.
func (c *Controller) Dispatch(ev Event) (FlowState, error) {
	switch e := ev.(type) {
	case MobileSubmitted:
		return c.SubmitMobile(e.Mobile)
	case SignupSubmitted:
		return c.SubmitSignup(e.Form)
	case OTPChanged:
		return c.InputOTP(e.Value)
	case ResendRequested:
		return c.ResendOTP()
	case BackPressed:
		return c.Back()
	case EditMobileRequested:
		return c.EditMobile()
	case TimerTicked:
		st, _ := c.Tick(e.Generation)
		return st, nil
	case CompleteRequested:
		return c.Complete()
	case Closed:
		return c.Close(), nil
	default:
		return c.State(), fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
	}
}

func (c *Controller) expectLocked(screen Screen) error {
	if !c.state.Open {
		return ErrFlowClosed
	}
	if c.state.Screen != screen {
		return fmt.Errorf("%w: %s is not available on %s", ErrInvalidTransition, screen, c.state.Screen)
	}
	return nil
}

// beginLocked marks a gateway call as in flight and returns the flow's
// context and epoch for resumeLocked.
func (c *Controller) beginLocked() (context.Context, uint64, error) {
	if c.state.Busy {
		return nil, 0, ErrBusy
	}
	c.state.Busy = true
	return c.ctx, c.epoch, nil
}

// resumeLocked reports whether the flow that started a call is still open
// and its context still live.
func (c *Controller) resumeLocked(epoch uint64) bool {
	return c.state.Open && c.epoch == epoch && c.ctx.Err() == nil
}

// unlockWith releases mu and returns a copy of the state with err.
func (c *Controller) unlockWith(err error) (FlowState, error) {
	st := c.state.clone()
	c.mu.Unlock()
	return st, err
}

func userMessage(err error) string {
	var vErr *utils.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}
