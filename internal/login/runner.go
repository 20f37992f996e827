package login

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/storefront/cli/internal/utils"
)

// ErrLoginCancelled is returned by Runner.Run when input ends before the
// flow is verified.
var ErrLoginCancelled = errors.New("login cancelled")

// Runner drives a Controller with plain line prompts. It is used when stdin
// is not a terminal.
type Runner struct {
	ctrl *Controller
	in   *bufio.Scanner
	out  io.Writer

	// TickInterval is the countdown granularity. Tests shorten it.
	TickInterval time.Duration

	wg        sync.WaitGroup
	scheduled uint64
}

// NewRunner creates a line-mode runner reading answers from in.
func NewRunner(ctrl *Controller, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		ctrl:         ctrl,
		in:           bufio.NewScanner(in),
		out:          out,
		TickInterval: time.Second,
	}
}

// Run opens the flow and prompts until the user is verified, input ends or
// ctx is cancelled. The countdown goroutine is always stopped before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		r.wg.Wait()
	}()

	st := r.ctrl.Open(ctx)
	defer r.ctrl.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.scheduleTicks(ctx)

		ev, err := r.next(st)
		if err != nil {
			return err
		}

		next, err := r.ctrl.Dispatch(ev)
		if _, done := ev.(CompleteRequested); done && err == nil && !next.Open {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrFlowClosed) {
				return err
			}
			r.report(next, err)
		} else if typed, ok := ev.(OTPChanged); ok && next.Step == StepAwaitingOTP && len([]rune(strings.TrimSpace(typed.Value))) != r.ctrl.OTPLength() {
			fmt.Fprintf(r.out, "Enter the %d digit OTP\n", r.ctrl.OTPLength())
		}
		st = next
	}
}

// next prompts for whatever the current screen needs.
func (r *Runner) next(st FlowState) (Event, error) {
	if st.Step == StepVerified {
		fmt.Fprintln(r.out, "✓ Verified")
		return CompleteRequested{}, nil
	}

	switch st.Screen {
	case ScreenSignup:
		return r.readSignup()

	case ScreenOTP:
		cur := r.ctrl.State()
		fmt.Fprintf(r.out, "OTP sent to %s  [%s]\n", utils.MaskMobile(cur.Mobile), cur.ResendLabel)
		line, err := r.prompt("OTP (r = resend, e = change number, b = back): ")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(line) {
		case "r", "resend":
			if !r.ctrl.State().ResendEnabled {
				fmt.Fprintf(r.out, "%s\n", r.ctrl.State().ResendLabel)
			}
			return ResendRequested{}, nil
		case "e", "edit":
			return EditMobileRequested{}, nil
		case "b", "back":
			return BackPressed{}, nil
		}
		return OTPChanged{Value: line}, nil

	default:
		line, err := r.prompt("Mobile number: ")
		if err != nil {
			return nil, err
		}
		return MobileSubmitted{Mobile: line}, nil
	}
}

func (r *Runner) readSignup() (Event, error) {
	fmt.Fprintln(r.out, "New here? Tell us about yourself (type 'back' to change the number).")

	name, err := r.prompt("Name: ")
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(name, "back") {
		return BackPressed{}, nil
	}
	email, err := r.prompt("Email: ")
	if err != nil {
		return nil, err
	}
	gender, err := r.prompt("Gender (F/M): ")
	if err != nil {
		return nil, err
	}
	invite, err := r.prompt("Invite code (optional): ")
	if err != nil {
		return nil, err
	}
	agree, err := r.prompt("Accept Terms and Conditions? [y/N]: ")
	if err != nil {
		return nil, err
	}

	return SignupSubmitted{Form: SignupForm{
		Agree:      strings.EqualFold(agree, "y") || strings.EqualFold(agree, "yes"),
		Gender:     NormalizeGender(gender),
		Name:       name,
		Email:      email,
		InviteCode: invite,
	}}, nil
}

// NormalizeGender maps f/female and m/male onto the values the gateway
// stores. Anything else is returned as "".
func NormalizeGender(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "female":
		return "Female"
	case "m", "male":
		return "Male"
	}
	return ""
}

func (r *Runner) prompt(label string) (string, error) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		fmt.Fprintln(r.out)
		return "", ErrLoginCancelled
	}
	return strings.TrimSpace(r.in.Text()), nil
}

func (r *Runner) report(st FlowState, err error) {
	var otpErr *utils.OtpInvalidError
	switch {
	case errors.As(err, &otpErr):
		fmt.Fprintf(r.out, "✗ %s\n", otpErr.Message)
	case st.Message != "":
		fmt.Fprintf(r.out, "✗ %s\n", st.Message)
	default:
		fmt.Fprintf(r.out, "✗ %v\n", err)
	}
}

// scheduleTicks starts one ticker goroutine per countdown generation.
func (r *Runner) scheduleTicks(ctx context.Context) {
	gen, running := r.ctrl.Countdown()
	if !running || gen == r.scheduled {
		return
	}
	r.scheduled = gen

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st, ok := r.ctrl.Tick(gen)
				if !ok || st.ResendSecondsRemaining == 0 {
					return
				}
			}
		}
	}()
}
