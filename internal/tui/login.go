// Package tui renders the login flow as a Bubble Tea program. The model is a
// thin adapter: every state change comes from the login.Controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/storefront/cli/internal/login"
	"github.com/storefront/cli/internal/utils"
)

// Signup field order for tab navigation.
const (
	fieldName = iota
	fieldEmail
	fieldGender
	fieldInvite
	fieldAgree
	fieldCount
)

// resultMsg carries the outcome of a controller call run as a command.
type resultMsg struct {
	state login.FlowState
	err   error
}

// tickMsg is one second of the resend countdown identified by generation.
type tickMsg struct {
	generation uint64
}

// Styles used by the login screen.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Box     lipgloss.Style
}

// DefaultStyles returns the login screen styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Label:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
	}
}

// LoginModel is the Bubble Tea model of the login modal.
type LoginModel struct {
	ctrl  *login.Controller
	state login.FlowState

	mobile textinput.Model
	otp    textinput.Model
	name   textinput.Model
	email  textinput.Model
	invite textinput.Model
	gender string
	agree  bool
	focus  int

	// pending is true while a controller call runs as a command.
	pending   bool
	message   string
	scheduled uint64
	verified  bool
	cancelled bool

	// TickInterval is the countdown granularity. Tests shorten it.
	TickInterval time.Duration
	styles       Styles
}

// NewLoginModel opens the flow on ctrl and returns the model for it.
func NewLoginModel(ctx context.Context, ctrl *login.Controller) LoginModel {
	mobile := textinput.New()
	mobile.Placeholder = "10 digit mobile number"
	mobile.CharLimit = 10
	mobile.Prompt = "+91 "
	mobile.Focus()

	otp := textinput.New()
	otp.Placeholder = strings.Repeat("•", ctrl.OTPLength())
	otp.CharLimit = ctrl.OTPLength()

	name := textinput.New()
	name.Placeholder = "Name"
	email := textinput.New()
	email.Placeholder = "Email"
	invite := textinput.New()
	invite.Placeholder = "Invite code (optional)"

	return LoginModel{
		ctrl:         ctrl,
		state:        ctrl.Open(ctx),
		mobile:       mobile,
		otp:          otp,
		name:         name,
		email:        email,
		invite:       invite,
		TickInterval: time.Second,
		styles:       DefaultStyles(),
	}
}

// Verified reports whether the flow finished with a saved session.
func (m LoginModel) Verified() bool { return m.verified }

// Cancelled reports whether the user closed the modal.
func (m LoginModel) Cancelled() bool { return m.cancelled }

// State returns the last state received from the controller.
func (m LoginModel) State() login.FlowState { return m.state }

// Init implements tea.Model.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.state = m.ctrl.Close()
			m.cancelled = true
			return m, tea.Quit
		}
		if m.pending {
			return m, nil
		}
		return m.handleKey(msg)

	case resultMsg:
		m.pending = false
		return m.apply(msg.state, msg.err)

	case tickMsg:
		st, ok := m.ctrl.Tick(msg.generation)
		if !ok {
			return m, nil
		}
		m.state = st
		if st.ResendSecondsRemaining > 0 {
			return m, m.tick(msg.generation)
		}
		return m, nil
	}
	return m, nil
}

func (m LoginModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.Step == login.StepVerified {
		if msg.Type == tea.KeyEnter {
			st, err := m.ctrl.Complete()
			m.state = st
			if err == nil && !st.Open {
				m.verified = true
				return m, tea.Quit
			}
		}
		return m, nil
	}

	switch m.state.Screen {
	case login.ScreenMobile:
		if msg.Type == tea.KeyEnter {
			return m.run(login.MobileSubmitted{Mobile: m.mobile.Value()})
		}
		var cmd tea.Cmd
		m.mobile, cmd = m.mobile.Update(msg)
		return m, cmd

	case login.ScreenSignup:
		return m.handleSignupKey(msg)

	case login.ScreenOTP:
		switch msg.Type {
		case tea.KeyCtrlR:
			return m.run(login.ResendRequested{})
		case tea.KeyCtrlE:
			return m.dispatch(login.EditMobileRequested{})
		case tea.KeyCtrlB:
			return m.dispatch(login.BackPressed{})
		}
		before := m.otp.Value()
		var cmd tea.Cmd
		m.otp, cmd = m.otp.Update(msg)
		value := m.otp.Value()
		if value == before {
			return m, cmd
		}
		if len([]rune(value)) == m.ctrl.OTPLength() {
			return m.run(login.OTPChanged{Value: value})
		}
		next, tickCmd := m.dispatch(login.OTPChanged{Value: value})
		return next, tea.Batch(cmd, tickCmd)
	}
	return m, nil
}

func (m LoginModel) handleSignupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlB:
		return m.dispatch(login.BackPressed{})
	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case tea.KeyEnter:
		return m.run(login.SignupSubmitted{Form: login.SignupForm{
			Agree:      m.agree,
			Gender:     m.gender,
			Name:       m.name.Value(),
			Email:      m.email.Value(),
			InviteCode: m.invite.Value(),
		}})
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldName:
		m.name, cmd = m.name.Update(msg)
	case fieldEmail:
		m.email, cmd = m.email.Update(msg)
	case fieldInvite:
		m.invite, cmd = m.invite.Update(msg)
	case fieldGender:
		if g := login.NormalizeGender(msg.String()); g != "" {
			m.gender = g
		}
	case fieldAgree:
		if msg.Type == tea.KeySpace || strings.EqualFold(msg.String(), "y") {
			m.agree = !m.agree
		}
	}
	return m, cmd
}

func (m *LoginModel) setFocus(field int) {
	m.focus = field
	for i, in := range []*textinput.Model{&m.name, &m.email, nil, &m.invite} {
		if in == nil {
			continue
		}
		if i == field {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// run dispatches ev as a command so gateway calls never block Update. Keys
// are ignored until its resultMsg arrives.
func (m LoginModel) run(ev login.Event) (tea.Model, tea.Cmd) {
	m.pending = true
	m.message = ""
	ctrl := m.ctrl
	return m, func() tea.Msg {
		st, err := ctrl.Dispatch(ev)
		return resultMsg{state: st, err: err}
	}
}

// dispatch applies an event that never reaches the gateway.
func (m LoginModel) dispatch(ev login.Event) (LoginModel, tea.Cmd) {
	st, err := m.ctrl.Dispatch(ev)
	next, cmd := m.apply(st, err)
	return next.(LoginModel), cmd
}

func (m LoginModel) apply(st login.FlowState, err error) (tea.Model, tea.Cmd) {
	prev := m.state.Screen
	m.state = st
	m.message = ""

	if err != nil {
		if errors.Is(err, login.ErrFlowClosed) {
			m.cancelled = true
			return m, tea.Quit
		}
		if errors.Is(err, utils.ErrAuthExpired) {
			m.otp.Reset()
		}
		var otpErr *utils.OtpInvalidError
		switch {
		case errors.As(err, &otpErr):
			m.message = otpErr.Message
		case st.Message != "":
			m.message = st.Message
		case !errors.Is(err, login.ErrBusy):
			m.message = err.Error()
		}
	}

	if st.Screen != prev {
		m.enterScreen(st.Screen)
	}
	cmd := m.scheduleTicks()
	return m, cmd
}

func (m *LoginModel) enterScreen(screen login.Screen) {
	m.mobile.Blur()
	m.otp.Blur()
	m.setFocus(-1)
	switch screen {
	case login.ScreenMobile:
		m.mobile.Focus()
	case login.ScreenSignup:
		m.setFocus(fieldName)
	case login.ScreenOTP:
		m.otp.Reset()
		m.otp.Focus()
	}
}

// scheduleTicks starts the tick chain once per countdown generation.
func (m *LoginModel) scheduleTicks() tea.Cmd {
	gen, running := m.ctrl.Countdown()
	if !running || gen == m.scheduled {
		return nil
	}
	m.scheduled = gen
	return m.tick(gen)
}

func (m LoginModel) tick(gen uint64) tea.Cmd {
	return tea.Tick(m.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{generation: gen}
	})
}

// View implements tea.Model.
func (m LoginModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Welcome to Storefront"))
	b.WriteString("\n\n")

	if m.state.Step == login.StepVerified {
		b.WriteString(m.styles.Success.Render("✓ Verified"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("enter: start shopping • esc: close"))
		return m.styles.Box.Render(b.String())
	}

	switch m.state.Screen {
	case login.ScreenMobile:
		b.WriteString(m.styles.Label.Render("Enter Mobile Number"))
		b.WriteString("\n")
		b.WriteString(m.mobile.View())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("enter: continue • esc: close"))

	case login.ScreenSignup:
		b.WriteString(m.styles.Label.Render("Signup"))
		b.WriteString("\n")
		b.WriteString(m.name.View() + "\n")
		b.WriteString(m.email.View() + "\n")
		b.WriteString(m.choice(fieldGender, "Gender (f/m)", m.genderLabel()) + "\n")
		b.WriteString(m.invite.View() + "\n")
		b.WriteString(m.choice(fieldAgree, "I agree to Terms and Conditions", checkbox(m.agree)) + "\n\n")
		b.WriteString(m.styles.Muted.Render("tab: next field • enter: send OTP • ctrl+b: back"))

	case login.ScreenOTP:
		b.WriteString(m.styles.Label.Render("Verify with OTP"))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Sent to " + utils.MaskMobile(m.state.Mobile)))
		b.WriteString("\n")
		b.WriteString(m.otp.View())
		b.WriteString("\n")
		if m.state.ResendEnabled {
			b.WriteString(m.state.ResendLabel + " (ctrl+r)")
		} else {
			b.WriteString(m.styles.Muted.Render(m.state.ResendLabel))
		}
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("ctrl+e: change number • ctrl+b: back"))
	}

	if m.pending {
		b.WriteString("\n" + m.styles.Muted.Render("Please wait…"))
	}
	if m.message != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.message))
	}
	return m.styles.Box.Render(b.String())
}

func (m LoginModel) choice(field int, label, value string) string {
	cursor := "  "
	if m.focus == field {
		cursor = "> "
	}
	return fmt.Sprintf("%s%s: %s", cursor, label, value)
}

func (m LoginModel) genderLabel() string {
	if m.gender == "" {
		return "-"
	}
	return m.gender
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// RunLogin runs the login modal on the terminal until the user is verified
// or closes it.
func RunLogin(ctx context.Context, ctrl *login.Controller, opts ...tea.ProgramOption) error {
	model := NewLoginModel(ctx, ctrl)
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(model, opts...).Run()
	ctrl.Close()
	if err != nil {
		return fmt.Errorf("login screen failed: %w", err)
	}
	if m, ok := final.(LoginModel); ok && m.Verified() {
		return nil
	}
	return login.ErrLoginCancelled
}
