package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/invoke"
)

// PhaseFeed carries invocation snapshots from the dispatcher to the studio.
// Pass Observe to invoke.WithObserver when building the session.
type PhaseFeed chan invoke.Invocation

// NewPhaseFeed returns a buffered feed.
func NewPhaseFeed() PhaseFeed { return make(PhaseFeed, 64) }

// Observe forwards inv without blocking the dispatcher. Snapshots are
// dropped when the studio falls behind; the final state always arrives with
// the invocation's own completion message.
func (f PhaseFeed) Observe(inv invoke.Invocation) {
	select {
	case f <- inv:
	default:
	}
}

// StudioConfig is what RunStudio needs.
type StudioConfig struct {
	Ctx      context.Context
	Session  *invoke.Session
	Feed     PhaseFeed // optional
	Contract string
	Address  string
	Network  string
}

type studioFocus int

const (
	focusFunctions studioFocus = iota
	focusFields
)

type (
	phaseMsg      invoke.Invocation
	invocationMsg struct{ inv *invoke.Invocation }
	invokeErrMsg  struct{ err error }
	feedClosedMsg struct{}
)

// StudioModel is the interactive invocation studio: a function list, one
// text field per parameter with live validation, a result panel and the gas
// leaderboard. Invocations run in commands, so editing continues while
// transactions confirm.
type StudioModel struct {
	cfg   StudioConfig
	fns   []contract.Function
	order []int // indexes into fns: reads first, then writes

	cursor int // position in order
	focus  studioFocus
	field  int // position in fieldsOf(current function)

	latest   map[string]invoke.Invocation // function -> most recent invocation
	notice   string
	quitting bool
}

// NewStudio builds the model for cfg.
func NewStudio(cfg StudioConfig) StudioModel {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	m := StudioModel{
		cfg:    cfg,
		fns:    cfg.Session.Interface().Functions,
		latest: make(map[string]invoke.Invocation),
	}
	var writes []int
	for i, fn := range m.fns {
		if fn.IsRead() {
			m.order = append(m.order, i)
		} else {
			writes = append(writes, i)
		}
	}
	m.order = append(m.order, writes...)
	return m
}

func (m StudioModel) Init() tea.Cmd { return m.waitFeed() }

func (m StudioModel) waitFeed() tea.Cmd {
	if m.cfg.Feed == nil {
		return nil
	}
	feed := m.cfg.Feed
	return func() tea.Msg {
		inv, ok := <-feed
		if !ok {
			return feedClosedMsg{}
		}
		return phaseMsg(inv)
	}
}

func (m StudioModel) current() (contract.Function, bool) {
	if len(m.order) == 0 {
		return contract.Function{}, false
	}
	return m.fns[m.order[m.cursor]], true
}

// fieldsOf lists the editable field indexes of fn: its parameters in order,
// then the value field when fn is payable.
func fieldsOf(fn contract.Function) []int {
	out := make([]int, 0, len(fn.Inputs)+1)
	for i := range fn.Inputs {
		out = append(out, i)
	}
	if fn.Mutability == contract.Payable {
		out = append(out, invoke.ValueIndex)
	}
	return out
}

func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case phaseMsg:
		m.track(invoke.Invocation(msg))
		return m, m.waitFeed()
	case invocationMsg:
		m.track(*msg.inv)
		return m, nil
	case invokeErrMsg:
		m.notice = msg.err.Error()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// track records inv unless a newer invocation of the same function is
// already shown.
func (m *StudioModel) track(inv invoke.Invocation) {
	cur, ok := m.latest[inv.Function]
	if ok && cur.ID != inv.ID && cur.Started.After(inv.Started) {
		return
	}
	m.latest[inv.Function] = inv
}

func (m StudioModel) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	fn, ok := m.current()

	switch key.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+x":
		m.cfg.Session.ResetAll()
		m.latest = make(map[string]invoke.Invocation)
		m.notice = "cleared all inputs and the gas leaderboard"
		return m, nil
	case "ctrl+r":
		if ok {
			m.cfg.Session.Reset(fn.Name)
			delete(m.latest, fn.Name)
			m.notice = "cleared " + fn.Name
		}
		return m, nil
	}
	if !ok {
		if key.String() == "q" || key.String() == "esc" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if m.focus == focusFunctions {
		switch key.String() {
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.order)-1 {
				m.cursor++
			}
		case "tab", "right", "l":
			if len(fieldsOf(fn)) > 0 {
				m.focus = focusFields
				m.field = 0
			}
		case "enter":
			if len(fieldsOf(fn)) > 0 && !m.filled(fn) {
				m.focus = focusFields
				m.field = 0
				return m, nil
			}
			return m, m.invoke(fn.Name)
		}
		return m, nil
	}

	fields := fieldsOf(fn)
	index := fields[m.field]
	switch key.Type {
	case tea.KeyEsc:
		m.focus = focusFunctions
	case tea.KeyTab, tea.KeyDown:
		m.field = (m.field + 1) % len(fields)
	case tea.KeyShiftTab, tea.KeyUp:
		m.field = (m.field + len(fields) - 1) % len(fields)
	case tea.KeyEnter:
		return m, m.invoke(fn.Name)
	case tea.KeyBackspace:
		text := []rune(m.cfg.Session.Input(fn.Name, index))
		if len(text) > 0 {
			m.edit(fn.Name, index, string(text[:len(text)-1]))
		}
	case tea.KeyCtrlU:
		m.edit(fn.Name, index, "")
	case tea.KeySpace:
		m.edit(fn.Name, index, m.cfg.Session.Input(fn.Name, index)+" ")
	case tea.KeyRunes:
		m.edit(fn.Name, index, m.cfg.Session.Input(fn.Name, index)+string(key.Runes))
	}
	return m, nil
}

func (m StudioModel) edit(fn string, index int, raw string) {
	// The field error is kept by the session and rendered from there.
	_ = m.cfg.Session.Edit(fn, index, raw)
}

// filled reports whether any field of fn has text.
func (m StudioModel) filled(fn contract.Function) bool {
	return len(m.cfg.Session.Inputs(fn.Name)) > 0
}

func (m StudioModel) invoke(name string) tea.Cmd {
	session, ctx := m.cfg.Session, m.cfg.Ctx
	return func() tea.Msg {
		inv, err := session.Invoke(ctx, name)
		if err != nil {
			return invokeErrMsg{err}
		}
		return invocationMsg{inv}
	}
}

// ── View ─────────────────────────────────────────────────────────────────────

const studioWidth = 72

func (m StudioModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder

	title := "  Contract Studio  ·  " + m.cfg.Contract
	if m.cfg.Network != "" {
		title += "  ·  " + m.cfg.Network
	}
	sb.WriteString(StyleTitle.Render(title) + "\n")
	if m.cfg.Address != "" {
		sb.WriteString("  " + StyleMeta.Render("Address ") + StyleAddress.Render(m.cfg.Address) + "\n")
	}
	sb.WriteString("\n")

	if len(m.order) == 0 {
		sb.WriteString(Warn("this contract has no callable functions") + "\n")
		return sb.String()
	}

	m.viewFunctions(&sb)
	fn, _ := m.current()
	m.viewForm(&sb, fn)
	m.viewResult(&sb, fn)
	m.viewLeaderboard(&sb)

	if m.notice != "" {
		sb.WriteString(Info(m.notice) + "\n\n")
	}
	sb.WriteString(m.controls() + "\n")
	return sb.String()
}

func section(title string) string {
	hdr := "  ── " + title + " "
	fill := studioWidth - len([]rune(hdr))
	if fill < 0 {
		fill = 0
	}
	return StyleHeader.Render(hdr) + StyleMeta.Render(strings.Repeat("─", fill)) + "\n"
}

func (m StudioModel) viewFunctions(sb *strings.Builder) {
	reads := 0
	for _, i := range m.order {
		if m.fns[i].IsRead() {
			reads++
		}
	}
	for pos, i := range m.order {
		fn := m.fns[i]
		if pos == 0 && reads > 0 {
			sb.WriteString(section(fmt.Sprintf("Read (%d)", reads)))
		}
		if pos == reads {
			sb.WriteString(section(fmt.Sprintf("Write (%d)", len(m.order)-reads)))
		}

		name := StyleInfo.Render(fn.Name)
		if !fn.IsRead() {
			name = StyleWarning.Render(fn.Name)
		}
		prefix := "    "
		if pos == m.cursor {
			prefix = "  ▸ "
		}
		line := fmt.Sprintf("%s%s  %s(%s)", prefix, StyleMeta.Render(fn.Entry.Selector()), name, StyleMeta.Render(paramSig(fn.Inputs)))
		if fn.Mutability == contract.Payable {
			line += StyleMeta.Render("  payable")
		}
		if inv, ok := m.latest[fn.Name]; ok && !inv.Phase.Terminal() {
			line += "  " + StyleWarning.Render("⠿ "+inv.Phase.String())
		}
		if pos == m.cursor && m.focus == focusFunctions {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func (m StudioModel) viewForm(sb *strings.Builder, fn contract.Function) {
	fields := fieldsOf(fn)
	sb.WriteString(section(fn.Entry.Signature()))
	if len(fields) == 0 {
		sb.WriteString("    " + StyleMeta.Render("no inputs, press Enter to call") + "\n\n")
		return
	}
	errs := m.cfg.Session.Errors(fn.Name)
	for pos, index := range fields {
		focused := m.focus == focusFields && pos == m.field
		label, hint := fieldLabel(fn, index)

		text := m.cfg.Session.Input(fn.Name, index)
		if focused {
			text += "█"
		}
		style := StyleField
		if focused {
			style = StyleFieldFocused
		}
		sb.WriteString(fmt.Sprintf("    %-24s %s\n", StyleValue.Render(label), style.Render(text)))

		if msg, bad := errs[index]; bad {
			sb.WriteString("    " + StyleError.Render("  ✗ "+firstLine(msg)) + "\n")
		} else if focused && hint != "" {
			sb.WriteString("    " + StyleMeta.Render("  "+hint) + "\n")
		}
	}
	sb.WriteString("\n")
}

func (m StudioModel) viewResult(sb *strings.Builder, fn contract.Function) {
	inv, ok := m.latest[fn.Name]
	if !ok {
		return
	}
	sb.WriteString(section("Result"))
	switch inv.Phase {
	case invoke.Completed:
		if inv.Outcome.Kind == invoke.WriteReceipt {
			sb.WriteString("    " + Success("confirmed") + "  " + StyleAddress.Render(inv.Outcome.TxHash) + "\n")
			sb.WriteString("    " + StyleMeta.Render("gas used ") + StyleValue.Render(fmt.Sprint(inv.Outcome.GasUsed)) + "\n")
		} else {
			for _, l := range strings.Split(inv.Outcome.Message(), "\n") {
				sb.WriteString("    " + StyleValue.Render(l) + "\n")
			}
		}
	case invoke.Aborted:
		sb.WriteString("    " + Warn(fmt.Sprintf("not sent: %d field(s) need fixing", len(inv.Errors))) + "\n")
	case invoke.Failed:
		sb.WriteString("    " + Err(firstLine(inv.Outcome.Message())) + "\n")
	case invoke.AwaitingConfirmation:
		sb.WriteString("    " + StyleWarning.Render("awaiting confirmation ") + StyleAddress.Render(inv.TxHash) + "\n")
	default:
		sb.WriteString("    " + StyleWarning.Render(inv.Phase.String()+"…") + "\n")
	}
	sb.WriteString("\n")
}

func (m StudioModel) viewLeaderboard(sb *strings.Builder) {
	records := m.cfg.Session.Ledger().Sorted()
	if len(records) == 0 {
		return
	}
	sb.WriteString(section("Gas leaderboard"))
	for _, l := range strings.Split(strings.TrimRight(Leaderboard(records).Render(), "\n"), "\n") {
		sb.WriteString("    " + l + "\n")
	}
	sb.WriteString("\n")
}

func (m StudioModel) controls() string {
	if m.focus == focusFields {
		return StyleMeta.Render("  [ tab/↑↓ ] field   ") +
			StyleInfo.Render("[ Enter ]") + StyleMeta.Render(" call   [ esc ] functions   [ ctrl+r ] reset function   [ ctrl+x ] reset all")
	}
	return StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ tab ] edit   ") +
		StyleInfo.Render("[ Enter ]") + StyleMeta.Render(" call   [ ctrl+r ] reset   [ ctrl+x ] reset all   [ q ] quit")
}

// fieldLabel returns the label and input hint for one field of fn.
func fieldLabel(fn contract.Function, index int) (string, string) {
	if index == invoke.ValueIndex {
		return "value (ETH)", "amount to send, e.g. 0.5 (empty sends 0)"
	}
	p := fn.Inputs[index]
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("arg%d", index)
	}
	if p.Err != nil {
		return name + " " + p.Type.String(), "this type cannot be entered here"
	}
	return name + " " + p.Type.String(), InputHint(p.Type)
}

// InputHint describes how to type a value of t.
func InputHint(t contract.Type) string {
	switch t.Kind {
	case contract.KindArray:
		if t.Elem.Kind == contract.KindTuple {
			return `JSON list of tuples, e.g. [[1, "Alice"], [2, "Bob"]]`
		}
		if t.Elem.Kind == contract.KindArray {
			return "JSON nested list, e.g. [[1,2],[3]]"
		}
		return "comma-separated, e.g. " + strings.Join([]string{example(*t.Elem), example(*t.Elem)}, ",")
	case contract.KindTuple:
		return `JSON list of components, e.g. [1, "Alice"]`
	case contract.KindUint:
		return "whole number, e.g. 42"
	case contract.KindInt:
		return "whole number, e.g. -42"
	case contract.KindBool:
		return "true or false"
	case contract.KindAddress:
		return "0x followed by 40 hex characters"
	case contract.KindString:
		return "any text"
	case contract.KindBytes:
		return "0x-prefixed hex, e.g. 0x1234"
	}
	return ""
}

func example(t contract.Type) string {
	switch t.Kind {
	case contract.KindBool:
		return "true"
	case contract.KindAddress:
		return "0xAbC…"
	case contract.KindString:
		return "a"
	case contract.KindBytes:
		return "0x12"
	}
	return "1"
}

func paramSig(params []contract.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type.String()
		if p.Name != "" {
			parts[i] += " " + p.Name
		}
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// RunStudio runs the studio full screen until the user quits.
func RunStudio(cfg StudioConfig) error {
	_, err := tea.NewProgram(NewStudio(cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("studio: %w", err)
	}
	return nil
}
