package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/familybudget/core/telegram/state"
)

// Conversation steps in the order they are visited.
const (
	StateTitle    state.State = "title"
	StateCategory state.State = "category"
	StateWho      state.State = "who"
	StateAccount  state.State = "account"
	StateAmount   state.State = "amount"
	StateCurrency state.State = "currency"
	StateDate     state.State = "date"
	// StateEnd is terminal and folds back to state.StateIdle immediately.
	StateEnd state.State = "end"
)

// Order lists the active steps from first to last.
var Order = []state.State{StateTitle, StateCategory, StateWho, StateAccount, StateAmount, StateCurrency, StateDate}

// Callback payload prefixes understood by the steps.
const (
	PrefixCategory = "category_"
	PrefixWho      = "who_"
	PrefixAccount  = "account_"
	PrefixCurrency = "currency_"
	PrefixCalendar = "calendar-"
)

type inputKind int

const (
	inputText inputKind = iota + 1
	inputCallback
)

func (k inputKind) String() string {
	switch k {
	case inputText:
		return "text"
	case inputCallback:
		return "callback"
	}
	return "unknown"
}

// errBadInput marks input a step cannot use. The session is left as is.
var errBadInput = errors.New("conversation: malformed input")

// stepFunc records input into the draft and builds the replies. advance is
// false when the step stays where it is, as with calendar navigation.
type stepFunc func(m *Machine, ctx context.Context, s *Session, input string) (replies []Reply, advance bool, err error)

type transition struct {
	input  inputKind
	prefix string
	next   state.State
	handle stepFunc
}

var transitions = map[state.State]transition{
	StateTitle:    {input: inputText, next: StateCategory, handle: (*Machine).onTitle},
	StateCategory: {input: inputCallback, prefix: PrefixCategory, next: StateWho, handle: (*Machine).onCategory},
	StateWho:      {input: inputCallback, prefix: PrefixWho, next: StateAccount, handle: (*Machine).onWho},
	StateAccount:  {input: inputCallback, prefix: PrefixAccount, next: StateAmount, handle: (*Machine).onAccount},
	StateAmount:   {input: inputText, next: StateCurrency, handle: (*Machine).onAmount},
	StateCurrency: {input: inputCallback, prefix: PrefixCurrency, next: StateDate, handle: (*Machine).onCurrency},
	StateDate:     {input: inputCallback, prefix: PrefixCalendar, next: StateEnd, handle: (*Machine).onDate},
}

// Validate checks that every step has exactly one well-formed transition
// leading to the following step.
func Validate() error {
	if len(transitions) != len(Order) {
		return fmt.Errorf("conversation: %d transitions for %d steps", len(transitions), len(Order))
	}
	seen := map[string]state.State{}
	for i, st := range Order {
		tr, ok := transitions[st]
		if !ok {
			return fmt.Errorf("conversation: no transition for %q", st)
		}
		want := StateEnd
		if i+1 < len(Order) {
			want = Order[i+1]
		}
		if tr.next != want {
			return fmt.Errorf("conversation: %q leads to %q, want %q", st, tr.next, want)
		}
		if tr.handle == nil {
			return fmt.Errorf("conversation: %q has no handler", st)
		}
		switch tr.input {
		case inputText:
			if tr.prefix != "" {
				return fmt.Errorf("conversation: text step %q has a callback prefix", st)
			}
		case inputCallback:
			if tr.prefix == "" {
				return fmt.Errorf("conversation: callback step %q has no prefix", st)
			}
			if other, dup := seen[tr.prefix]; dup {
				return fmt.Errorf("conversation: prefix %q shared by %q and %q", tr.prefix, other, st)
			}
			seen[tr.prefix] = st
		default:
			return fmt.Errorf("conversation: %q has unknown input kind", st)
		}
	}
	return nil
}

// Prefixes returns the callback prefixes of all steps in step order.
func Prefixes() []string {
	var out []string
	for _, st := range Order {
		if p := transitions[st].prefix; p != "" {
			out = append(out, p)
		}
	}
	return out
}
