package conversation

// ReplyKind tells the transport how to deliver a Reply.
type ReplyKind int

const (
	// Send posts a new message.
	Send ReplyKind = iota
	// Edit replaces the text of the message that carried the pressed button.
	// A nil Keyboard removes the buttons.
	Edit
	// EditKeyboard replaces only the buttons of that message.
	EditKeyboard
)

func (k ReplyKind) String() string {
	switch k {
	case Send:
		return "send"
	case Edit:
		return "edit"
	case EditKeyboard:
		return "edit_keyboard"
	}
	return "unknown"
}

// Button is an inline button. Data is the callback payload.
type Button struct {
	Text string
	Data string
}

// Reply is one outgoing message.
type Reply struct {
	Kind     ReplyKind
	Text     string
	Keyboard [][]Button
}

// Menu callback payloads.
const (
	CallbackAddTransaction = "add_transaction"
	CallbackAccountStatus  = "account_status"
	CallbackFamilyStatus   = "family_status"
	CallbackProfile        = "profile"
)

// User-facing texts.
const (
	MsgMenu            = "Please choose:"
	MsgAuthFailed      = "Authentication failed."
	MsgSignIn          = "Send /start to sign in."
	MsgNotSignedIn     = "You are not signed in. " + MsgSignIn
	MsgEnterTitle      = "Add new transaction:\n  Enter the title of the transaction:"
	MsgSelectCategory  = "Select a category:"
	MsgChoosePerson    = "Choose a person:"
	MsgSelectAccount   = "Select an account:"
	MsgChooseAccount   = "Choose an account:"
	MsgSelectCurrency  = "Select a currency:"
	MsgChooseDate      = "Please choose a date:"
	MsgTxAdded         = "Transaction successfully added."
	MsgTxFailed        = "Transaction failed to add."
	MsgCancelled       = "Transaction cancelled."
	MsgNothingToCancel = "There is nothing to cancel."
	MsgUseButtons      = "Please use the buttons above, or /cancel."
)

// MenuKeyboard is the main menu shown after sign-in.
func MenuKeyboard() [][]Button {
	return [][]Button{
		{{Text: "Add Transaction", Data: CallbackAddTransaction}},
		{{Text: "Account Status", Data: CallbackAccountStatus}},
		{{Text: "Family Status", Data: CallbackFamilyStatus}},
		{{Text: "Profile", Data: CallbackProfile}},
	}
}

func menuReply() Reply {
	return Reply{Kind: Send, Text: MsgMenu, Keyboard: MenuKeyboard()}
}

func column(buttons []Button) [][]Button {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return rows
}
