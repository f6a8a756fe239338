package trail

// Icon is a marker drawn next to a node.
type Icon int

const (
	IconATM Icon = iota
	IconBurst
	IconHold
	IconCheque
	IconIncoming
	IconRepeated
)

// Glyph returns the emoji drawn for the icon.
func (i Icon) Glyph() string {
	switch i {
	case IconATM:
		return "💳"
	case IconBurst:
		return "💥"
	case IconHold:
		return "🔒"
	case IconCheque:
		return "🎫"
	case IconIncoming:
		return "📥"
	case IconRepeated:
		return "🔁"
	}
	return "?"
}

// Title names the icon's info panel.
func (i Icon) Title() string {
	switch i {
	case IconATM:
		return "ATM Withdrawal"
	case IconBurst:
		return "Burst Account"
	case IconHold:
		return "Put on Hold"
	case IconCheque:
		return "Cheque Withdrawal"
	case IconIncoming:
		return "Incoming Transfers"
	case IconRepeated:
		return "Repeated Transfers"
	}
	return ""
}

// Icons returns the markers for n in display order.
func (n *Node) Icons() []Icon {
	if n == nil || n.Data == nil {
		return nil
	}
	var icons []Icon
	d := n.Data
	if d.ATM != nil {
		icons = append(icons, IconATM)
	}
	if n.Burst {
		icons = append(icons, IconBurst)
	}
	if d.Hold != nil {
		icons = append(icons, IconHold)
	}
	if d.Cheque != nil {
		icons = append(icons, IconCheque)
	}
	if len(d.IncomingFrom) > 1 {
		icons = append(icons, IconIncoming)
	}
	if len(d.UniqueParentTxns()) > 1 {
		icons = append(icons, IconRepeated)
	}
	return icons
}
