package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// DetailsOptions controls the account details report.
type DetailsOptions struct {
	Ack         string
	GeneratedAt time.Time // zero omits the timestamp line
}

// DetailsMarkdown renders the Transaction Details Report for one account.
func DetailsMarkdown(n *trail.Node, opts DetailsOptions) string {
	var sb strings.Builder
	sb.WriteString("# Transaction Details Report\n\n")
	if ack := strings.TrimSpace(opts.Ack); ack != "" {
		fmt.Fprintf(&sb, "**Acknowledgement No:** %s\n\n", escapeCell(ack))
	}
	if !opts.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "*Generated: %s*\n\n", opts.GeneratedAt.Format(time.RFC1123))
	}
	if n == nil || n.Data == nil {
		sb.WriteString("No transaction details available.\n")
		return sb.String()
	}
	d := n.Data

	branch := d.Branch
	if strings.TrimSpace(branch) == "" {
		branch = "Unknown"
	}

	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	row(&sb, "Layer", displayLayer(n))
	row(&sb, "Account", model.OrNA(d.Name.Value))
	row(&sb, "IFSC", model.OrNA(d.IFSC))
	row(&sb, "Branch", branch)
	row(&sb, "Bank/FI", model.OrNA(d.Bank))
	row(&sb, "Date", model.OrNA(d.Date))
	row(&sb, "Txn ID", model.OrNA(d.TxnID))
	row(&sb, "Amount", model.FormatINR(d.Amount.OrZero()))
	row(&sb, "Disputed", model.FormatINR(d.Disputed.OrZero()))
	if d.Action != "" {
		row(&sb, "Action", d.Action)
	}
	sb.WriteString("\n")

	if d.HasKYC() {
		sb.WriteString("## KYC\n\n| Field | Value |\n|-------|-------|\n")
		row(&sb, "Name", deref(d.KYCName))
		row(&sb, "Aadhar", deref(d.KYCAadhar))
		row(&sb, "Mobile", deref(d.KYCMobile))
		row(&sb, "Address", deref(d.KYCAddress))
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n*Confidential - For Official Use Only*\n")
	return sb.String()
}

// IconMarkdown renders the info panel opened from a node's icon.
func IconMarkdown(t *trail.Tree, n *trail.Node, icon trail.Icon) string {
	if n == nil || n.Data == nil {
		return ""
	}
	d := n.Data
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s %s\n\n", icon.Glyph(), icon.Title())

	switch icon {
	case trail.IconATM:
		if d.ATM == nil {
			break
		}
		field(&sb, "Account", d.Name.Value)
		field(&sb, "ATM ID", d.ATM.ID)
		if d.ATM.Location != "" {
			field(&sb, "ATM Location", d.ATM.Location)
		}
		field(&sb, "Amount", model.FormatINR(d.ATM.Amount.OrZero()))
		field(&sb, "Date", model.OrNA(d.ATM.Date))

	case trail.IconBurst:
		fmt.Fprintf(&sb, "This account has %d child transactions.\n\n", n.BurstCount)
		sb.WriteString("Expansion is disabled to keep the trail readable. Use search to reach a specific account.\n")

	case trail.IconHold:
		if d.Hold == nil {
			break
		}
		victim := model.NotAvailable
		if path := t.PathTo(n); len(path) > 1 {
			victim = model.OrNA(path[1].ID())
		}
		field(&sb, "Layer", displayLayer(n))
		field(&sb, "Victim Acc No", victim)
		field(&sb, "Put on hold Acc no", model.OrNA(d.Name.Value))
		field(&sb, "Put on hold by", model.OrNA(d.Bank))
		field(&sb, "Put on hold Amount", model.FormatINR(d.Hold.Amount.OrZero()))
		if d.Hold.Date != "" {
			field(&sb, "Date", d.Hold.Date)
		}

	case trail.IconCheque:
		if d.Cheque == nil {
			break
		}
		field(&sb, "Account", d.Name.Value)
		field(&sb, "Cheque No", d.Cheque.Number)
		field(&sb, "Amount", model.FormatINR(d.Cheque.Amount.OrZero()))
		field(&sb, "IFSC", model.OrNA(d.Cheque.IFSC))
		field(&sb, "Date", model.OrNA(d.Cheque.Date))

	case trail.IconIncoming:
		fmt.Fprintf(&sb, "**Received from %d Accounts**\n\n", len(d.IncomingFrom))
		for _, in := range d.IncomingFrom {
			fmt.Fprintf(&sb, "- **From:** %s, **Amt:** %s, **Date:** %s\n",
				model.OrNA(in.From), model.FormatINR(in.Amount.OrZero()), model.OrNA(in.Date))
		}

	case trail.IconRepeated:
		txns := d.UniqueParentTxns()
		fmt.Fprintf(&sb, "**%d Transactions between nodes**\n\n", len(txns))
		field(&sb, "Total Amount", model.FormatINR(d.RepeatedTotal()))
		for _, txn := range txns {
			fmt.Fprintf(&sb, "- **Txn ID:** %s, **Amount:** %s, **Date:** %s\n",
				model.OrNA(txn.TxnID), model.FormatINR(txn.Amount.OrZero()), model.OrNA(txn.Date))
		}
	}
	return sb.String()
}

// SummaryMarkdown renders the whole-trail overview.
func SummaryMarkdown(s trail.Summary, ack string) string {
	var sb strings.Builder
	sb.WriteString("# Fund Trail Summary\n\n")
	if ack = strings.TrimSpace(ack); ack != "" {
		fmt.Fprintf(&sb, "**Acknowledgement No:** %s\n\n", escapeCell(ack))
	}

	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	row(&sb, "Accounts", fmt.Sprint(s.Accounts))
	row(&sb, "Transfers", fmt.Sprint(s.Transfers))
	row(&sb, "Deepest layer", fmt.Sprint(max(s.MaxLayer-2, 0)))
	row(&sb, "Put on hold", fmt.Sprintf("%d (%s)", s.Holds, model.FormatINR(s.HoldAmount)))
	sb.WriteString("\n")

	if len(s.Victims) > 0 {
		sb.WriteString("## Victims\n\n| Victim | Account | Accounts reached |\n|--------|---------|------------------|\n")
		for _, v := range s.Victims {
			fmt.Fprintf(&sb, "| %s | %s | %d |\n", escapeCell(v.Label), escapeCell(v.Account), v.Accounts)
		}
		sb.WriteString("\n")
	}

	if len(s.Layers) > 0 {
		sb.WriteString("## Layers\n\n| Layer | Accounts | Amount |\n|-------|----------|--------|\n")
		for _, l := range s.Layers {
			fmt.Fprintf(&sb, "| %d | %d | %s |\n", l.Layer, l.Accounts, model.FormatINR(l.Amount))
		}
		sb.WriteString("\n")
	}

	if len(s.States) > 0 {
		sb.WriteString("## States\n\n| State | Accounts | Amount |\n|-------|----------|--------|\n")
		for _, st := range s.States {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", escapeCell(st.State), st.Accounts, model.FormatINR(st.Amount))
		}
		sb.WriteString("\n")
	}

	if len(s.Convergent) > 0 {
		sb.WriteString("## Convergent accounts\n\n")
		for _, a := range s.Convergent {
			fmt.Fprintf(&sb, "- %s\n", a)
		}
		sb.WriteString("\n")
	}
	if len(s.Cycles) > 0 {
		sb.WriteString("## Circular flows\n\n")
		for _, c := range s.Cycles {
			fmt.Fprintf(&sb, "- %s\n", strings.Join(c, " ↔ "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func row(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "| **%s** | %s |\n", label, escapeCell(value))
}

func field(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "**%s:** %s  \n", label, value)
}

// escapeCell keeps a value on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

func deref(s *string) string {
	if s == nil {
		return model.NotAvailable
	}
	return model.OrNA(*s)
}
