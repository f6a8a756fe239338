package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/fundtrail/internal/datasource"
	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

const kycSaveTimeout = 30 * time.Second

// kycSavedMsg reports the outcome of a KYC save.
type kycSavedMsg struct {
	node *trail.Node
	upd  model.KYCUpdate
	err  error
}

// KYCForm edits the KYC record of one account. Values survive a failed save
// so the investigator can correct and resubmit.
type KYCForm struct {
	theme  Theme
	form   *huh.Form
	node   *trail.Node
	upd    *model.KYCUpdate
	err    string
	saving bool
	width  int
}

// NewKYCForm opens the form pre-filled from n's saved KYC.
func NewKYCForm(theme Theme, n *trail.Node) *KYCForm {
	upd := &model.KYCUpdate{TxnID: n.Data.TxnID}
	if n.Data.KYCName != nil {
		upd.Name = *n.Data.KYCName
	}
	if n.Data.KYCAadhar != nil {
		upd.Aadhar = *n.Data.KYCAadhar
	}
	if n.Data.KYCMobile != nil {
		upd.Mobile = *n.Data.KYCMobile
	}
	if n.Data.KYCAddress != nil {
		upd.Address = *n.Data.KYCAddress
	}
	k := &KYCForm{theme: theme, node: n, upd: upd, width: 60}
	k.form = k.newForm()
	return k
}

func (k *KYCForm) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&k.upd.Name).
				CharLimit(120),
			huh.NewInput().
				Title("Aadhaar").
				Description("12 digits").
				Value(&k.upd.Aadhar).
				CharLimit(14),
			huh.NewInput().
				Title("Mobile").
				Description("10 digits").
				Value(&k.upd.Mobile).
				CharLimit(10),
			huh.NewText().
				Title("Address").
				Value(&k.upd.Address).
				CharLimit(200).
				Lines(3),
		).Title("KYC · " + k.node.Data.Name.Trimmed()),
	).WithTheme(huh.ThemeDracula()).WithWidth(k.width).WithShowHelp(true)
}

func (k *KYCForm) Init() tea.Cmd {
	return k.form.Init()
}

func (k *KYCForm) SetWidth(w int) {
	k.width = max(min(w-4, 80), 30)
	k.form = k.form.WithWidth(k.width)
}

// Node returns the account being edited.
func (k *KYCForm) Node() *trail.Node {
	return k.node
}

// Err returns the inline error, if any.
func (k *KYCForm) Err() string {
	return k.err
}

// Update feeds msg to the form. On completion it validates and returns the
// save command built by save.
func (k *KYCForm) Update(msg tea.Msg, save func(model.KYCUpdate) tea.Cmd) tea.Cmd {
	if k.saving {
		return nil
	}
	f, cmd := k.form.Update(msg)
	if ff, ok := f.(*huh.Form); ok {
		k.form = ff
	}
	if k.form.State != huh.StateCompleted {
		return cmd
	}

	upd := *k.upd
	upd.Normalize()
	if err := upd.Validate(); err != nil {
		k.fail(err.Error())
		return k.form.Init()
	}
	k.err = ""
	k.saving = true
	return save(upd)
}

// Saved applies the outcome of a save. It reports whether the form is done.
func (k *KYCForm) Saved(msg kycSavedMsg) (done bool, cmd tea.Cmd) {
	k.saving = false
	if msg.err != nil {
		var ke *datasource.KYCError
		switch {
		case errors.As(msg.err, &ke):
			k.fail(ke.Error())
		case errors.Is(msg.err, datasource.ErrReadOnly):
			k.fail("Error saving KYC: this source is read-only")
		default:
			k.fail("Error saving KYC: " + msg.err.Error())
		}
		return false, k.form.Init()
	}
	applyKYC(k.node, msg.upd)
	return true, nil
}

// fail shows msg and reopens the form with the entered values.
func (k *KYCForm) fail(msg string) {
	k.err = msg
	k.form = k.newForm()
}

func (k *KYCForm) View() string {
	th := k.theme
	body := k.form.View()
	if k.saving {
		body += "\n" + th.MutedText.Render("Saving...")
	}
	if k.err != "" {
		body += "\n" + th.ErrorText.Render(k.err)
	}
	return th.panel(body, k.width+4, 0, true)
}

// applyKYC copies a stored update onto the node so the details panel shows it
// without a reload.
func applyKYC(n *trail.Node, upd model.KYCUpdate) {
	name, aadhar, mobile, address := upd.Name, upd.Aadhar, upd.Mobile, upd.Address
	n.Data.KYCName = &name
	n.Data.KYCAadhar = &aadhar
	n.Data.KYCMobile = &mobile
	n.Data.KYCAddress = &address
}

// saveKYCCmd persists upd through src.
func saveKYCCmd(src datasource.Source, n *trail.Node, upd model.KYCUpdate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), kycSaveTimeout)
		defer cancel()
		err := src.SaveKYC(ctx, upd)
		if err != nil {
			debug.Log("kyc save for %s failed: %v", upd.TxnID, err)
		}
		return kycSavedMsg{node: n, upd: upd, err: err}
	}
}
