package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/form"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

// ConfirmationDialog represents a yes/no confirmation dialog
type ConfirmationDialog struct {
	Title       string
	Message     string
	YesSelected bool
	OnConfirm   func() tea.Cmd
}

func NewConfirmationDialog(title, message string) ConfirmationDialog {
	return ConfirmationDialog{Title: title, Message: message}
}

// Update reports done once the dialog was answered or dismissed.
func (d *ConfirmationDialog) Update(msg tea.Msg) (cmd tea.Cmd, done bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	switch key.String() {
	case "left", "h", "y":
		d.YesSelected = true
		if key.String() == "y" && d.OnConfirm != nil {
			return d.OnConfirm(), true
		}
	case "right", "l":
		d.YesSelected = false
	case "n", "esc", "q":
		return nil, true
	case "enter":
		if d.YesSelected && d.OnConfirm != nil {
			return d.OnConfirm(), true
		}
		return nil, true
	}
	return nil, false
}

func (d ConfirmationDialog) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")
	if d.YesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(FormatKey("←/→", "navigate") + " • " + FormatKey("enter", "confirm") + " • " + FormatKey("esc", "cancel")))

	return boxStyle.Render(b.String())
}

// ProductDialog edits a form.ProductForm through one text input per field.
type ProductDialog struct {
	Form    *form.ProductForm
	inputs  []textinput.Model
	focus   int
	errs    map[string]string
	touched bool
	saving  bool
}

var productLabels = map[string]string{
	"title":         "Title",
	"description":   "Description",
	"category":      "Category",
	"brand":         "Brand",
	"price":         "Price",
	"salePrice":     "Sale price",
	"totalStock":    "Total stock",
	"averageReview": "Avg review",
	"image":         "Image URL",
}

func newProductDialog(f *form.ProductForm) *ProductDialog {
	d := &ProductDialog{Form: f}
	for _, name := range form.ProductFieldNames {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.Width = 48
		ti.SetValue(f.Get(name))
		d.inputs = append(d.inputs, ti)
	}
	d.inputs[0].Focus()
	return d
}

// NewProductDialogCreate opens an empty product dialog.
func NewProductDialogCreate() *ProductDialog {
	f := form.NewProductForm()
	f.OpenCreate()
	return newProductDialog(f)
}

// NewProductDialogEdit opens the dialog pre-filled from p.
func NewProductDialogEdit(p product.Product) *ProductDialog {
	f := form.NewProductForm()
	f.OpenEdit(p)
	return newProductDialog(f)
}

// NewProductDialogFromDesign pre-fills a new product from a submission.
func NewProductDialogFromDesign(s design.Submission, base decimal.Decimal) *ProductDialog {
	f := form.NewProductForm()
	f.OpenFromDesign(s, base)
	return newProductDialog(f)
}

// sync copies the inputs into the form and refreshes inline errors.
func (d *ProductDialog) sync() {
	for i, name := range form.ProductFieldNames {
		_ = d.Form.Set(name, d.inputs[i].Value())
	}
	if d.touched {
		d.errs = d.Form.Errors()
	}
}

func (d *ProductDialog) move(delta int) {
	d.inputs[d.focus].Blur()
	d.focus = (d.focus + delta + len(d.inputs)) % len(d.inputs)
	d.inputs[d.focus].Focus()
}

// Update handles keys. submit is set when the user asked to save and the
// form is valid.
func (d *ProductDialog) Update(msg tea.Msg) (cmd tea.Cmd, submit bool) {
	if d.saving {
		return nil, false
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			d.move(1)
			return nil, false
		case "shift+tab", "up":
			d.move(-1)
			return nil, false
		case "ctrl+s":
			return nil, d.trySubmit()
		case "enter":
			if d.focus == len(d.inputs)-1 {
				return nil, d.trySubmit()
			}
			d.move(1)
			return nil, false
		}
	}
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	d.sync()
	return cmd, false
}

func (d *ProductDialog) trySubmit() bool {
	d.touched = true
	d.sync()
	return len(d.errs) == 0
}

func (d *ProductDialog) View() string {
	var b strings.Builder
	title := "New product"
	if d.Form.Editing() {
		title = "Edit product"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for i, name := range form.ProductFieldNames {
		label := labelStyle.Render(productLabels[name])
		if i == d.focus {
			label = focusedLabelStyle.Render(productLabels[name])
		}
		b.WriteString(label + d.inputs[i].View() + "\n")
		if msg, ok := d.errs[name]; ok {
			b.WriteString(fieldErrorStyle.Render(msg) + "\n")
		}
	}
	if d.saving {
		b.WriteString("\n" + infoStyle.Render("Saving..."))
	}
	b.WriteString(helpStyle.Render(FormatKey("tab", "next") + " • " + FormatKey("ctrl+s", "save") + " • " + FormatKey("esc", "cancel")))
	return boxStyle.Render(b.String())
}

// list items

type productItem struct{ p product.Product }

func (i productItem) FilterValue() string { return i.p.Title }
func (i productItem) Title() string       { return i.p.Title }
func (i productItem) Description() string {
	return fmt.Sprintf("%s · %s · $%s (sale $%s) · stock %d",
		i.p.Category, i.p.Brand, i.p.Price.StringFixed(2), i.p.SalePrice.StringFixed(2), i.p.TotalStock)
}

type designItem struct {
	s    design.Submission
	base decimal.Decimal
}

func (i designItem) FilterValue() string { return i.s.Title }
func (i designItem) Title() string       { return i.s.Title }
func (i designItem) Description() string {
	return fmt.Sprintf("%s <%s> · margin %d · $%s", i.s.Name, i.s.Email, i.s.Margin, i.s.Price(i.base).StringFixed(2))
}

type orderItem struct{ o order.Order }

func (i orderItem) FilterValue() string { return i.o.ID }
func (i orderItem) Title() string {
	return fmt.Sprintf("%s  %s", i.o.ID, i.o.OrderDate.Format("2006-01-02"))
}
func (i orderItem) Description() string {
	return fmt.Sprintf("%s · %s · $%s", FormatStatus(i.o.OrderStatus), FormatStatus(i.o.PaymentStatus), i.o.TotalAmount.StringFixed(2))
}

type titled interface {
	list.Item
	Title() string
	Description() string
}

// itemDelegate renders two-line rows with a marker on the selection.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 1 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(titled)
	if !ok {
		return
	}
	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + mutedStyle.Render(i.Description()))
	} else {
		s = unselectedItemStyle.Render(i.Title() + "\n" + mutedStyle.Render(i.Description()))
	}
	_, _ = fmt.Fprint(w, s)
}
