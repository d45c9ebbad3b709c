package export

import (
	"bytes"
	"html/template"

	"github.com/MikeMC777/customtees/internal/order"
)

var billTmpl = template.Must(template.New("bill").Funcs(template.FuncMap{
	"date": func(o order.Order) string { return o.OrderDate.UTC().Format("02 Jan 2006") },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Order {{.ID}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;margin:32px;color:#111;width:720px}
h1{font-size:22px;margin:0 0 4px}
.meta{color:#555;font-size:13px;margin-bottom:24px}
table{width:100%;border-collapse:collapse;font-size:14px}
th,td{padding:8px;border-bottom:1px solid #ddd;text-align:left}
td.num,th.num{text-align:right}
.total{font-weight:bold;font-size:16px}
.addr{margin-top:24px;font-size:13px;line-height:1.5}
</style></head>
<body>
<h1>CustomTees order</h1>
<div class="meta">
Order <b>{{.ID}}</b> &middot; {{date .}} &middot; status {{.OrderStatus}} &middot;
payment {{.PaymentMethod}} ({{.PaymentStatus}})
</div>
<table>
<thead><tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr></thead>
<tbody>
{{range .CartItems}}<tr><td>{{.Title}}</td><td class="num">{{.Quantity}}</td><td class="num">${{.Price.StringFixed 2}}</td><td class="num">${{.LineTotal.StringFixed 2}}</td></tr>
{{end}}<tr class="total"><td colspan="3">Total</td><td class="num">${{.TotalAmount.StringFixed 2}}</td></tr>
</tbody>
</table>
<div class="addr">
{{with .AddressInfo}}{{.Address}}<br>{{.City}} {{.Pincode}}<br>Phone {{.Phone}}{{if .Notes}}<br>Notes: {{.Notes}}{{end}}{{end}}
</div>
</body></html>`))

// RenderBill renders the printable order view.
func RenderBill(o order.Order) (string, error) {
	var buf bytes.Buffer
	if err := billTmpl.Execute(&buf, o); err != nil {
		return "", err
	}
	return buf.String(), nil
}
