package pdf

//go:generate go run go.uber.org/mock/mockgen -source=./renderer.go -destination=../mocks/renderer_mock.go -package=mocks

import (
	"bytes"
	"crm/internal/domains/proposal/model"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 15.0
	footerHeight = 15.0
	rowHeight    = 6.5
	lineHeight   = 5.0
	totalPages   = "{nb}"
	dateLayout   = "02 Jan 2006"
	fontFamily   = "Helvetica"
)

// column widths of the event detail table, summing to the printable width
var columns = []struct {
	title string
	width float64
	align string
}{
	{"Time", 24, "L"},
	{"Function Room", 38, "L"},
	{"Setup", 22, "L"},
	{"Meal", 24, "L"},
	{"Pax", 14, "R"},
	{"Rate", 28, "R"},
	{"Amount", 30, "R"},
}

type Client struct {
	Name         string
	JobTitle     string
	Organization string
	Address      string
	Email        string
	Phone        string
}

type Event struct {
	Name      string
	Type      string
	Arrival   time.Time
	Departure time.Time
	Nights    int
	Attendees int
	Currency  string
}

type Document struct {
	Number     string
	IssuedAt   time.Time
	ValidUntil time.Time
	Draft      bool
	Client     Client
	Event      Event
	Quote      model.Quote
}

type Renderer interface {
	Render(doc Document) ([]byte, error)
}

type rendererImpl struct {
	tmpl     Template
	compress bool
}

func NewRenderer(tmpl Template) Renderer {
	return &rendererImpl{tmpl: tmpl, compress: true}
}

// page wraps one rendering pass. Rows are placed by hand so the table header
// can be repeated whenever a row would cross into the footer.
type page struct {
	*fpdf.Fpdf
	tmpl   Template
	doc    Document
	tr     func(string) string
	width  float64
	bottom float64
}

func (r *rendererImpl) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages(totalPages)
	pdf.SetTitle(doc.Number, true)
	pdf.SetAuthor(r.tmpl.Hotel.Name, true)
	pdf.SetCreationDate(doc.IssuedAt)

	pageWidth, pageHeight := pdf.GetPageSize()

	p := &page{
		Fpdf:   pdf,
		tmpl:   r.tmpl,
		doc:    doc,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  pageWidth - 2*pageMargin,
		bottom: pageHeight - footerHeight - 5,
	}

	pdf.SetFooterFunc(p.footer)
	pdf.AddPage()

	p.header()
	p.client()
	p.summary()
	p.table()
	p.totals()
	p.terms()
	p.signature()

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render proposal: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write proposal: %w", err)
	}

	return buf.Bytes(), nil
}

func (p *page) accent(fill bool) {
	c := p.tmpl.Accent
	if fill {
		p.SetFillColor(c[0], c[1], c[2])

		return
	}

	p.SetTextColor(c[0], c[1], c[2])
}

func (p *page) text(w, h float64, txt, align string, ln int) {
	p.CellFormat(w, h, p.tr(txt), "", ln, align, false, 0, "")
}

// ensure starts a new page when h does not fit above the footer.
func (p *page) ensure(h float64) bool {
	if p.GetY()+h <= p.bottom {
		return false
	}

	p.AddPage()

	return true
}

func (p *page) header() {
	hotel := p.tmpl.Hotel

	p.accent(false)
	p.SetFont(fontFamily, "B", 16)
	p.text(p.width/2, 8, hotel.Name, "L", 0)

	p.SetFont(fontFamily, "B", 13)
	title := p.tmpl.Title
	if p.doc.Draft {
		title += " (Draft)"
	}
	p.text(p.width/2, 8, title, "R", 1)

	p.SetTextColor(90, 90, 90)
	p.SetFont(fontFamily, "", 8.5)

	contact := strings.Join(nonEmpty(hotel.Phone, hotel.Email, hotel.Website), "  |  ")
	meta := [][2]string{
		{hotel.Address, "Proposal No.: " + p.doc.Number},
		{contact, "Date: " + p.doc.IssuedAt.Format(dateLayout)},
		{"", "Valid until: " + p.doc.ValidUntil.Format(dateLayout)},
	}

	for _, row := range meta {
		p.text(p.width/2+20, lineHeight, row[0], "L", 0)
		p.text(p.width/2-20, lineHeight, row[1], "R", 1)
	}

	p.Ln(2)
	p.accent(true)
	p.Rect(pageMargin, p.GetY(), p.width, 0.8, "F")
	p.Ln(6)
	p.SetTextColor(0, 0, 0)
}

func (p *page) client() {
	c := p.doc.Client

	p.SetFont(fontFamily, "B", 10)
	p.text(p.width, lineHeight+1, "Prepared for", "L", 1)

	p.SetFont(fontFamily, "", 9.5)

	for _, line := range nonEmpty(c.Name, c.JobTitle, c.Organization, c.Address, c.Email, c.Phone) {
		p.text(p.width, lineHeight, line, "L", 1)
	}

	p.Ln(4)

	if p.tmpl.Intro != "" {
		p.MultiCell(p.width, lineHeight, p.tr(strings.TrimSpace(p.tmpl.Intro)), "", "L", false)
		p.Ln(4)
	}
}

func (p *page) summary() {
	e := p.doc.Event

	p.SetFont(fontFamily, "B", 10)
	p.text(p.width, lineHeight+1, "Event Summary", "L", 1)

	rows := [][2]string{
		{"Event", e.Name},
		{"Event type", humanize(e.Type)},
		{"Arrival", e.Arrival.Format(dateLayout)},
		{"Departure", e.Departure.Format(dateLayout)},
	}

	// day events have no overnight stay
	if e.Nights > 0 {
		rows = append(rows, [2]string{"Nights", fmt.Sprintf("%d", e.Nights)})
	}

	rows = append(rows,
		[2]string{"Expected attendees", fmt.Sprintf("%d", e.Attendees)},
		[2]string{"Currency", e.Currency},
	)

	for _, row := range rows {
		p.SetFont(fontFamily, "", 9.5)
		p.text(40, lineHeight, row[0], "L", 0)
		p.SetFont(fontFamily, "B", 9.5)
		p.text(p.width-40, lineHeight, row[1], "L", 1)
	}

	p.Ln(5)
}

func (p *page) tableHeader() {
	p.SetFont(fontFamily, "B", 9)
	p.accent(true)
	p.SetTextColor(255, 255, 255)

	for _, col := range columns {
		p.CellFormat(col.width, rowHeight, col.title, "", 0, col.align, true, 0, "")
	}

	p.Ln(-1)
	p.SetTextColor(0, 0, 0)
}

func (p *page) table() {
	p.ensure(3 * rowHeight)
	p.tableHeader()

	for _, day := range p.doc.Quote.Days {
		// keep the day heading with its first line
		if p.ensure(2 * rowHeight) {
			p.tableHeader()
		}

		p.SetFont(fontFamily, "B", 9)
		p.SetFillColor(235, 238, 243)
		p.CellFormat(p.width, rowHeight, day.Date.Format("Monday, "+dateLayout), "", 1, "L", true, 0, "")

		p.SetFont(fontFamily, "", 9)

		for _, line := range day.Lines {
			if p.ensure(rowHeight) {
				p.tableHeader()
				p.SetFont(fontFamily, "", 9)
			}

			cells := []string{
				line.StartTime + "-" + line.EndTime,
				fit(p, line.FunctionRoom, columns[1].width),
				humanize(line.SetupStyle),
				humanize(line.Meal),
				fmt.Sprintf("%d", line.Attendees),
				money(line.Rate),
				money(line.LineTotal()),
			}

			for i, col := range columns {
				p.CellFormat(col.width, rowHeight, p.tr(cells[i]), "B", 0, col.align, false, 0, "")
			}

			p.Ln(-1)
		}

		if p.ensure(rowHeight) {
			p.tableHeader()
		}

		p.SetFont(fontFamily, "I", 9)
		p.CellFormat(p.width-columns[len(columns)-1].width, rowHeight, "Day subtotal", "", 0, "R", false, 0, "")
		p.CellFormat(columns[len(columns)-1].width, rowHeight, money(day.Subtotal), "", 1, "R", false, 0, "")
	}

	p.Ln(3)
}

func (p *page) totals() {
	q := p.doc.Quote
	rows := [][2]string{
		{"Subtotal", money(q.Subtotal)},
		{fmt.Sprintf("Service charge (%s%%)", percent(q.ServiceChargePercent)), money(q.ServiceCharge)},
		{fmt.Sprintf("Tax (%s%%)", percent(q.TaxPercent)), money(q.Tax)},
	}

	p.ensure(float64(len(rows)+1)*rowHeight + 4)

	labelWidth := p.width - 45

	p.SetFont(fontFamily, "", 9.5)

	for _, row := range rows {
		p.text(labelWidth, rowHeight, row[0], "R", 0)
		p.text(45, rowHeight, row[1], "R", 1)
	}

	p.SetFont(fontFamily, "B", 11)
	p.accent(false)
	p.text(labelWidth, rowHeight+1, "Grand total ("+p.doc.Event.Currency+")", "R", 0)
	p.text(45, rowHeight+1, money(q.Total), "R", 1)
	p.SetTextColor(0, 0, 0)
	p.Ln(6)
}

func (p *page) terms() {
	if len(p.tmpl.Terms) == 0 {
		return
	}

	p.ensure(3 * lineHeight)
	p.SetFont(fontFamily, "B", 10)
	p.text(p.width, lineHeight+1, "Terms & Conditions", "L", 1)
	p.SetFont(fontFamily, "", 8.5)

	for i, term := range p.tmpl.Terms {
		txt := p.tr(fmt.Sprintf("%d. %s", i+1, term))
		lines := p.SplitLines([]byte(txt), p.width)

		p.ensure(float64(len(lines)) * lineHeight)

		for _, line := range lines {
			p.CellFormat(p.width, lineHeight, string(line), "", 1, "L", false, 0, "")
		}

		p.Ln(1)
	}

	p.Ln(4)
}

func (p *page) signature() {
	p.ensure(40)

	p.SetFont(fontFamily, "", 9.5)

	if p.tmpl.Closing != "" {
		p.text(p.width, lineHeight, p.tmpl.Closing, "L", 1)
		p.Ln(4)
	}

	half := p.width / 2
	p.text(half, lineHeight, "For "+p.tmpl.Hotel.Name, "L", 0)
	p.text(half, lineHeight, "Accepted by "+p.doc.Client.Name, "L", 1)
	p.Ln(16)

	y := p.GetY()
	p.SetDrawColor(120, 120, 120)
	p.Line(pageMargin, y, pageMargin+half-10, y)
	p.Line(pageMargin+half, y, pageMargin+p.width, y)
	p.Ln(1)

	p.SetFont(fontFamily, "B", 9)
	p.text(half, lineHeight, p.tmpl.Signature.Name, "L", 0)
	p.text(half, lineHeight, "Signature & date", "L", 1)
	p.SetFont(fontFamily, "", 8.5)
	p.text(half, lineHeight, p.tmpl.Signature.Title, "L", 1)
}

func (p *page) footer() {
	p.SetY(-footerHeight)
	p.SetFont(fontFamily, "I", 8)
	p.SetTextColor(120, 120, 120)
	p.text(p.width/2, 8, p.doc.Number, "L", 0)
	p.text(p.width/2, 8, fmt.Sprintf("Page %d of %s", p.PageNo(), totalPages), "R", 0)
	p.SetTextColor(0, 0, 0)
}

// fit shortens s with an ellipsis until it fits a table cell of width w.
func fit(p *page, s string, w float64) string {
	limit := w - 2
	if p.GetStringWidth(p.tr(s)) <= limit {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && p.GetStringWidth(p.tr(string(runes)+"...")) > limit {
		runes = runes[:len(runes)-1]
	}

	return string(runes) + "..."
}

func nonEmpty(values ...string) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			res = append(res, v)
		}
	}

	return res
}

func humanize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "_", " ")

	return strings.ToUpper(s[:1]) + s[1:]
}

// money formats an amount with thousands separators and two decimals.
func money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	return sign + b.String() + frac
}

func percent(value float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
}
