package notice

import (
	"bytes"
	"embed"
	"strconv"
	"text/template"
	"time"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/pkg/errs"
)

const DateLayout = "2006-01-02"

const (
	SubjectOverdueLending      = "Library Book Overdue Notice"
	SubjectDueSoonLending      = "Library Book Due Date Reminder"
	SubjectLowStock            = "Low Stock Alert"
	SubjectUpcomingMaintenance = "Upcoming Maintenance Tasks"
)

//go:embed templates/*.txt
var templateFS embed.FS

// MaintenanceEntry pairs a record with the item it belongs to.
type MaintenanceEntry struct {
	Record *inventory.MaintenanceRecord
	Item   *inventory.Item
}

// Composer renders notices. Output depends only on its inputs and location.
type Composer struct {
	tmpl *template.Template
	loc  *time.Location
}

func NewComposer(loc *time.Location) (*Composer, error) {
	if loc == nil {
		loc = time.UTC
	}
	tmpl, err := template.New("notice").
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, errs.Wrap(err, "parse notice templates")
	}
	return &Composer{tmpl: tmpl, loc: loc}, nil
}

type lendingView struct {
	Name    string
	Title   string
	DueDate string
	Fine    string
}

type itemView struct {
	Name     string
	Quantity string
	Minimum  string
	Location string
	Supplier string
}

type maintenanceView struct {
	Item     string
	Type     string
	DueDate  string
	Location string
}

func (c *Composer) OverdueNotice(borrower *user.User, book lending.Book, l *lending.Lending) (Message, error) {
	return c.lendingNotice(KindOverdueLending, SubjectOverdueLending, borrower, book, l)
}

func (c *Composer) DueSoonReminder(borrower *user.User, book lending.Book, l *lending.Lending) (Message, error) {
	return c.lendingNotice(KindDueSoonLending, SubjectDueSoonLending, borrower, book, l)
}

func (c *Composer) lendingNotice(kind Kind, subject string, borrower *user.User, book lending.Book, l *lending.Lending) (Message, error) {
	view := lendingView{
		Name:    displayName(borrower),
		Title:   book.Title,
		DueDate: c.date(l.DueAt()),
		Fine:    l.Fine().String(),
	}
	body, err := c.render(kind, view)
	if err != nil {
		return Message{}, err
	}
	var to []string
	if borrower.HasEmail() {
		to = []string{borrower.Email().Value()}
	}
	return Message{Kind: kind, Subject: subject, To: to, Body: body}, nil
}

func (c *Composer) LowStockAlert(to []string, items []*inventory.Item) (Message, error) {
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, itemView{
			Name:     it.Name(),
			Quantity: withUnit(it.Quantity(), it.Unit()),
			Minimum:  withUnit(it.MinimumQuantity(), it.Unit()),
			Location: orDash(it.Location()),
			Supplier: orDash(it.Supplier()),
		})
	}
	body, err := c.render(KindLowStock, struct{ Items []itemView }{views})
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindLowStock, Subject: SubjectLowStock, To: to, Body: body}, nil
}

func (c *Composer) MaintenanceReminder(to []string, entries []MaintenanceEntry) (Message, error) {
	views := make([]maintenanceView, 0, len(entries))
	for _, e := range entries {
		v := maintenanceView{
			Item:     "-",
			Type:     orDash(e.Record.Type()),
			DueDate:  "-",
			Location: "-",
		}
		if e.Item != nil {
			v.Item = orDash(e.Item.Name())
			v.Location = orDash(e.Item.Location())
		}
		if due := e.Record.NextDueAt(); due != nil {
			v.DueDate = c.date(*due)
		}
		views = append(views, v)
	}
	body, err := c.render(KindUpcomingMaintenance, struct{ Entries []maintenanceView }{views})
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindUpcomingMaintenance, Subject: SubjectUpcomingMaintenance, To: to, Body: body}, nil
}

func (c *Composer) render(kind Kind, data any) (string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, string(kind)+".txt", data); err != nil {
		return "", errs.Wrapf(err, "render %s notice", kind)
	}
	return buf.String(), nil
}

func (c *Composer) date(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

func displayName(u *user.User) string {
	if name := u.FullName(); name != "" {
		return name
	}
	if u.HasEmail() {
		return u.Email().Value()
	}
	return "Borrower"
}

func withUnit(quantity int, unit string) string {
	q := strconv.Itoa(quantity)
	if unit == "" {
		return q
	}
	return q + " " + unit
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
