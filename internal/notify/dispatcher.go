package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateOrderConfirmation = "order_confirmation.html"
	TemplateAdminNewOrder     = "admin_new_order.html"
	TemplateEmailOTP          = "email_otp.html"
)

const defaultTimeout = 10 * time.Second

// Envelope is one rendered message handed to a Transport.
type Envelope struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Transport interface {
	Deliver(ctx context.Context, env Envelope) error
}

type Message struct {
	To       string
	Subject  string
	Template string
	Data     any
}

// Result records the outcome of one Send. Delivery failures are reported
// here instead of as an error.
type Result struct {
	Recipient string `json:"recipient"`
	Template  string `json:"template"`
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}

type SummaryLine struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

// OrderSummary feeds the buyer and admin order templates.
type OrderSummary struct {
	OrderID     string
	UserID      string
	Email       string
	Lines       []SummaryLine
	FinalAmount string
	PlacedOn    string
}

type OTPData struct {
	Code       string
	TTLMinutes int
}

type Dispatcher struct {
	from      string
	transport Transport
	timeout   time.Duration
	tmpl      *template.Template
}

func NewDispatcher(from string, t Transport, timeout time.Duration) (*Dispatcher, error) {
	if t == nil {
		return nil, errors.New("notify: nil transport")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Dispatcher{from: from, transport: t, timeout: timeout, tmpl: tmpl}, nil
}

// Send renders msg and delivers it within the dispatcher timeout.
func (d *Dispatcher) Send(ctx context.Context, msg Message) Result {
	res := Result{Recipient: msg.To, Template: msg.Template}
	if msg.To == "" {
		res.Error = "empty recipient"
		return res
	}

	var body bytes.Buffer
	if err := d.tmpl.ExecuteTemplate(&body, msg.Template, msg.Data); err != nil {
		res.Error = fmt.Sprintf("render %s: %v", msg.Template, err)
		return res
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.transport.Deliver(sendCtx, Envelope{
		From:    d.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    body.String(),
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Sent = true
	return res
}
