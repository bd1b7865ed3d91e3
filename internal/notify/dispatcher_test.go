package notify

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []Envelope
	err  error
}

func (r *recordingTransport) Deliver(ctx context.Context, env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, env)
	return nil
}

type blockingTransport struct{}

func (blockingTransport) Deliver(ctx context.Context, env Envelope) error {
	<-ctx.Done()
	return ctx.Err()
}

func sampleSummary() OrderSummary {
	return OrderSummary{
		OrderID: "ord-1",
		UserID:  "u-1",
		Email:   "b@x.com",
		Lines: []SummaryLine{
			{Name: "Fern", Quantity: 2, Price: "500.00", Subtotal: "1000.00"},
		},
		FinalAmount: "1050.00",
		PlacedOn:    "2024-05-01 12:00",
	}
}

func TestDispatcher_SendRendersTemplate(t *testing.T) {
	tr := &recordingTransport{}
	d, err := NewDispatcher("GreenHaven <no-reply@greenhaven.local>", tr, time.Second)
	require.NoError(t, err)

	res := d.Send(context.Background(), Message{
		To:       "b@x.com",
		Subject:  "Order Confirmation",
		Template: TemplateOrderConfirmation,
		Data:     sampleSummary(),
	})

	assert.True(t, res.Sent)
	assert.Empty(t, res.Error)
	assert.Equal(t, "b@x.com", res.Recipient)
	require.Len(t, tr.sent, 1)
	assert.Contains(t, tr.sent[0].HTML, "Fern x2")
	assert.Contains(t, tr.sent[0].HTML, "1050.00")
	assert.Equal(t, "GreenHaven <no-reply@greenhaven.local>", tr.sent[0].From)
}

func TestDispatcher_EscapesData(t *testing.T) {
	tr := &recordingTransport{}
	d, err := NewDispatcher("a@x.com", tr, time.Second)
	require.NoError(t, err)

	s := sampleSummary()
	s.Lines[0].Name = "<script>alert(1)</script>"
	res := d.Send(context.Background(), Message{To: "admin@x.com", Template: TemplateAdminNewOrder, Data: s})

	require.True(t, res.Sent)
	assert.NotContains(t, tr.sent[0].HTML, "<script>")
}

func TestDispatcher_Failures(t *testing.T) {
	tests := []struct {
		name      string
		transport Transport
		msg       Message
		wantErr   string
	}{
		{
			name:      "transport error",
			transport: &recordingTransport{err: errors.New("relay refused")},
			msg:       Message{To: "b@x.com", Template: TemplateEmailOTP, Data: OTPData{Code: "123456", TTLMinutes: 5}},
			wantErr:   "relay refused",
		},
		{
			name:      "unknown template",
			transport: &recordingTransport{},
			msg:       Message{To: "b@x.com", Template: "missing.html"},
			wantErr:   "render missing.html",
		},
		{
			name:      "empty recipient",
			transport: &recordingTransport{},
			msg:       Message{Template: TemplateEmailOTP, Data: OTPData{Code: "123456"}},
			wantErr:   "empty recipient",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDispatcher("a@x.com", tt.transport, time.Second)
			require.NoError(t, err)

			res := d.Send(context.Background(), tt.msg)
			assert.False(t, res.Sent)
			assert.Contains(t, res.Error, tt.wantErr)
		})
	}
}

func TestDispatcher_Timeout(t *testing.T) {
	d, err := NewDispatcher("a@x.com", blockingTransport{}, 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	res := d.Send(context.Background(), Message{To: "b@x.com", Template: TemplateEmailOTP, Data: OTPData{Code: "1"}})

	assert.False(t, res.Sent)
	assert.Contains(t, res.Error, context.DeadlineExceeded.Error())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewDispatcher_NilTransport(t *testing.T) {
	_, err := NewDispatcher("a@x.com", nil, time.Second)
	require.Error(t, err)
}

func fakeSMTPServer(t *testing.T) (host string, port int, bodies chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	bodies = make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 fake ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				_ = tp.PrintfLine("250 fake")
			case strings.HasPrefix(line, "MAIL FROM"), strings.HasPrefix(line, "RCPT TO"):
				_ = tp.PrintfLine("250 ok")
			case line == "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				bodies <- string(body)
				_ = tp.PrintfLine("250 queued")
			case line == "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 unknown")
			}
		}
	}()

	h, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(p)
	require.NoError(t, err)
	return h, port, bodies
}

func TestSMTPTransport_Deliver(t *testing.T) {
	host, port, bodies := fakeSMTPServer(t)
	tr := &SMTPTransport{Host: host, Port: port}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := tr.Deliver(ctx, Envelope{
		From:    "GreenHaven <no-reply@greenhaven.local>",
		To:      "b@x.com",
		Subject: "Order Confirmation",
		HTML:    "<p>thanks</p>",
	})
	require.NoError(t, err)

	select {
	case body := <-bodies:
		assert.Contains(t, body, "To: b@x.com")
		assert.Contains(t, body, "Content-Type: text/html; charset=UTF-8")
		assert.Contains(t, body, "<p>thanks</p>")
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestSMTPTransport_HangingServerTimesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// never greet
		time.Sleep(3 * time.Second)
		_ = conn.Close()
	}()

	h, p, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(p)
	tr := &SMTPTransport{Host: h, Port: port}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = tr.Deliver(ctx, Envelope{From: "a@x.com", To: "b@x.com", Subject: "s", HTML: "x"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSMTPTransport_BadFrom(t *testing.T) {
	tr := &SMTPTransport{Host: "127.0.0.1", Port: 1}
	err := tr.Deliver(context.Background(), Envelope{From: "not an address", To: "b@x.com"})
	require.Error(t, err)
}

func TestBuildMessage_EncodesSubject(t *testing.T) {
	msg := string(buildMessage(Envelope{
		From:    "a@x.com",
		To:      "b@x.com",
		Subject: "Order Confirmation - GreenHaven 🌿",
		HTML:    "<p>x</p>",
	}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.Contains(t, msg, "Date: Wed, 01 May 2024 12:00:00 +0000")
	assert.True(t, strings.HasSuffix(msg, "<p>x</p>\r\n"))
}

func TestLogTransport_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&LogTransport{}).Deliver(ctx, Envelope{To: "b@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, (&LogTransport{}).Deliver(context.Background(), Envelope{To: "b@x.com"}))
}

func TestDispatcher_OTPMinutesWording(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{minutes: 1, want: "expires in 1 minute."},
		{minutes: 5, want: "expires in 5 minutes."},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			tr := &recordingTransport{}
			d, err := NewDispatcher("a@x.com", tr, time.Second)
			require.NoError(t, err)

			res := d.Send(context.Background(), Message{To: "b@x.com", Template: TemplateEmailOTP, Data: OTPData{Code: "123456", TTLMinutes: tt.minutes}})
			require.True(t, res.Sent, res.Error)
			require.Len(t, tr.sent, 1)
			assert.Contains(t, tr.sent[0].HTML, tt.want)
		})
	}
}
