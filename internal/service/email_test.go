package service

import (
	"context"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRelay accepts one plain SMTP session and hands back the envelope and data
type fakeRelay struct {
	ln   net.Listener
	done chan relayed
}

type relayed struct {
	from, rcpt, data string
}

func newFakeRelay(t *testing.T) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	r := &fakeRelay{ln: ln, done: make(chan relayed, 1)}
	go r.serve()
	return r
}

func (r *fakeRelay) port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *fakeRelay) serve() {
	conn, err := r.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	tp := textproto.NewConn(conn)
	var got relayed
	_ = tp.PrintfLine("220 relay.test ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			_ = tp.PrintfLine("250 relay.test")
		case "MAIL":
			got.from = line
			_ = tp.PrintfLine("250 OK")
		case "RCPT":
			got.rcpt = line
			_ = tp.PrintfLine("250 OK")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			raw, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			got.data = string(raw)
			_ = tp.PrintfLine("250 queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			r.done <- got
			return
		default:
			_ = tp.PrintfLine("502 not implemented")
		}
	}
}

func TestSMTPSender_Send(t *testing.T) {
	relay := newFakeRelay(t)
	sender, err := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: relay.port(), From: "hub@family.test"})
	require.NoError(t, err)
	require.True(t, sender.plain, "loopback relays skip TLS")
	sender.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sender.Send(ctx, ports.Email{To: "bob@family.test", Subject: "Café ce soir ?", HTML: "<p>Hi Bob</p>"}))

	select {
	case got := <-relay.done:
		assert.Equal(t, "MAIL FROM:<hub@family.test>", strings.SplitN(got.from, " BODY", 2)[0])
		assert.Equal(t, "RCPT TO:<bob@family.test>", got.rcpt)
		assert.Contains(t, got.data, "Subject: =?utf-8?q?Caf=C3=A9_ce_soir_=3F?=")
		assert.Contains(t, got.data, "Date: Sat, 01 Jun 2024 09:30:00 +0000")
		assert.Contains(t, got.data, "<p>Hi Bob</p>")
	case <-ctx.Done():
		t.Fatal("relay never saw QUIT")
	}
}

func TestSMTPSender_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	sender, err := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: port, From: "hub@family.test"})
	require.NoError(t, err)

	err = sender.Send(context.Background(), ports.Email{To: "bob@family.test"})
	assert.ErrorContains(t, err, "smtp dial")
}

func TestNewSMTPSender(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.SMTPConfig
		wantErr   string
		wantPlain bool
		wantAddr  string
	}{
		{"local catcher by default", config.SMTPConfig{}, "", true, "localhost:1025"},
		{"remote relay uses tls", config.SMTPConfig{Host: "smtp.family.test", Port: 465, From: "hub@family.test"}, "", false, "smtp.family.test:465"},
		{"bad port", config.SMTPConfig{Host: "smtp.family.test", Port: 70000, From: "hub@family.test"}, "port", false, ""},
		{"bad from", config.SMTPConfig{Host: "smtp.family.test", Port: 465, From: "not an address"}, "from address", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSMTPSender(tt.cfg)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPlain, s.plain)
			assert.Equal(t, tt.wantAddr, net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
		})
	}
}

func TestNewEmailSender(t *testing.T) {
	tests := []struct {
		name     string
		notif    config.NotificationsConfig
		wantNil  bool
		wantType any
		wantErr  bool
	}{
		{"disabled", config.NotificationsConfig{}, true, nil, false},
		{"smtp", config.NotificationsConfig{Enabled: true, Provider: ProviderSMTP}, false, &SMTPSender{}, false},
		{"sendgrid", config.NotificationsConfig{Enabled: true, Provider: ProviderSendGrid, SendGridAPIKey: "SG.key"}, false, &SendGridSender{}, false},
		{"unknown", config.NotificationsConfig{Enabled: true, Provider: "pigeon"}, true, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewEmailSender(&config.Config{Notifications: tt.notif, SMTP: config.SMTPConfig{From: "hub@family.test"}})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, sender)
				return
			}
			assert.IsType(t, tt.wantType, sender)
		})
	}
}
