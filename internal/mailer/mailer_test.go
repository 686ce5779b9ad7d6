package mailer

import (
	"context"
	"encoding/base64"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/enrich"
)

var notice = crawler.ScrapedItem{
	Title:  "Master Direction – KYC (Amendment) 2024",
	URL:    "https://www.rbi.org.in/Scripts/NotificationUser.aspx?Id=12",
	Date:   "15-03-2024",
	Source: "RBI Notifications",
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateAddress("ca.office@firm.co.in"))
	for _, bad := range []string{"", "no-at-sign", "a@b", "two words@x.in", "@x.in"} {
		require.ErrorIsf(t, ValidateAddress(bad), ErrInvalidEmail, "address %q", bad)
	}
}

func TestComposeRendersSections(t *testing.T) {
	t.Parallel()

	items := enrich.Fallback(notice.Title, notice.Source)
	items.Summary = `<script>alert(1)</script>Banks must update <b>KYC</b> & records`

	msg, err := NewComposer("https://regwatch.example.in").Compose(" ops@bank.co.in ", notice, &items)
	require.NoError(t, err)
	require.Equal(t, "ops@bank.co.in", msg.To)
	require.Equal(t, "📋 Regulation Update: "+notice.Title, msg.Subject)
	require.Contains(t, msg.HTML, "Who's Affected")
	require.Contains(t, msg.HTML, "<li>NBFCs</li>")
	require.Contains(t, msg.HTML, "<li><strong>Check official notification for specific dates</strong></li>")
	require.Contains(t, msg.HTML, "Banks must update KYC &amp; records")
	require.NotContains(t, msg.HTML, "<script>")
	require.NotContains(t, msg.HTML, "alert(1)")
	require.Contains(t, msg.HTML, `href="https://www.rbi.org.in/Scripts/NotificationUser.aspx?Id=12"`)
	require.Contains(t, msg.HTML, "📅 15-03-2024")
	require.Contains(t, msg.HTML, "https://regwatch.example.in")
}

func TestComposeWithoutActionItems(t *testing.T) {
	t.Parallel()

	item := notice
	item.Date = ""
	msg, err := NewComposer("").Compose("a@b.in", item, nil)
	require.NoError(t, err)
	require.NotContains(t, msg.HTML, "Impact Summary")
	require.NotContains(t, msg.HTML, "📅")
	require.Contains(t, msg.HTML, "Read Full Official Notification")
}

func TestComposeErrors(t *testing.T) {
	t.Parallel()

	c := NewComposer("")
	_, err := c.Compose("", notice, nil)
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = c.Compose("a@b.in", crawler.ScrapedItem{Title: "x"}, nil)
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = c.Compose("not-an-address", notice, nil)
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestBuildMIME(t *testing.T) {
	t.Parallel()

	html := strings.Repeat("<p>notice</p>", 20)
	raw := buildMIME("alerts@regwatch.in", "regwatch", Message{To: "a@b.in", Subject: "📋 Update", HTML: html})

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	require.Contains(t, head, "To: a@b.in")
	require.Contains(t, head, "Subject: "+encodeHeader("📋 Update"))
	require.Contains(t, head, "Content-Transfer-Encoding: base64")
	for _, line := range strings.Split(strings.TrimSpace(body), "\r\n") {
		require.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(strings.TrimSpace(body), "\r\n", ""))
	require.NoError(t, err)
	require.Equal(t, html, string(decoded))
}

func TestSMTPSenderDelivers(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received := make(chan []string, 1)
	go serveSMTP(ln, received)

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	sender, err := NewSMTPSender(SMTPConfig{Host: host, Port: port, From: "alerts@regwatch.in", TLSMode: TLSModeNone})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sender.Send(ctx, Message{To: "ops@bank.co.in", Subject: "s", HTML: "<p>hi</p>"}))

	select {
	case cmds := <-received:
		require.Contains(t, cmds, "MAIL FROM:<alerts@regwatch.in>")
		require.Contains(t, cmds, "RCPT TO:<ops@bank.co.in>")
	case <-time.After(5 * time.Second):
		t.Fatal("smtp server did not record the session")
	}
}

func TestNewSMTPSenderDefaults(t *testing.T) {
	t.Parallel()

	_, err := NewSMTPSender(SMTPConfig{})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.in", From: "a@b.in", Port: "465"})
	require.NoError(t, err)
	require.Equal(t, TLSModeImplicit, s.cfg.TLSMode)

	s, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.in", From: "a@b.in"})
	require.NoError(t, err)
	require.Equal(t, "587", s.cfg.Port)
	require.Equal(t, TLSModeStartTLS, s.cfg.TLSMode)
}

// serveSMTP speaks just enough SMTP for one plain-text session.
func serveSMTP(ln net.Listener, received chan<- []string) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	tp := textproto.NewConn(conn)
	reply := func(line string) { _ = tp.PrintfLine("%s", line) }

	var cmds []string
	reply("220 localhost ESMTP test")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			received <- cmds
			return
		}
		cmds = append(cmds, line)
		switch verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); {
		case verb == "EHLO" || verb == "HELO":
			reply("250 localhost")
		case strings.HasPrefix(line, "MAIL FROM"), strings.HasPrefix(line, "RCPT TO"):
			reply("250 OK")
		case verb == "DATA":
			reply("354 go ahead")
			if _, err := tp.ReadDotLines(); err != nil {
				received <- cmds
				return
			}
			reply("250 queued")
		case verb == "QUIT":
			reply("221 bye")
			received <- cmds
			return
		default:
			reply("250 OK")
		}
	}
}
