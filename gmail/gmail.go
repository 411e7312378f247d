package gmail

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

const (
	gmailIMAPHost    = "imap.gmail.com"
	gmailIMAPAddress = "imap.gmail.com:993"
	gmailSMTPHost    = "smtp.gmail.com"
	gmailSMTPAddress = "smtp.gmail.com:465"
	gmailDrafts      = "[Gmail]/Drafts"

	envGmailAddress     = "GMAIL_ADDRESS"
	envGmailAppPassword = "GMAIL_APP_PASSWORD"

	base64LineLength = 76
)

// Mode selects how Deliver hands the message to Gmail.
type Mode string

const (
	// ModeSend transmits the message over SMTP.
	ModeSend Mode = "send"
	// ModeDraft stores the message in the Drafts mailbox over IMAP.
	ModeDraft Mode = "draft"
)

// Attachment is a file carried by the delivered message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DeliverInput describes one delivery.
//
// To is required for ModeSend and optional for ModeDraft. Subject defaults
// to the attachment filename.
type DeliverInput struct {
	Mode       Mode
	To         []string
	Subject    string
	Body       string
	Attachment Attachment
	DryRun     bool
}

// DeliverOutput reports a completed (or planned, for DryRun) delivery.
type DeliverOutput struct {
	MessageID string
	Size      int
}

// Deliver builds a message carrying input.Attachment and sends it or saves
// it as a draft.
//
// Example:
//
//	data, _ := os.ReadFile("contacts.csv")
//	out, err := gmail.Deliver(gmail.DeliverInput{
//		Mode: gmail.ModeSend,
//		To:   []string{"me@example.com"},
//		Attachment: gmail.Attachment{
//			Filename:    "contacts.csv",
//			ContentType: "text/csv",
//			Data:        data,
//		},
//	})
func Deliver(input DeliverInput) (DeliverOutput, error) {
	mode, err := normalizeMode(input.Mode)
	if err != nil {
		return DeliverOutput{}, err
	}
	input.Mode = mode
	if err := validateDeliverInput(input); err != nil {
		return DeliverOutput{}, err
	}

	from, appPassword, err := loadCredentials()
	if err != nil {
		return DeliverOutput{}, err
	}

	messageID := generateMessageID(from)
	rawMessage, err := buildMessage(from, input, messageID, time.Now())
	if err != nil {
		return DeliverOutput{}, err
	}
	out := DeliverOutput{MessageID: messageID, Size: len(rawMessage)}
	if input.DryRun {
		return out, nil
	}

	switch input.Mode {
	case ModeDraft:
		err = saveDraft(from, appPassword, rawMessage)
	default:
		err = sendMessage(from, appPassword, uniqueRecipients(input.To), rawMessage)
	}
	if err != nil {
		return DeliverOutput{}, err
	}
	return out, nil
}

func normalizeMode(mode Mode) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(string(mode)))) {
	case "", ModeSend:
		return ModeSend, nil
	case ModeDraft:
		return ModeDraft, nil
	default:
		return "", fmt.Errorf("gmail: unsupported delivery mode %q", mode)
	}
}

func validateDeliverInput(input DeliverInput) error {
	if input.Mode == ModeSend && len(uniqueRecipients(input.To)) == 0 {
		return errors.New("gmail: at least one recipient is required")
	}
	if strings.TrimSpace(input.Attachment.Filename) == "" {
		return errors.New("gmail: attachment filename is required")
	}
	if len(input.Attachment.Data) == 0 {
		return errors.New("gmail: attachment is empty")
	}
	return nil
}

func sendMessage(from string, appPassword string, recipients []string, rawMessage []byte) error {
	smtpClient, err := connectSMTP(from, appPassword)
	if err != nil {
		return err
	}
	defer smtpClient.Close()

	if err := smtpClient.Mail(from, nil); err != nil {
		return fmt.Errorf("gmail: MAIL FROM failed: %w", err)
	}
	for _, rcpt := range recipients {
		if err := smtpClient.Rcpt(rcpt, nil); err != nil {
			return fmt.Errorf("gmail: RCPT TO %q failed: %w", rcpt, err)
		}
	}

	writer, err := smtpClient.Data()
	if err != nil {
		return fmt.Errorf("gmail: DATA failed: %w", err)
	}
	if _, err := writer.Write(rawMessage); err != nil {
		return fmt.Errorf("gmail: writing message failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("gmail: finalizing message failed: %w", err)
	}
	if err := smtpClient.Quit(); err != nil {
		return fmt.Errorf("gmail: QUIT failed: %w", err)
	}
	return nil
}

func saveDraft(address string, appPassword string, rawMessage []byte) error {
	imapClient, err := connectIMAP(address, appPassword)
	if err != nil {
		return err
	}
	defer imapClient.Logout()

	literal := bytes.NewBuffer(rawMessage)
	if err := imapClient.Append(gmailDrafts, []string{imap.DraftFlag, imap.SeenFlag}, time.Now(), literal); err != nil {
		return fmt.Errorf("gmail: APPEND to %q failed: %w", gmailDrafts, err)
	}
	return nil
}

func uniqueRecipients(groups ...[]string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 8)
	for _, group := range groups {
		for _, recipient := range group {
			recipient = strings.TrimSpace(recipient)
			if recipient == "" {
				continue
			}
			if _, ok := seen[recipient]; ok {
				continue
			}
			seen[recipient] = struct{}{}
			out = append(out, recipient)
		}
	}
	return out
}

func buildMessage(from string, input DeliverInput, messageID string, now time.Time) ([]byte, error) {
	filename := filepath.Base(sanitizeHeader(input.Attachment.Filename))
	subject := sanitizeHeader(input.Subject)
	if subject == "" {
		subject = filename
	}
	contentType := sanitizeHeader(input.Attachment.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	body := normalizeBody(input.Body)
	if body == "" {
		body = fmt.Sprintf("Attached: %s", filename)
	}

	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	headers := []string{fmt.Sprintf("From: %s", from)}
	if to := uniqueRecipients(input.To); len(to) > 0 {
		headers = append(headers, fmt.Sprintf("To: %s", strings.Join(to, ", ")))
	}
	headers = append(headers,
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", subject)),
		fmt.Sprintf("Date: %s", now.Format(time.RFC1123Z)),
		fmt.Sprintf("Message-ID: %s", normalizeMessageID(messageID)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", mixed.Boundary()),
	)
	buf.WriteString(strings.Join(headers, "\r\n"))
	buf.WriteString("\r\n\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	textPart, err := mixed.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("gmail: creating text part failed: %w", err)
	}
	if _, err := textPart.Write([]byte(body + "\r\n")); err != nil {
		return nil, fmt.Errorf("gmail: writing text part failed: %w", err)
	}

	attachmentHeader := textproto.MIMEHeader{}
	attachmentHeader.Set("Content-Type", mime.FormatMediaType(contentType, map[string]string{"name": filename}))
	attachmentHeader.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	attachmentHeader.Set("Content-Transfer-Encoding", "base64")
	attachmentPart, err := mixed.CreatePart(attachmentHeader)
	if err != nil {
		return nil, fmt.Errorf("gmail: creating attachment part failed: %w", err)
	}
	if _, err := attachmentPart.Write(encodeBase64Lines(input.Attachment.Data)); err != nil {
		return nil, fmt.Errorf("gmail: writing attachment part failed: %w", err)
	}

	if err := mixed.Close(); err != nil {
		return nil, fmt.Errorf("gmail: closing multipart message failed: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeBase64Lines(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(encoded) > base64LineLength {
		out.WriteString(encoded[:base64LineLength])
		out.WriteString("\r\n")
		encoded = encoded[base64LineLength:]
	}
	out.WriteString(encoded)
	out.WriteString("\r\n")
	return out.Bytes()
}

func sanitizeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}

func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	return strings.TrimSpace(body)
}

func generateMessageID(address string) string {
	domain := "localhost"
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		domain = address[at+1:]
	}
	return fmt.Sprintf("<%d.%s>", time.Now().UnixNano(), domain)
}

func normalizeMessageID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "<") && strings.HasSuffix(value, ">") {
		return value
	}
	return "<" + strings.Trim(value, "<>") + ">"
}

func loadCredentials() (address string, appPassword string, err error) {
	address = strings.TrimSpace(os.Getenv(envGmailAddress))
	if address == "" {
		return "", "", fmt.Errorf("gmail: %s is required", envGmailAddress)
	}

	appPassword = strings.ReplaceAll(os.Getenv(envGmailAppPassword), " ", "")
	if appPassword == "" {
		return "", "", fmt.Errorf("gmail: %s is required", envGmailAppPassword)
	}

	return address, appPassword, nil
}

func connectIMAP(address string, appPassword string) (*client.Client, error) {
	imapClient, err := client.DialTLS(gmailIMAPAddress, &tls.Config{ServerName: gmailIMAPHost})
	if err != nil {
		return nil, fmt.Errorf("gmail: IMAP dial failed: %w", err)
	}

	if err := imapClient.Login(address, appPassword); err != nil {
		imapClient.Logout()
		return nil, fmt.Errorf("gmail: IMAP login failed: %w", err)
	}

	return imapClient, nil
}

func connectSMTP(address string, appPassword string) (*smtp.Client, error) {
	conn, err := tls.Dial("tcp", gmailSMTPAddress, &tls.Config{ServerName: gmailSMTPHost})
	if err != nil {
		return nil, fmt.Errorf("gmail: SMTP TLS dial failed: %w", err)
	}

	smtpClient := smtp.NewClient(conn)
	auth := sasl.NewPlainClient("", address, appPassword)
	if err := smtpClient.Auth(auth); err != nil {
		smtpClient.Close()
		return nil, fmt.Errorf("gmail: SMTP auth failed: %w", err)
	}

	return smtpClient, nil
}
