// Package gmail delivers exported files through a Gmail account.
//
// Deliver wraps one attachment in a multipart/mixed message and either sends
// it over Gmail SMTP (ModeSend) or stores it in "[Gmail]/Drafts" over Gmail
// IMAP (ModeDraft) so it can be reviewed before sending.
//
// # Authentication
//
// Runtime credentials are read from environment variables:
//
//   - GMAIL_ADDRESS
//   - GMAIL_APP_PASSWORD
//
// Spaces in the app password are ignored, so the grouped form Google displays
// can be pasted as is.
//
// # Safety Model
//
// DeliverInput.DryRun builds and sizes the message without opening any
// connection. Credentials are still required so the From header is real.
//
// Example (save a CSV export as a draft):
//
//	data, err := os.ReadFile("contacts.csv")
//	if err != nil { /* handle */ }
//
//	out, err := gmail.Deliver(gmail.DeliverInput{
//		Mode:    gmail.ModeDraft,
//		Subject: "Contacts export",
//		Attachment: gmail.Attachment{
//			Filename:    "contacts.csv",
//			ContentType: "text/csv",
//			Data:        data,
//		},
//	})
//	if err != nil { /* handle */ }
//	_ = out.MessageID
package gmail
