package gmail_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spachava753/abbu2csv/gmail"
)

func composeSendExportToTeam(csvPath string, team []string) (string, error) {
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return "", err
	}
	out, err := gmail.Deliver(gmail.DeliverInput{
		Mode:    gmail.ModeSend,
		To:      team,
		Subject: "Contacts export " + filepath.Base(csvPath),
		Body:    fmt.Sprintf("Attached: %s (%d bytes).", filepath.Base(csvPath), len(data)),
		Attachment: gmail.Attachment{
			Filename:    filepath.Base(csvPath),
			ContentType: "text/csv; charset=utf-8",
			Data:        data,
		},
	})
	if err != nil {
		return "", err
	}
	return out.MessageID, nil
}

func composeDraftThenReportSize(csv string, dryRun bool) (string, error) {
	out, err := gmail.Deliver(gmail.DeliverInput{
		Mode: gmail.ModeDraft,
		Attachment: gmail.Attachment{
			Filename:    "contacts.csv",
			ContentType: "text/csv",
			Data:        []byte(csv),
		},
		DryRun: dryRun,
	})
	if err != nil {
		return "", err
	}
	lines := strings.Count(csv, "\r\n")
	return fmt.Sprintf("%s: %d bytes, %d csv lines", out.MessageID, out.Size, lines), nil
}
