package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chxlky/trello-report/internal/config"
	"github.com/chxlky/trello-report/internal/output"
	"github.com/chxlky/trello-report/internal/report"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveSink uploads reports as plain text files into a Google Drive folder
// shared with the service account.
type DriveSink struct {
	FolderID string
	Naming   output.Naming

	create func(ctx context.Context, file *drive.File, media io.Reader) error
}

func NewDriveSink(ctx context.Context, cfg config.GoogleConfig, naming output.Naming) (*DriveSink, error) {
	if len(cfg.ServiceAccount) == 0 {
		return nil, errors.New("google.service_account is not configured")
	}

	jsonBytes, err := json.Marshal(cfg.ServiceAccount)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal service account settings to JSON: %w", err)
	}

	// create credentials from JSON data
	jwtConfig, err := google.JWTConfigFromJSON(jsonBytes, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials from JSON: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &DriveSink{
		FolderID: cfg.Drive.FolderID,
		Naming:   naming,
		create: func(ctx context.Context, file *drive.File, media io.Reader) error {
			_, err := srv.Files.Create(file).Media(media).SupportsAllDrives(true).Context(ctx).Do()
			return err
		},
	}, nil
}

func (d *DriveSink) Name() string {
	return "google-drive"
}

func (d *DriveSink) Publish(ctx context.Context, set *report.Set) error {
	stamp := set.GeneratedAt.Format("2006-01-02 1504")
	for _, r := range set.All() {
		file := &drive.File{
			Name:     stamp + " " + d.Naming.FileName(r),
			Parents:  []string{d.FolderID},
			MimeType: "text/plain",
		}
		if err := d.create(ctx, file, strings.NewReader(r.Body)); err != nil {
			var gerr *googleapi.Error
			if errors.As(err, &gerr) && gerr.Code == 404 {
				return fmt.Errorf("drive folder %s not found or not shared with the service account", d.FolderID)
			}
			return fmt.Errorf("unable to upload %s to Google Drive: %w", file.Name, err)
		}
	}
	return nil
}
