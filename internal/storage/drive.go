package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveArchiver mirrors accepted similarity reports to Google Drive as an
// off-box backup of the curated corpus labels. Best-effort: callers log and
// continue on failure.
type DriveArchiver struct {
	service    *drive.Service
	folderName string
	folderID   string
	language   string
}

// NewDriveArchiver creates an archiver rooted at folderName/<language>/.
func NewDriveArchiver(credentialsFile, tokenFile, folderName, language string) (*DriveArchiver, error) {
	ctx := context.Background()

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}
	config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client, err := tokenClient(config, tokenFile)
	if err != nil {
		return nil, err
	}
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %v", err)
	}

	da := &DriveArchiver{
		service:    srv,
		folderName: folderName,
		language:   language,
	}
	if err := da.ensureRootFolder(); err != nil {
		return nil, err
	}
	return da, nil
}

// tokenClient builds an HTTP client from a cached OAuth token. Unlike an
// interactive tool, the pipeline refuses to block on a browser flow; a
// missing token is a configuration error.
func tokenClient(config *oauth2.Config, tokenFile string) (*http.Client, error) {
	f, err := os.Open(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("drive token file unavailable (run the token helper first): %v", err)
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("unable to parse drive token: %v", err)
	}
	return config.Client(context.Background(), tok), nil
}

func (da *DriveArchiver) ensureRootFolder() error {
	rootID, err := da.findOrCreateFolder(da.folderName, "")
	if err != nil {
		return fmt.Errorf("unable to prepare archive folder: %v", err)
	}
	langID, err := da.findOrCreateFolder(da.language, rootID)
	if err != nil {
		return fmt.Errorf("unable to prepare language folder: %v", err)
	}
	da.folderID = langID
	return nil
}

// ArchiveReport uploads the similarity report and chunk manifest of one
// video-variant directory into <folder>/<language>/<videoID>/<variant>/.
func (da *DriveArchiver) ArchiveReport(videoID, variant, dir string) error {
	videoFolderID, err := da.findOrCreateFolder(videoID, da.folderID)
	if err != nil {
		return err
	}
	variantFolderID, err := da.findOrCreateFolder(variant, videoFolderID)
	if err != nil {
		return err
	}

	for _, name := range []string{"text_similarity.json", "transcript.json"} {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %v", path, err)
		}
		file := &drive.File{
			Name:    name,
			Parents: []string{variantFolderID},
		}
		_, err = da.service.Files.Create(file).Media(f).Do()
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to upload %s: %v", name, err)
		}
	}
	return nil
}

// findOrCreateFolder finds or creates a folder, optionally under a parent.
func (da *DriveArchiver) findOrCreateFolder(name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='application/vnd.google-apps.folder' and trashed=false", name)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	r, err := da.service.Files.List().Q(query).Spaces("drive").Fields("files(id)").Do()
	if err != nil {
		return "", err
	}
	if len(r.Files) > 0 {
		return r.Files[0].Id, nil
	}

	folder := &drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
	}
	if parentID != "" {
		folder.Parents = []string{parentID}
	}
	file, err := da.service.Files.Create(folder).Fields("id").Do()
	if err != nil {
		return "", err
	}
	return file.Id, nil
}
