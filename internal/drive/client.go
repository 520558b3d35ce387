// Package drive implements the remote storage client against the Google
// Drive v3 API with a read-only service account.
package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"classtrack-go/internal/track"
)

const folderMimeType = "application/vnd.google-apps.folder"

// fileFields limits responses to what a scan consumes.
const fileFields = "nextPageToken, files(id, name, mimeType, size, createdTime, modifiedTime, lastModifyingUser(displayName, emailAddress), owners(displayName, emailAddress))"

// Client implements track.Storage.
type Client struct {
	svc *drive.Service
}

// NewClient builds a Drive client from a service account credentials file.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// VerifyAccess checks that the credentials can see the given folder. A 404
// usually means the folder was never shared with the service account.
func (c *Client) VerifyAccess(folderID string) error {
	_, err := c.svc.Files.Get(folderID).Fields("id, name").SupportsAllDrives(true).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			return fmt.Errorf("folder %s not found (is it shared with the service account?): %w", folderID, err)
		}
		return fmt.Errorf("verifying access to folder %s: %w", folderID, err)
	}
	return nil
}

// ListFolders returns the direct child folders of rootID, sorted by name.
func (c *Client) ListFolders(rootID string) ([]track.Folder, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false",
		rootID, folderMimeType)

	var folders []track.Folder
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name)").
			OrderBy("name").
			PageSize(100).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("listing folders under %s: %w", rootID, err)
		}
		for _, f := range res.Files {
			folders = append(folders, track.Folder{ID: f.Id, Name: f.Name})
		}
		if res.NextPageToken == "" {
			return folders, nil
		}
		pageToken = res.NextPageToken
	}
}

// ListFiles returns the non-folder files directly inside folderID,
// optionally restricted to the given MIME types.
func (c *Client) ListFiles(folderID string, mimeTypes []string) ([]track.File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false",
		folderID, folderMimeType)
	if len(mimeTypes) > 0 {
		clauses := make([]string, len(mimeTypes))
		for i, mt := range mimeTypes {
			clauses[i] = fmt.Sprintf("mimeType = '%s'", mt)
		}
		query += " and (" + strings.Join(clauses, " or ") + ")"
	}

	var files []track.File
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields(googleapi.Field(fileFields)).
			PageSize(1000).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("listing files in %s: %w", folderID, err)
		}
		for _, f := range res.Files {
			files = append(files, toTrackFile(f))
		}
		if res.NextPageToken == "" {
			return files, nil
		}
		pageToken = res.NextPageToken
	}
}

func toTrackFile(f *drive.File) track.File {
	out := track.File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
	}
	if f.LastModifyingUser != nil {
		out.LastModifyingUser = &track.UserRef{
			EmailAddress: f.LastModifyingUser.EmailAddress,
			DisplayName:  f.LastModifyingUser.DisplayName,
		}
	}
	for _, o := range f.Owners {
		out.Owners = append(out.Owners, track.UserRef{
			EmailAddress: o.EmailAddress,
			DisplayName:  o.DisplayName,
		})
	}
	return out
}
