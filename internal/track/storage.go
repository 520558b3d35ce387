package track

// Folder is a remote folder as returned by the storage collaborator.
type Folder struct {
	ID           string
	Name         string
	CreatedTime  string
	ModifiedTime string
}

// UserRef identifies a remote account attached to a file.
type UserRef struct {
	EmailAddress string
	DisplayName  string
}

// File is the raw metadata for one remote file. Timestamps are kept as the
// RFC 3339 strings the remote API returns; parsing happens at persistence
// time so a malformed value degrades to null instead of failing the file.
type File struct {
	ID                string
	Name              string
	MimeType          string
	Size              int64
	CreatedTime       string
	ModifiedTime      string
	LastModifyingUser *UserRef
	Owners            []UserRef
}

// Storage lists folders and files in the remote file store. Implementations
// handle pagination transparently and surface listing failures as plain
// errors; the service does not interpret transport-specific codes.
type Storage interface {
	// ListFolders returns the immediate child folders of rootID.
	ListFolders(rootID string) ([]Folder, error)

	// ListFiles returns the files directly inside folderID. When mimeTypes
	// is non-empty only files with a matching MIME type are returned.
	ListFiles(folderID string, mimeTypes []string) ([]File, error)
}
