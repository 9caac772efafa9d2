package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FileType is the kind of a stored entry.
type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

// Valid reports whether t is one of the recognized types.
func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// ParentID references the folder containing a record. RootID means top level.
type ParentID string

const RootID ParentID = "0"

func (p ParentID) IsRoot() bool {
	return p == "" || p == RootID
}

// Normalize maps every spelling of the root sentinel to RootID.
func (p ParentID) Normalize() ParentID {
	if p.IsRoot() {
		return RootID
	}
	return p
}

func (p ParentID) String() string {
	return string(p.Normalize())
}

// ParseParentID converts a query-string value into a ParentID.
func ParseParentID(s string) ParentID {
	return ParentID(s).Normalize()
}

// MarshalJSON writes root as the number 0 and any other parent as its id string.
func (p ParentID) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts null, a number or a string.
func (p *ParentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = RootID
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParentID(s).Normalize()
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parentId must be a string or a number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil && i == 0 {
		*p = RootID
		return nil
	}
	*p = ParentID(n.String())
	return nil
}

// FileRecord is the persisted metadata of a file or folder.
type FileRecord struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	Name      string   `json:"name"`
	Type      FileType `json:"type"`
	IsPublic  bool     `json:"isPublic"`
	ParentID  ParentID `json:"parentId"`
	LocalPath string   `json:"localPath,omitempty"`
}

func (f FileRecord) IsFolder() bool {
	return f.Type == TypeFolder
}

// ThumbnailWidths are the derived sizes produced for images, largest first.
var ThumbnailWidths = []int{500, 250, 100}

// ThumbnailPath is the sibling path of the derived blob for the given width.
func ThumbnailPath(localPath string, width int) string {
	return localPath + "_" + strconv.Itoa(width)
}
