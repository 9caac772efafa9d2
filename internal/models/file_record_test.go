package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentIDUnmarshal(t *testing.T) {
	cases := map[string]ParentID{
		`0`:                          RootID,
		`"0"`:                        RootID,
		`null`:                       RootID,
		`""`:                         RootID,
		`"5f1d7f0b9c1e4a2b3c4d5e6f"`: "5f1d7f0b9c1e4a2b3c4d5e6f",
		`42`:                         "42",
	}
	for raw, want := range cases {
		var p ParentID
		require.NoError(t, json.Unmarshal([]byte(raw), &p), raw)
		assert.Equal(t, want, p, raw)
	}
}

func TestParentIDUnmarshalRejectsObjects(t *testing.T) {
	var p ParentID
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &p))
}

func TestFileRecordJSON(t *testing.T) {
	folder := FileRecord{ID: "a1", UserID: "u1", Name: "docs", Type: TypeFolder, ParentID: RootID}
	data, err := json.Marshal(folder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a1","userId":"u1","name":"docs","type":"folder","isPublic":false,"parentId":0}`, string(data))

	file := FileRecord{ID: "b2", UserID: "u1", Name: "a.txt", Type: TypeFile, ParentID: "a1", LocalPath: "/tmp/x"}
	data, err = json.Marshal(file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b2","userId":"u1","name":"a.txt","type":"file","isPublic":false,"parentId":"a1","localPath":"/tmp/x"}`, string(data))
}

func TestFileTypeValid(t *testing.T) {
	assert.True(t, TypeFolder.Valid())
	assert.True(t, TypeFile.Valid())
	assert.True(t, TypeImage.Valid())
	assert.False(t, FileType("video").Valid())
	assert.False(t, FileType("").Valid())
}

func TestThumbnailPath(t *testing.T) {
	assert.Equal(t, "/tmp/files_manager/abc_250", ThumbnailPath("/tmp/files_manager/abc", 250))
}
