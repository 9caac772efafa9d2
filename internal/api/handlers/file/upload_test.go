package file

import (
	"math"
	"testing"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUploadRequest(t *testing.T) {
	t.Run("empty body is an empty request", func(t *testing.T) {
		for _, body := range []string{"", "  \n", "null", "{}"} {
			req, err := decodeUploadRequest([]byte(body))
			require.NoError(t, err, body)
			assert.Equal(t, uploadRequest{}, req, body)
		}
	})

	t.Run("mistyped fields are absent", func(t *testing.T) {
		req, err := decodeUploadRequest([]byte(`{"name":5,"type":["file"],"isPublic":"yes","data":{}}`))
		require.NoError(t, err)
		assert.Equal(t, uploadRequest{}, req)
	})

	t.Run("mistyped parent is kept verbatim", func(t *testing.T) {
		req, err := decodeUploadRequest([]byte(`{"name":"a","type":"folder","parentId":true}`))
		require.NoError(t, err)
		assert.Equal(t, models.ParentID("true"), req.ParentID)
		assert.False(t, req.ParentID.IsRoot())
	})

	t.Run("well formed", func(t *testing.T) {
		req, err := decodeUploadRequest([]byte(`{"name":"a.txt","type":"file","parentId":0,"isPublic":true,"data":"aGk="}`))
		require.NoError(t, err)
		assert.Equal(t, uploadRequest{Name: "a.txt", Type: "file", ParentID: models.RootID, IsPublic: true, Data: "aGk="}, req)
	})

	t.Run("not an object", func(t *testing.T) {
		for _, body := range []string{`"text"`, `[1]`, `{"name":`} {
			_, err := decodeUploadRequest([]byte(body))
			assert.Error(t, err, body)
		}
	})
}

func TestParsePage(t *testing.T) {
	cases := map[string]int{
		"":                      0,
		"abc":                   0,
		"-4":                    0,
		"3":                     3,
		"99999999999999999999":  math.MaxInt,
		"-99999999999999999999": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, parsePage(in), in)
	}
}
