package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/finn/cloud-drive-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadFile(t *testing.T, ts *testutil.TestServer, token, name string, content []byte, folderID string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	if folderID != "" {
		require.NoError(t, writer.WriteField("folderId", folderID))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL("/files/upload"), &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestFileHandler_UploadDownloadRoundTrip(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	payload := []byte("twelve bytes")
	resp := uploadFile(t, ts, token, "a.txt", payload, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var file domain.File
	testutil.AssertJSONResponse(t, resp, &file)
	assert.Equal(t, "a.txt", file.Name)
	assert.Equal(t, int64(len(payload)), file.Size)

	dl := doJSON(t, http.MethodGet, ts.URL("/files/"+file.ID.String()+"/download"), token, nil)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)

	got, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFileHandler_UploadIntoFolder(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	docs := createFolder(t, ts, token, "Docs", nil)
	docsID := docs.ID.String()
	sub := createFolder(t, ts, token, "Sub", &docsID)

	resp := uploadFile(t, ts, token, "a.txt", []byte("twelve bytes"), sub.ID.String())
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The file shows up in Sub's contents with the right size.
	contentsResp := doJSON(t, http.MethodGet, ts.URL("/folders/"+sub.ID.String()+"/contents"), token, nil)
	defer contentsResp.Body.Close()
	require.Equal(t, http.StatusOK, contentsResp.StatusCode)

	var contents struct {
		Files   []domain.File   `json:"files"`
		Folders []domain.Folder `json:"folders"`
	}
	testutil.AssertJSONResponse(t, contentsResp, &contents)
	require.Len(t, contents.Files, 1)
	assert.Equal(t, "a.txt", contents.Files[0].Name)
	assert.Equal(t, int64(12), contents.Files[0].Size)
}

func TestFileHandler_Upload_Validation(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, tokenA := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, tokenB := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	foreign := createFolder(t, ts, tokenB, "Foreign", nil)

	t.Run("upload to another user's folder", func(t *testing.T) {
		resp := uploadFile(t, ts, tokenA, "a.txt", []byte("data"), foreign.ID.String())
		defer resp.Body.Close()
		testutil.AssertErrorKind(t, resp, http.StatusBadRequest, "invalid_parent")
	})

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("folderId", ""))
		require.NoError(t, writer.Close())

		req, _ := http.NewRequest(http.MethodPost, ts.URL("/files/upload"), &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+tokenA)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertErrorKind(t, resp, http.StatusBadRequest, "validation_error")
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		big := bytes.Repeat([]byte("x"), int(ts.Config.MaxUploadBytes)+1)
		resp := uploadFile(t, ts, tokenA, "big.bin", big, "")
		defer resp.Body.Close()
		testutil.AssertErrorKind(t, resp, http.StatusRequestEntityTooLarge, "file_too_large")
	})
}

func TestFileHandler_ListRoot(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	docs := createFolder(t, ts, token, "Docs", nil)

	rootResp := uploadFile(t, ts, token, "root.txt", []byte("r"), "")
	rootResp.Body.Close()
	nestedResp := uploadFile(t, ts, token, "nested.txt", []byte("n"), docs.ID.String())
	nestedResp.Body.Close()

	resp := doJSON(t, http.MethodGet, ts.URL("/files"), token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var files []domain.File
	testutil.AssertJSONResponse(t, resp, &files)
	require.Len(t, files, 1)
	assert.Equal(t, "root.txt", files[0].Name)
}

func TestFileHandler_MoveAndDelete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	docs := createFolder(t, ts, token, "Docs", nil)

	up := uploadFile(t, ts, token, "wanderer.txt", []byte("data"), "")
	var file domain.File
	testutil.AssertJSONResponse(t, up, &file)
	up.Body.Close()

	t.Run("move into folder", func(t *testing.T) {
		resp := doJSON(t, http.MethodPatch, ts.URL("/files/"+file.ID.String()), token,
			map[string]interface{}{"folderId": docs.ID.String()})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var moved domain.File
		testutil.AssertJSONResponse(t, resp, &moved)
		require.NotNil(t, moved.FolderID)
		assert.Equal(t, docs.ID, *moved.FolderID)
	})

	t.Run("delete", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, ts.URL("/files/"+file.ID.String()), token, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		dl := doJSON(t, http.MethodGet, ts.URL("/files/"+file.ID.String()+"/download"), token, nil)
		defer dl.Body.Close()
		assert.Equal(t, http.StatusNotFound, dl.StatusCode)
	})
}

func TestFileHandler_CrossUserDownload(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, tokenA := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, tokenB := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	up := uploadFile(t, ts, tokenA, "private.txt", []byte("mine"), "")
	var file domain.File
	testutil.AssertJSONResponse(t, up, &file)
	up.Body.Close()

	resp := doJSON(t, http.MethodGet, ts.URL("/files/"+file.ID.String()+"/download"), tokenB, nil)
	defer resp.Body.Close()
	testutil.AssertErrorKind(t, resp, http.StatusForbidden, "forbidden")
}
